package kinematics

import (
	"fmt"
	"strings"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
)

// Arm is the throwing arm of a pitcher.
type Arm int

const (
	RightArm Arm = iota
	LeftArm
)

func (a Arm) String() string {
	if a == LeftArm {
		return "left"
	}
	return "right"
}

// ParseArm parses "right"/"left" (also "R"/"L").
func ParseArm(s string) (Arm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "right", "r":
		return RightArm, nil
	case "left", "l":
		return LeftArm, nil
	}
	return RightArm, fmt.Errorf("unknown throwing arm %q", s)
}

// ArmJoints lists the joint indices used for a throwing side.
// The Lead* joints belong to the glove side, which strides toward home plate.
type ArmJoints struct {
	Shoulder  int
	Elbow     int
	Wrist     int
	Hip       int
	Knee      int
	Ankle     int
	LeadHip   int
	LeadKnee  int
	LeadAnkle int
}

// Joints returns the joint indices for arm.
func (a Arm) Joints() ArmJoints {
	if a == LeftArm {
		return ArmJoints{
			Shoulder:  detector.LeftShoulder,
			Elbow:     detector.LeftElbow,
			Wrist:     detector.LeftWrist,
			Hip:       detector.LeftHip,
			Knee:      detector.LeftKnee,
			Ankle:     detector.LeftAnkle,
			LeadHip:   detector.RightHip,
			LeadKnee:  detector.RightKnee,
			LeadAnkle: detector.RightAnkle,
		}
	}
	return ArmJoints{
		Shoulder:  detector.RightShoulder,
		Elbow:     detector.RightElbow,
		Wrist:     detector.RightWrist,
		Hip:       detector.RightHip,
		Knee:      detector.RightKnee,
		Ankle:     detector.RightAnkle,
		LeadHip:   detector.LeftHip,
		LeadKnee:  detector.LeftKnee,
		LeadAnkle: detector.LeftAnkle,
	}
}

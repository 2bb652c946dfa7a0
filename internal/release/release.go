// Package release measures the body at the instant of ball release or bat contact.
package release

import (
	"math"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
)

// Point describes the throwing arm at the release frame.
type Point struct {
	Frame           int              `json:"frame"`
	Position        detector.Point2D `json:"position"`
	ElbowAngle      float64          `json:"elbow_angle"`
	ShoulderAngle   *float64         `json:"shoulder_angle,omitempty"`
	HeightRatio     *float64         `json:"height_ratio,omitempty"`
	ForwardDistance float64          `json:"forward_distance"`
}

const minBodyHeight = 0.01

// Detect measures the release at frame. It reports false when the pose is missing
// or any of wrist, elbow, shoulder and nose is not visible.
func Detect(history detector.FrameHistory, frame int, arm kinematics.Arm) (Point, bool) {
	jf := history.Get(frame)
	j := arm.Joints()
	if !jf.AllVisible(j.Wrist, j.Shoulder, j.Elbow, detector.Nose) {
		return Point{}, false
	}

	wrist := jf.Point(j.Wrist)
	elbow := jf.Point(j.Elbow)
	shoulder := jf.Point(j.Shoulder)
	nose := jf.Point(detector.Nose)

	p := Point{
		Frame:           frame,
		Position:        wrist,
		ElbowAngle:      kinematics.Angle(shoulder, elbow, wrist),
		ForwardDistance: wrist.X - nose.X,
	}

	if jf.Visible(j.Hip, detector.VisibilityThreshold) {
		a := kinematics.Angle(elbow, shoulder, jf.Point(j.Hip))
		p.ShoulderAngle = &a
	}

	if jf.Visible(j.Ankle, detector.VisibilityThreshold) {
		ankleY := jf.Point(j.Ankle).Y
		if height := math.Abs(ankleY - nose.Y); height > minBodyHeight {
			r := math.Abs(ankleY-wrist.Y) / height
			p.HeightRatio = &r
		}
	}

	return p, true
}

// Slot classifies the arm angle at release.
type Slot string

const (
	Overhand     Slot = "overhand"
	ThreeQuarter Slot = "three_quarter"
	Sidearm      Slot = "sidearm"
	Underhand    Slot = "underhand"
)

// ArmSlot returns the angle of the shoulder->wrist vector above horizontal, in degrees.
// 90 is straight overhead, 0 is sidearm and negative values are below the shoulder.
func ArmSlot(history detector.FrameHistory, frame int, arm kinematics.Arm) (float64, bool) {
	jf := history.Get(frame)
	j := arm.Joints()
	if !jf.AllVisible(j.Shoulder, j.Wrist) {
		return 0, false
	}
	s := jf.Point(j.Shoulder)
	w := jf.Point(j.Wrist)
	return math.Atan2(s.Y-w.Y, math.Abs(w.X-s.X)) * 180 / math.Pi, true
}

// ClassifySlot buckets an arm slot angle.
func ClassifySlot(deg float64) Slot {
	switch {
	case deg > 70:
		return Overhand
	case deg > 45:
		return ThreeQuarter
	case deg > 15:
		return Sidearm
	}
	return Underhand
}

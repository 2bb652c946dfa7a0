package release

import (
	"math"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

// Contact summarizes a swing at the estimated bat-ball contact frame (the speed peak).
type Contact struct {
	Frame            int                `json:"frame"`
	DurationSeconds  *float64           `json:"duration_seconds,omitempty"`
	PeakSpeed        float64            `json:"peak_speed"`
	ElbowAngles      map[string]float64 `json:"elbow_angles"`
	StepWidthRatio   *float64           `json:"step_width_ratio,omitempty"`
	ShoulderRotation *float64           `json:"shoulder_rotation,omitempty"`
	ArcAngle         *float64           `json:"arc_angle,omitempty"`
}

var elbowAngles = kinematics.AngleSet{
	kinematics.BattingAngles[0],
	kinematics.BattingAngles[1],
}

// MeasureContact computes swing metrics for iv. Fields whose joints are hidden are left nil.
func MeasureContact(history detector.FrameHistory, iv motion.Interval, fps float64) Contact {
	c := Contact{
		Frame:       iv.Peak,
		PeakSpeed:   iv.PeakSpeed,
		ElbowAngles: map[string]float64{},
	}
	if fps > 0 {
		d := float64(iv.End-iv.Start) / fps
		c.DurationSeconds = &d
	}

	if jf := history.Get(iv.Peak); jf != nil {
		c.ElbowAngles = kinematics.FrameAngles(jf, elbowAngles, nil)
		if r, ok := stepWidth(jf); ok {
			c.StepWidthRatio = &r
		}
		if rot, ok := kinematics.BodyRotation(jf); ok {
			c.ShoulderRotation = &rot
		}
	}

	if arc, ok := SwingArcAngle(history, iv); ok {
		c.ArcAngle = &arc
	}
	return c
}

func stepWidth(jf *detector.JointFrame) (float64, bool) {
	if !jf.AllVisible(detector.LeftAnkle, detector.RightAnkle) {
		return 0, false
	}
	sw, ok := kinematics.ShoulderWidth(jf)
	if !ok || sw == 0 {
		return 0, false
	}
	return math.Abs(jf.Point(detector.LeftAnkle).X-jf.Point(detector.RightAnkle).X) / sw, true
}

// SwingArcAngle returns the angle of the rear wrist path from the interval start
// to three frames past the peak, relative to horizontal. Upward is positive.
func SwingArcAngle(history detector.FrameHistory, iv motion.Interval) (float64, bool) {
	endFrame := iv.Peak + 3
	if endFrame > iv.End {
		endFrame = iv.End
	}
	from, to := history.Get(iv.Start), history.Get(endFrame)
	if !from.Visible(detector.RightWrist, detector.VisibilityThreshold) || !to.Visible(detector.RightWrist, detector.VisibilityThreshold) {
		return 0, false
	}
	d := to.Point(detector.RightWrist).Sub(from.Point(detector.RightWrist))
	return -math.Atan2(d.Y, math.Abs(d.X)) * 180 / math.Pi, true
}

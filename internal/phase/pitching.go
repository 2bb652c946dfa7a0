package phase

import (
	"math"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

const (
	legLiftKneeDY = -0.005
	groundAnkleY  = 0.75
)

// SegmentPitching splits the pitching window around iv into wind-up, leg lift,
// stride, arm cocking, acceleration and follow-through. iv.Peak is the release frame.
func SegmentPitching(history detector.FrameHistory, iv motion.Interval, fps float64, arm kinematics.Arm) []Phase {
	w := PitchingWindow(iv, fps)
	j := arm.Joints()
	release := iv.Peak

	// Leg lift peak: lead knee highest relative to the hip.
	legLiftPeak := w.Start
	maxLift := math.Inf(-1)
	for f := w.Start; f < iv.Start; f++ {
		jf := history.Get(f)
		if !jf.AllVisible(j.LeadKnee, j.Hip) {
			continue
		}
		if lift := jf.Point(j.Hip).Y - jf.Point(j.LeadKnee).Y; lift > maxLift {
			maxLift = lift
			legLiftPeak = f
		}
	}

	legLiftStart := w.Start
	for f := w.Start; f < legLiftPeak; f++ {
		if d, ok := step(history, f, j.LeadKnee); ok && d.Y < legLiftKneeDY {
			legLiftStart = f
			break
		}
	}

	// Stride ends when the lead foot is back near the ground.
	strideEnd := iv.Start
	for f := legLiftPeak + 1; f < iv.Start; f++ {
		jf := history.Get(f)
		if jf.Visible(j.LeadAnkle, detector.VisibilityThreshold) && jf.Point(j.LeadAnkle).Y > groundAnkleY {
			strideEnd = f
			break
		}
	}

	// Arm cocking ends with the wrist at its highest point before release.
	cockingEnd := strideEnd + 1
	minWristY := math.Inf(1)
	for f := strideEnd + 1; f < release; f++ {
		jf := history.Get(f)
		if jf.Visible(j.Wrist, detector.VisibilityThreshold) && jf.Point(j.Wrist).Y < minWristY {
			minWristY = jf.Point(j.Wrist).Y
			cockingEnd = f
		}
	}
	if cockingEnd > release {
		cockingEnd = release
	}

	b := newBuilder(w)
	b.add(Windup, w.Start, legLiftStart-1)
	b.add(LegLift, legLiftStart, legLiftPeak)
	b.add(Stride, legLiftPeak+1, strideEnd)
	b.add(ArmCocking, strideEnd+1, cockingEnd)
	b.add(Acceleration, cockingEnd+1, release)
	b.add(FollowThrough, release+1, w.End)
	return b.phases
}

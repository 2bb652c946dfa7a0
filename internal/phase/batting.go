package phase

import (
	"math"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

const (
	loadWristDX   = 0.005
	strideAnkleDY = -0.01
	swingRatio    = 0.3
)

// SegmentBatting splits the batting window around iv into
// stance, load, stride, swing and follow-through.
func SegmentBatting(history detector.FrameHistory, speeds kinematics.SpeedSeries, iv motion.Interval, fps float64) []Phase {
	w := BattingWindow(iv, fps)

	// Load: the rear wrist starts moving horizontally.
	loadStart := w.Start
	for f := w.Start; f < iv.Start; f++ {
		if d, ok := step(history, f, detector.RightWrist); ok && math.Abs(d.X) > loadWristDX {
			loadStart = f
			break
		}
	}

	// Stride: either foot lifts.
	strideStart := iv.Start - margin(fps, 0.15, 5)
	if strideStart < w.Start {
		strideStart = w.Start
	}
	for f := loadStart; f < iv.Start; f++ {
		if footLifted(history, f) {
			strideStart = f
			break
		}
	}

	// Swing: wrist speed passes 30% of the peak.
	speedAt := make(map[int]float64, len(speeds))
	for _, s := range speeds {
		speedAt[s.Frame] = s.Speed
	}
	swingStart := iv.Start
	for f := strideStart; f < iv.Peak; f++ {
		if speedAt[f] > iv.PeakSpeed*swingRatio {
			swingStart = f
			break
		}
	}

	b := newBuilder(w)
	b.add(Stance, w.Start, loadStart-1)
	b.add(Load, loadStart, strideStart-1)
	b.add(Stride, strideStart, swingStart-1)
	b.add(Swing, swingStart, iv.Peak)
	b.add(FollowThrough, iv.Peak+1, w.End)
	return b.phases
}

func footLifted(history detector.FrameHistory, f int) bool {
	for _, ankle := range []int{detector.LeftAnkle, detector.RightAnkle} {
		if d, ok := step(history, f, ankle); ok && d.Y < strideAnkleDY {
			return true
		}
	}
	return false
}

// step returns the displacement of joint from frame f to f+1 when it is visible in both.
func step(history detector.FrameHistory, f, joint int) (detector.Point2D, bool) {
	cur, next := history.Get(f), history.Get(f+1)
	if !cur.Visible(joint, detector.VisibilityThreshold) || !next.Visible(joint, detector.VisibilityThreshold) {
		return detector.Point2D{}, false
	}
	return next.Point(joint).Sub(cur.Point(joint)), true
}

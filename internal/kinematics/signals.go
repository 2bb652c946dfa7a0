package kinematics

import (
	"math"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
)

// BodyRotation returns the angle between the shoulder line and the horizontal,
// in [0,90]. 0 means the shoulders are level, 90 means they are stacked.
func BodyRotation(frame *detector.JointFrame) (float64, bool) {
	if !frame.AllVisible(detector.LeftShoulder, detector.RightShoulder) {
		return 0, false
	}
	d := frame.Point(detector.RightShoulder).Sub(frame.Point(detector.LeftShoulder))
	return math.Atan2(math.Abs(d.Y), math.Abs(d.X)) * 180 / math.Pi, true
}

// CenterOfGravity approximates the body's center of gravity as the hip midpoint.
func CenterOfGravity(frame *detector.JointFrame) (detector.Point2D, bool) {
	if !frame.AllVisible(detector.LeftHip, detector.RightHip) {
		return detector.Point2D{}, false
	}
	l := frame.Point(detector.LeftHip)
	r := frame.Point(detector.RightHip)
	return detector.Point2D{X: (l.X + r.X) / 2, Y: (l.Y + r.Y) / 2}, true
}

// SpeedSample is the speed of a joint arriving at Frame from the previous processed frame.
type SpeedSample struct {
	Frame int     `json:"frame"`
	Speed float64 `json:"speed"`
}

// SpeedSeries is ordered by increasing frame.
type SpeedSeries []SpeedSample

// LimbSpeed computes the speed of joint between every consecutive pair of processed
// frames, in normalized units per second. A pair with a missing pose or a joint below
// SpeedVisibilityThreshold yields 0. A non-positive fps treats each gap as one second.
func LimbSpeed(history detector.FrameHistory, joint int, fps float64) SpeedSeries {
	frames := history.Frames()
	if len(frames) < 2 {
		return SpeedSeries{}
	}

	series := make(SpeedSeries, 0, len(frames)-1)
	for i := 1; i < len(frames); i++ {
		prevF, currF := frames[i-1], frames[i]
		prev, curr := history.Get(prevF), history.Get(currF)

		speed := 0.0
		if speedVisible(prev, joint) && speedVisible(curr, joint) {
			dt := 1.0
			if fps > 0 {
				dt = float64(currF-prevF) / fps
			}
			speed = curr.Point(joint).Sub(prev.Point(joint)).Norm() / dt
		}
		series = append(series, SpeedSample{Frame: currF, Speed: speed})
	}
	return series
}

func speedVisible(frame *detector.JointFrame, joint int) bool {
	if frame == nil || joint < 0 || joint >= detector.NumJoints {
		return false
	}
	return frame.Points[joint].Visibility >= detector.SpeedVisibilityThreshold
}

// Values returns the speeds in series order.
func (s SpeedSeries) Values() []float64 {
	v := make([]float64, len(s))
	for i, sample := range s {
		v[i] = sample.Speed
	}
	return v
}

// At returns the speed recorded for frame f.
func (s SpeedSeries) At(f int) (float64, bool) {
	for _, sample := range s {
		if sample.Frame == f {
			return sample.Speed, true
		}
	}
	return 0, false
}

// PeakIn returns the frame of maximum speed within [start,end].
// The first frame wins ties.
func (s SpeedSeries) PeakIn(start, end int) (SpeedSample, bool) {
	var best SpeedSample
	found := false
	for _, sample := range s {
		if sample.Frame < start || sample.Frame > end {
			continue
		}
		if !found || sample.Speed > best.Speed {
			best = sample
			found = true
		}
	}
	return best, found
}

package kinematics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
)

// WeightSample is the position of the center of gravity between the feet.
// Ratio 0 is over the lower-x ankle and 1 over the higher-x ankle.
type WeightSample struct {
	Frame int     `json:"frame"`
	Ratio float64 `json:"ratio"`
}

// WeightShift samples the weight position for every frame in [start,end] where
// both hips and both ankles are visible. A stance narrower than 0.01 reports 0.5.
func WeightShift(history detector.FrameHistory, start, end int) []WeightSample {
	var samples []WeightSample
	for _, f := range history.Frames() {
		if f < start || f > end {
			continue
		}
		jf := history.Get(f)
		if !jf.AllVisible(detector.LeftHip, detector.RightHip, detector.LeftAnkle, detector.RightAnkle) {
			continue
		}

		cog, _ := CenterOfGravity(jf)
		la := jf.Point(detector.LeftAnkle).X
		ra := jf.Point(detector.RightAnkle).X
		span := math.Abs(ra - la)

		ratio := 0.5
		if span > 0.01 {
			ratio = (cog.X - math.Min(la, ra)) / span
		}
		samples = append(samples, WeightSample{Frame: f, Ratio: ratio})
	}
	return samples
}

// HeadStability summarizes nose movement over a window.
type HeadStability struct {
	StdX   float64 `json:"std_x"`
	StdY   float64 `json:"std_y"`
	Stable bool    `json:"stable"`
}

const headStableStd = 0.02

// MeasureHeadStability computes the population standard deviation of the nose
// position over [start,end]. It needs at least 3 visible samples.
func MeasureHeadStability(history detector.FrameHistory, start, end int) (HeadStability, bool) {
	var xs, ys []float64
	for _, f := range history.Frames() {
		if f < start || f > end {
			continue
		}
		jf := history.Get(f)
		if !jf.Visible(detector.Nose, detector.VisibilityThreshold) {
			continue
		}
		p := jf.Point(detector.Nose)
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	if len(xs) < 3 {
		return HeadStability{}, false
	}

	_, sx := stat.PopMeanStdDev(xs, nil)
	_, sy := stat.PopMeanStdDev(ys, nil)
	return HeadStability{
		StdX:   sx,
		StdY:   sy,
		Stable: sx < headStableStd && sy < headStableStd,
	}, true
}

// Timing labels for body opening.
const (
	TimingEarly = "early"
	TimingGood  = "good"
	TimingLate  = "late"
)

// BodyOpening describes when the shoulders start to rotate before the peak.
type BodyOpening struct {
	Frame        int    `json:"frame"`
	FramesBefore int    `json:"frames_before"`
	Timing       string `json:"timing"`
}

const openingDelta = 2.0

// MeasureBodyOpening finds the first frame in [start,peak] whose shoulder rotation
// changes by more than 2 degrees from the previous defined sample. When none does,
// the middle sample is used. It needs at least 3 rotation samples.
func MeasureBodyOpening(history detector.FrameHistory, start, peak int) (BodyOpening, bool) {
	type rot struct {
		frame int
		deg   float64
	}
	var rots []rot
	for _, f := range history.Frames() {
		if f < start || f > peak {
			continue
		}
		if deg, ok := BodyRotation(history.Get(f)); ok {
			rots = append(rots, rot{f, deg})
		}
	}
	if len(rots) < 3 {
		return BodyOpening{}, false
	}

	opening := rots[len(rots)/2].frame
	for i := 1; i < len(rots); i++ {
		if math.Abs(rots[i].deg-rots[i-1].deg) > openingDelta {
			opening = rots[i].frame
			break
		}
	}

	before := peak - opening
	timing := TimingEarly
	switch {
	case before <= 2:
		timing = TimingLate
	case before <= 6:
		timing = TimingGood
	}
	return BodyOpening{Frame: opening, FramesBefore: before, Timing: timing}, true
}

// ShoulderWidth returns the horizontal distance between the shoulders.
func ShoulderWidth(frame *detector.JointFrame) (float64, bool) {
	if !frame.AllVisible(detector.LeftShoulder, detector.RightShoulder) {
		return 0, false
	}
	return math.Abs(frame.Point(detector.RightShoulder).X - frame.Point(detector.LeftShoulder).X), true
}

// StepWidthRatio returns the ankle span divided by the shoulder width.
// It is undefined when the shoulders are narrower than 0.01.
func StepWidthRatio(frame *detector.JointFrame) (float64, bool) {
	if !frame.AllVisible(detector.LeftAnkle, detector.RightAnkle) {
		return 0, false
	}
	sw, ok := ShoulderWidth(frame)
	if !ok || sw <= 0.01 {
		return 0, false
	}
	span := math.Abs(frame.Point(detector.RightAnkle).X - frame.Point(detector.LeftAnkle).X)
	return span / sw, true
}

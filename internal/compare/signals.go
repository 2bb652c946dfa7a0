package compare

import (
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
)

// DiffSample holds the B-A differences at one mapped pair. Angles only lists
// names defined on both sides. SpeedDiff is nil when either speed is unknown.
type DiffSample struct {
	Index     int                `json:"index"`
	FrameA    int                `json:"frame_a"`
	FrameB    int                `json:"frame_b"`
	Angles    map[string]float64 `json:"angles"`
	SpeedDiff *float64           `json:"speed_diff,omitempty"`
}

// DiffSeries computes a DiffSample for every pair of m.
func DiffSeries(anglesA, anglesB kinematics.AngleSeries, speedA, speedB kinematics.SpeedSeries, m Mapping) []DiffSample {
	sa := speedIndex(speedA)
	sb := speedIndex(speedB)

	out := make([]DiffSample, 0, len(m))
	for i, p := range m {
		d := DiffSample{Index: i, FrameA: p.A, FrameB: p.B, Angles: map[string]float64{}}
		fa, fb := anglesA[p.A], anglesB[p.B]
		for name, va := range fa {
			if vb, ok := fb[name]; ok {
				d.Angles[name] = vb - va
			}
		}
		va, okA := sa[p.A]
		vb, okB := sb[p.B]
		if okA && okB {
			diff := vb - va
			d.SpeedDiff = &diff
		}
		out = append(out, d)
	}
	return out
}

func speedIndex(s kinematics.SpeedSeries) map[int]float64 {
	idx := make(map[int]float64, len(s))
	for _, sample := range s {
		idx[sample.Frame] = sample.Speed
	}
	return idx
}

package compare

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
)

// DiffStatus classifies the difference of one angle between two frames.
type DiffStatus string

const (
	Same    DiffStatus = "same"
	Minor   DiffStatus = "minor"
	Major   DiffStatus = "major"
	Missing DiffStatus = "missing"
)

// AngleDiff compares one named angle. Diff is B-A and is nil unless both sides are defined.
type AngleDiff struct {
	Name   string     `json:"name"`
	A      *float64   `json:"value_a"`
	B      *float64   `json:"value_b"`
	Diff   *float64   `json:"diff"`
	Status DiffStatus `json:"status"`
}

// ClassifyDiff buckets an angle difference in degrees.
func ClassifyDiff(diff float64) DiffStatus {
	switch d := math.Abs(diff); {
	case d < 5:
		return Same
	case d < 15:
		return Minor
	}
	return Major
}

// CompareAngles compares every angle present in either frame, in name order.
func CompareAngles(a, b map[string]float64) []AngleDiff {
	names := make(map[string]struct{}, len(a)+len(b))
	for n := range a {
		names[n] = struct{}{}
	}
	for n := range b {
		names[n] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	diffs := make([]AngleDiff, 0, len(sorted))
	for _, name := range sorted {
		d := AngleDiff{Name: name, Status: Missing}
		va, okA := a[name]
		vb, okB := b[name]
		if okA {
			d.A = &va
		}
		if okB {
			d.B = &vb
		}
		if okA && okB {
			diff := vb - va
			d.Diff = &diff
			d.Status = ClassifyDiff(diff)
		}
		diffs = append(diffs, d)
	}
	return diffs
}

// CompareFrames compares the angles at frame fa of a and frame fb of b.
func CompareFrames(a, b kinematics.AngleSeries, fa, fb int) []AngleDiff {
	return CompareAngles(a[fa], b[fb])
}

// Similarity scores how alike two angle series are over m. Each mapped pair
// contributes max(0, 1-|diff|/90) for every angle defined on both sides.
// perAngle holds the mean per angle and overall is the mean of those.
func Similarity(a, b kinematics.AngleSeries, m Mapping) (overall float64, perAngle map[string]float64) {
	scores := make(map[string][]float64)
	for _, p := range m {
		fa, fb := a[p.A], b[p.B]
		for name, va := range fa {
			vb, ok := fb[name]
			if !ok {
				continue
			}
			scores[name] = append(scores[name], math.Max(0, 1-math.Abs(vb-va)/90))
		}
	}

	perAngle = make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return 0, perAngle
	}
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	means := make([]float64, 0, len(names))
	for _, name := range names {
		perAngle[name] = stat.Mean(scores[name], nil)
		means = append(means, perAngle[name])
	}
	return stat.Mean(means, nil), perAngle
}

package analysis

import (
	"github.com/google/uuid"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/compare"
)

// Comparison aligns two results and measures their differences.
type Comparison struct {
	ID         string                        `json:"id"`
	A          *Result                       `json:"a"`
	B          *Result                       `json:"b"`
	Sync       compare.Sync                  `json:"sync"`
	Similarity float64                       `json:"similarity"`
	PerAngle   map[string]float64            `json:"per_angle_similarity"`
	Shape      map[string]float64            `json:"shape_distance"`
	Diffs      []compare.DiffSample          `json:"diffs"`
	Evaluation *compare.EvaluationComparison `json:"evaluation,omitempty"`
}

// Compare synchronizes a and b at lm, with offset added to B's anchor.
func Compare(a, b *Result, lm compare.Landmark, offset int) *Comparison {
	sync := compare.Synchronize(
		compare.Track{Intervals: a.Intervals, TotalFrames: a.TotalFrames},
		compare.Track{Intervals: b.Intervals, TotalFrames: b.TotalFrames},
		lm, offset,
	)

	c := &Comparison{
		ID:         uuid.NewString(),
		A:          a,
		B:          b,
		Sync:       sync,
		Shape:      compare.ShapeDistance(a.Angles, b.Angles, sync.Mapping),
		Diffs:      compare.DiffSeries(a.Angles, b.Angles, a.Speed, b.Speed, sync.Mapping),
		Evaluation: compare.CompareEvaluations(a.Evaluation, b.Evaluation),
	}
	c.Similarity, c.PerAngle = compare.Similarity(a.Angles, b.Angles, sync.Mapping)
	return c
}

// AnglesAt compares the angles at mapping index i. ok is false outside the mapping.
func (c *Comparison) AnglesAt(i int) ([]compare.AngleDiff, bool) {
	if i < 0 || i >= len(c.Sync.Mapping) {
		return nil, false
	}
	p := c.Sync.Mapping[i]
	return compare.CompareFrames(c.A.Angles, c.B.Angles, p.A, p.B), true
}

package compare

import (
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/evaluate"
)

// CriterionDiff is the change of one criterion from A to B.
// A criterion missing on one side counts as zero there.
type CriterionDiff struct {
	Name   string `json:"name"`
	ScoreA int    `json:"score_a"`
	ScoreB int    `json:"score_b"`
	Max    int    `json:"max"`
	Change int    `json:"change"`
}

// EvaluationComparison summarizes how B scored relative to A.
type EvaluationComparison struct {
	ScoreChange int             `json:"score_change"`
	GradeA      string          `json:"grade_a"`
	GradeB      string          `json:"grade_b"`
	Improved    []string        `json:"improved"`
	Declined    []string        `json:"declined"`
	Details     []CriterionDiff `json:"detail_diffs"`
}

// CompareEvaluations compares two results criterion by criterion. Names are
// taken from A then B in order of first appearance. It returns nil if either
// result is nil.
func CompareEvaluations(a, b *evaluate.Result) *EvaluationComparison {
	if a == nil || b == nil {
		return nil
	}

	byName := func(r *evaluate.Result) map[string]evaluate.Criterion {
		m := make(map[string]evaluate.Criterion, len(r.Criteria))
		for _, c := range r.Criteria {
			m[c.Name] = c
		}
		return m
	}
	ca, cb := byName(a), byName(b)

	var names []string
	seen := map[string]bool{}
	for _, r := range []*evaluate.Result{a, b} {
		for _, c := range r.Criteria {
			if !seen[c.Name] {
				seen[c.Name] = true
				names = append(names, c.Name)
			}
		}
	}

	cmp := &EvaluationComparison{
		ScoreChange: b.TotalScore - a.TotalScore,
		GradeA:      a.Grade,
		GradeB:      b.Grade,
	}
	for _, name := range names {
		da, okA := ca[name]
		db, okB := cb[name]
		d := CriterionDiff{Name: name, ScoreA: da.Score, ScoreB: db.Score}
		switch {
		case okA:
			d.Max = da.Max
		case okB:
			d.Max = db.Max
		}
		d.Change = d.ScoreB - d.ScoreA
		cmp.Details = append(cmp.Details, d)

		switch {
		case d.Change > 0:
			cmp.Improved = append(cmp.Improved, name)
		case d.Change < 0:
			cmp.Declined = append(cmp.Declined, name)
		}
	}
	return cmp
}

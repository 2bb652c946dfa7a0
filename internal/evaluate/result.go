package evaluate

import "strings"

// Criterion is one scored rubric item.
type Criterion struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Score   int      `json:"score"`
	Max     int      `json:"max"`
	Status  Status   `json:"status"`
	Advice  string   `json:"advice"`
	Details []string `json:"details,omitempty"`
}

// Injury risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// FrameAngle is an angle measured at a frame.
type FrameAngle struct {
	Frame int     `json:"frame"`
	Angle float64 `json:"angle"`
}

// Result is a complete evaluation. InjuryRisk and InjuryWarnings are only set for pitching.
type Result struct {
	TotalScore     int          `json:"total_score"`
	Grade          string       `json:"grade"`
	Criteria       []Criterion  `json:"criteria"`
	Summary        string       `json:"summary"`
	InjuryRisk     string       `json:"injury_risk,omitempty"`
	InjuryWarnings []string     `json:"injury_warnings,omitempty"`
	ElbowAngles    []FrameAngle `json:"elbow_angles,omitempty"`
}

// MaxScore returns the sum of criterion maxima.
func (r Result) MaxScore() int {
	total := 0
	for _, c := range r.Criteria {
		total += c.Max
	}
	return total
}

// Partition splits criterion names into good and everything else.
func (r Result) Partition() (good, improve []string) {
	for _, c := range r.Criteria {
		if c.Status == Good {
			good = append(good, c.Name)
		} else {
			improve = append(improve, c.Name)
		}
	}
	return good, improve
}

// Criterion returns the criterion with key.
func (r Result) Criterion(key string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.Key == key {
			return c, true
		}
	}
	return Criterion{}, false
}

func finish(criteria []Criterion) Result {
	total := 0
	for _, c := range criteria {
		total += c.Score
	}
	r := Result{
		TotalScore: total,
		Grade:      Grade(total),
		Criteria:   criteria,
	}
	good, improve := r.Partition()
	var parts []string
	if len(good) > 0 {
		parts = append(parts, "Strong points: "+strings.Join(good, ", ")+".")
	}
	if len(improve) > 0 {
		parts = append(parts, "Work on: "+strings.Join(improve, ", ")+".")
	}
	r.Summary = strings.Join(parts, " ")
	return r
}

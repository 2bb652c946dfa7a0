// Package evaluate scores batting and pitching form against fixed rubrics.
package evaluate

import "math"

// Status is the judgement attached to a criterion or check.
type Status string

const (
	Good    Status = "good"
	Warning Status = "warning"
	Bad     Status = "bad"
	Info    Status = "info"
)

// Band scores a measurement against an ideal range. Values inside [Low,High]
// earn the full score, values within the tolerance just outside earn Near of
// it, and anything further out earns FarBelow or FarAbove.
type Band struct {
	Low, High          float64
	TolBelow, TolAbove float64
	Near               float64
	FarBelow, FarAbove float64
}

// Symmetric returns a band with equal tolerance on both sides and the usual
// 60% / 30% fractions.
func Symmetric(low, high, tol float64) Band {
	return Band{
		Low: low, High: high,
		TolBelow: tol, TolAbove: tol,
		Near:     0.6,
		FarBelow: 0.3, FarAbove: 0.3,
	}
}

// AtLeast returns a band where any value from low upward is ideal.
func AtLeast(low, tol float64) Band {
	return Symmetric(low, math.Inf(1), tol)
}

// AtMost returns a band where any value up to high is ideal.
func AtMost(high, tol float64) Band {
	return Symmetric(math.Inf(-1), high, tol)
}

// Classify returns the fraction of the maximum earned by v and its status.
func (b Band) Classify(v float64) (float64, Status) {
	switch {
	case v >= b.Low && v <= b.High:
		return 1, Good
	case v < b.Low && b.Low-v <= b.TolBelow:
		return b.Near, Warning
	case v > b.High && v-b.High <= b.TolAbove:
		return b.Near, Warning
	case v < b.Low:
		return b.FarBelow, Bad
	}
	return b.FarAbove, Bad
}

// Score returns the points v earns out of maxScore, truncated to an integer.
func (b Band) Score(v float64, maxScore int) (int, Status) {
	frac, status := b.Classify(v)
	return fraction(maxScore, frac), status
}

func fraction(maxScore int, f float64) int {
	return int(math.Floor(float64(maxScore)*f + 1e-9))
}

// Grade converts a total score to a letter.
func Grade(total int) string {
	switch {
	case total >= 85:
		return "S"
	case total >= 70:
		return "A"
	case total >= 55:
		return "B"
	case total >= 40:
		return "C"
	}
	return "D"
}

// GradeRank orders grades from best (0) to worst (4). Unknown grades rank last.
func GradeRank(g string) int {
	switch g {
	case "S":
		return 0
	case "A":
		return 1
	case "B":
		return 2
	case "C":
		return 3
	case "D":
		return 4
	}
	return 5
}

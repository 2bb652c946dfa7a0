// Package motion finds swing and pitch intervals in a limb speed series.
package motion

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
)

// ThresholdPolicy selects how the motion threshold is derived from a series.
type ThresholdPolicy int

const (
	// MeanStd uses mean + K*stddev of every sample, floored at Floor.
	MeanStd ThresholdPolicy = iota
	// Percentile uses the given percentile of the samples above NearZero, floored at Floor.
	Percentile
	// Fixed uses the Fixed value as is.
	Fixed
)

func (p ThresholdPolicy) String() string {
	switch p {
	case MeanStd:
		return "mean_std"
	case Percentile:
		return "percentile"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("ThresholdPolicy(%d)", int(p))
}

// ParsePolicy parses a policy name as produced by String.
func ParsePolicy(s string) (ThresholdPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean_std", "meanstd":
		return MeanStd, nil
	case "percentile":
		return Percentile, nil
	case "fixed":
		return Fixed, nil
	}
	return MeanStd, fmt.Errorf("unknown threshold policy %q", s)
}

// Config parameterizes interval detection.
type Config struct {
	Policy     ThresholdPolicy
	K          float64 // stddev multiplier for MeanStd
	Percentile float64 // 0-100, for Percentile
	NearZero   float64 // samples at or below are ignored by Percentile
	Floor      float64 // lower bound for computed thresholds
	Fixed      float64 // threshold for Fixed
	MinFrames  int     // minimum end-start of an emitted interval
}

// SwingConfig is the default configuration for batting clips. MinFrames 4
// accepts a run of five above-threshold frames.
func SwingConfig() Config {
	return Config{
		Policy:    MeanStd,
		K:         1.5,
		Floor:     0.8,
		MinFrames: 4,
	}
}

// PitchConfig is the default configuration for pitching clips.
func PitchConfig() Config {
	return Config{
		Policy:     Percentile,
		Percentile: 70,
		NearZero:   1e-3,
		Floor:      0.6,
		MinFrames:  3,
	}
}

// PitchMeanStdConfig detects pitches with mean + 1.2*stddev floored at 0.6,
// the same statistic as SwingConfig with a lower multiplier.
func PitchMeanStdConfig() Config {
	return Config{
		Policy:    MeanStd,
		K:         1.2,
		Floor:     0.6,
		MinFrames: 3,
	}
}

// Interval is a run of frames whose speed exceeds the threshold.
type Interval struct {
	Start     int     `json:"start"`
	End       int     `json:"end"`
	Peak      int     `json:"peak"`
	PeakSpeed float64 `json:"peak_speed"`
}

// Frames returns End-Start.
func (iv Interval) Frames() int {
	return iv.End - iv.Start
}

// Contains reports whether f lies in [Start,End].
func (iv Interval) Contains(f int) bool {
	return f >= iv.Start && f <= iv.End
}

// Threshold computes the motion threshold for speeds under cfg.
// An empty input falls back to the floor.
func Threshold(speeds []float64, cfg Config) float64 {
	switch cfg.Policy {
	case Fixed:
		return cfg.Fixed

	case Percentile:
		var moving []float64
		for _, v := range speeds {
			if v > cfg.NearZero {
				moving = append(moving, v)
			}
		}
		if len(moving) == 0 {
			return cfg.Floor
		}
		sort.Float64s(moving)
		q := stat.Quantile(cfg.Percentile/100, stat.Empirical, moving, nil)
		return math.Max(cfg.Floor, q)

	default:
		if len(speeds) == 0 {
			return cfg.Floor
		}
		mean, std := stat.PopMeanStdDev(speeds, nil)
		return math.Max(cfg.Floor, mean+cfg.K*std)
	}
}

// Detect scans series in order and returns every interval whose speed stays
// above the threshold for at least cfg.MinFrames. Shorter runs are dropped.
func Detect(series kinematics.SpeedSeries, cfg Config) []Interval {
	threshold := Threshold(series.Values(), cfg)
	return DetectWithThreshold(series, threshold, cfg.MinFrames)
}

// DetectWithThreshold is Detect with an explicit threshold.
func DetectWithThreshold(series kinematics.SpeedSeries, threshold float64, minFrames int) []Interval {
	var intervals []Interval

	inMotion := false
	var cur Interval

	closeRun := func() {
		if cur.Frames() >= minFrames {
			intervals = append(intervals, cur)
		}
		inMotion = false
	}

	for _, s := range series {
		if s.Speed > threshold {
			if !inMotion {
				inMotion = true
				cur = Interval{Start: s.Frame, End: s.Frame, Peak: s.Frame, PeakSpeed: s.Speed}
				continue
			}
			cur.End = s.Frame
			if s.Speed > cur.PeakSpeed {
				cur.Peak = s.Frame
				cur.PeakSpeed = s.Speed
			}
			continue
		}
		if inMotion {
			closeRun()
		}
	}
	if inMotion {
		closeRun()
	}

	return intervals
}

// Best returns the interval with the highest peak speed. The earliest wins ties.
func Best(intervals []Interval) (Interval, bool) {
	if len(intervals) == 0 {
		return Interval{}, false
	}
	best := intervals[0]
	for _, iv := range intervals[1:] {
		if iv.PeakSpeed > best.PeakSpeed {
			best = iv
		}
	}
	return best, true
}

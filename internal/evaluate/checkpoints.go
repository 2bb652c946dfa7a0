package evaluate

import (
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/phase"
)

// PhaseCheck is a single observation made at a phase's middle frame.
type PhaseCheck struct {
	Item   string  `json:"item"`
	Value  float64 `json:"value"`
	Status Status  `json:"status"`
	Advice string  `json:"advice"`
}

// Checkpoint groups the checks made for one batting phase.
type Checkpoint struct {
	Phase     phase.Key    `json:"phase"`
	PhaseName string       `json:"phase_name"`
	Frame     int          `json:"frame"`
	Checks    []PhaseCheck `json:"checks"`
}

// PhaseCheckpoints inspects the middle frame of each batting phase.
// Phases without a pose or without any measurable check are skipped.
func PhaseCheckpoints(history detector.FrameHistory, phases []phase.Phase) []Checkpoint {
	var out []Checkpoint
	for _, p := range phases {
		mid := (p.Start + p.End) / 2
		jf := history.Get(mid)
		if jf == nil {
			continue
		}

		var checks []PhaseCheck
		switch p.Key {
		case phase.Stance:
			angles := kinematics.FrameAngles(jf, kneeSides, nil)
			for _, d := range kneeSides {
				a, ok := angles[d.Name]
				if !ok {
					continue
				}
				c := PhaseCheck{Item: d.Name + " angle", Value: a, Status: Info, Advice: "knee may be bent too deeply"}
				switch {
				case a >= 130 && a <= 155:
					c.Status, c.Advice = Good, "knees moderately bent"
				case a > 165:
					c.Status, c.Advice = Warning, "bend the knees a little more"
				}
				checks = append(checks, c)
			}

		case phase.Load:
			if rot, ok := kinematics.BodyRotation(jf); ok {
				c := PhaseCheck{Item: "upper body twist", Value: rot, Status: Good, Advice: "upper body is coiled"}
				if rot >= 20 {
					c.Status, c.Advice = Warning, "twist a little more to store power"
				}
				checks = append(checks, c)
			}

		case phase.Swing:
			angles := kinematics.FrameAngles(jf, elbowSides, nil)
			for _, d := range []kinematics.AngleDef{elbowSides[1], elbowSides[0]} {
				a, ok := angles[d.Name]
				if !ok {
					continue
				}
				c := PhaseCheck{Item: d.Name + " angle", Value: a, Status: Info}
				switch {
				case a >= 140 && a <= 175:
					c.Status, c.Advice = Good, "elbow is well extended"
				case a < 120:
					c.Status, c.Advice = Warning, "elbow is bent too much"
				}
				checks = append(checks, c)
			}

		case phase.FollowThrough:
			if a, ok := firstVisible(jf, elbowSides); ok && a > 150 {
				checks = append(checks, PhaseCheck{Item: "arm extension", Value: a, Status: Good, Advice: "swing is finished all the way"})
			}
		}

		if len(checks) > 0 {
			out = append(out, Checkpoint{Phase: p.Key, PhaseName: p.Key.Info().Name, Frame: mid, Checks: checks})
		}
	}
	return out
}

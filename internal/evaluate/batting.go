package evaluate

import (
	"math"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

// Batting criterion keys.
const (
	KneeBend       = "knee_bend"
	ElbowExtension = "elbow_extension"
	StepWidth      = "step_width"
	WeightShift    = "weight_shift"
	FollowThrough  = "follow_through"
	HeadStability  = "head_stability"
)

type rubricItem struct {
	key        string
	name       string
	max        int
	band       Band
	adviceGood string
	adviceWarn string
}

var battingRubric = map[string]rubricItem{
	KneeBend: {
		KneeBend, "Knee bend", 20, Symmetric(130, 155, 20),
		"Knees are flexed for a stable stance",
		"Keep a moderate bend in the knees",
	},
	ElbowExtension: {
		ElbowExtension, "Elbow extension", 20,
		Band{Low: 140, High: 175, TolBelow: 20, Near: 0.6, FarBelow: 0.3, FarAbove: 0.3},
		"Arms extend well through contact",
		"Extend the elbows more at contact",
	},
	StepWidth: {
		StepWidth, "Step width", 15, Symmetric(1.0, 1.6, 0.3),
		"Stride width is appropriate",
		"Adjust the stride width",
	},
	WeightShift: {
		WeightShift, "Weight shift", 20, AtLeast(0.15, 0.07),
		"Weight moves smoothly from the back foot to the front foot",
		"Focus on transferring weight forward",
	},
	FollowThrough: {
		FollowThrough, "Follow-through", 15, Band{Low: 150, High: 180, TolBelow: 30, Near: 0.6, FarBelow: 0.3, FarAbove: 0.3},
		"Swing is finished all the way through",
		"Swing all the way through",
	},
	HeadStability: {
		HeadStability, "Head stability", 10, AtMost(0.05, 0.05),
		"Head stays still during the swing",
		"Head moves too much during the swing",
	},
}

// BattingCriteria lists the batting criterion keys in rubric order.
var BattingCriteria = []string{KneeBend, ElbowExtension, StepWidth, WeightShift, FollowThrough, HeadStability}

var (
	kneeSides = kinematics.AngleSet{
		kinematics.BattingAngles[2],
		kinematics.BattingAngles[3],
	}
	elbowSides = kinematics.AngleSet{
		kinematics.BattingAngles[0],
		kinematics.BattingAngles[1],
	}
)

// score rates a measurement, or returns zero and Bad when ok is false.
func (it rubricItem) score(v float64, ok bool, details ...string) Criterion {
	c := Criterion{Key: it.key, Name: it.name, Max: it.max, Status: Bad, Advice: it.adviceWarn, Details: details}
	if !ok {
		c.Details = append(c.Details, "not enough data")
		return c
	}
	c.Score, c.Status = it.band.Score(v, it.max)
	if c.Status == Good {
		c.Advice = it.adviceGood
	}
	return c
}

// EvaluateBatting scores the swing iv. weight is the weight shift series over
// the interval, as produced by kinematics.WeightShift.
func EvaluateBatting(history detector.FrameHistory, iv motion.Interval, weight []kinematics.WeightSample) Result {
	criteria := []Criterion{
		battingRubric[KneeBend].score(stanceKnee(history, iv)),
		battingRubric[ElbowExtension].score(contactElbow(history, iv)),
		battingRubric[StepWidth].score(kinematics.StepWidthRatio(history.Get(iv.Peak))),
		battingRubric[WeightShift].score(weightTransfer(weight)),
		battingRubric[FollowThrough].score(followElbow(history, iv)),
		battingRubric[HeadStability].score(headTravel(history, iv)),
	}
	return finish(criteria)
}

// firstVisible returns the first angle of set that can be measured on jf.
func firstVisible(jf *detector.JointFrame, set kinematics.AngleSet) (float64, bool) {
	angles := kinematics.FrameAngles(jf, set, nil)
	for _, d := range set {
		if v, ok := angles[d.Name]; ok {
			return v, true
		}
	}
	return 0, false
}

func stanceKnee(history detector.FrameHistory, iv motion.Interval) (float64, bool) {
	f := iv.Start
	if iv.Start > 5 {
		f = iv.Start - 5
	}
	return firstVisible(history.Get(f), kneeSides)
}

func contactElbow(history detector.FrameHistory, iv motion.Interval) (float64, bool) {
	angles := kinematics.FrameAngles(history.Get(iv.Peak), elbowSides, nil)
	best, ok := 0.0, false
	for _, v := range angles {
		if !ok || v > best {
			best, ok = v, true
		}
	}
	return best, ok
}

func weightTransfer(weight []kinematics.WeightSample) (float64, bool) {
	if len(weight) < 3 {
		return 0, false
	}
	return math.Abs(weight[len(weight)-1].Ratio - weight[0].Ratio), true
}

func followElbow(history detector.FrameHistory, iv motion.Interval) (float64, bool) {
	f := iv.Peak + 10
	if f > iv.End {
		f = iv.End
	}
	return firstVisible(history.Get(f), elbowSides)
}

// headTravel is the diagonal of the box covering the nose from the start
// of the swing to shortly after contact.
func headTravel(history detector.FrameHistory, iv motion.Interval) (float64, bool) {
	end := iv.End + 1
	if iv.Peak+5 < end {
		end = iv.Peak + 5
	}

	n := 0
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for f := iv.Start; f < end; f++ {
		jf := history.Get(f)
		if !jf.Visible(detector.Nose, detector.VisibilityThreshold) {
			continue
		}
		p := jf.Point(detector.Nose)
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		n++
	}
	if n < 3 {
		return 0, false
	}
	return math.Hypot(maxX-minX, maxY-minY), true
}

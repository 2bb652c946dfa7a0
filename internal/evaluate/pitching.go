package evaluate

import (
	"fmt"
	"math"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

// Pitching criterion keys. FollowThrough is shared with batting.
const (
	ElbowSafety    = "elbow_safety"
	ShoulderSafety = "shoulder_safety"
	BodyUsage      = "body_usage"
	Stride         = "stride"
)

// PitchingCriteria lists the pitching criterion keys in rubric order.
var PitchingCriteria = []string{ElbowSafety, ShoulderSafety, BodyUsage, Stride, FollowThrough}

// Risk is the injury-risk level of a safety check.
type Risk string

const (
	Safe    Risk = "safe"
	Caution Risk = "warning"
	Danger  Risk = "danger"
	Unknown Risk = "unknown"
)

// strideBand: ideal 70-95% of body height, 80% of the score just outside,
// half below 60% and 60% beyond 100%.
var strideBand = Band{
	Low: 0.7, High: 0.95,
	TolBelow: 0.1, TolAbove: 0.05,
	Near:     0.8,
	FarBelow: 0.5, FarAbove: 0.6,
}

type check struct {
	score   int
	risk    Risk
	details []string
	defined bool
}

// EvaluatePitching scores the pitch iv, whose Peak is the release frame.
func EvaluatePitching(history detector.FrameHistory, iv motion.Interval, fps float64, arm kinematics.Arm) Result {
	elbow, angles := elbowSafety(history, iv, arm)
	shoulder := shoulderSafety(history, iv, arm)
	body := bodyUsage(history, iv)
	stride := strideLength(history, iv)
	follow := followThrough(history, iv, fps, arm)

	riskStatus := func(r Risk) Status {
		switch r {
		case Safe:
			return Good
		case Caution:
			return Warning
		}
		return Bad
	}
	scoreStatus := func(c check, good int) Status {
		if !c.defined {
			return Bad
		}
		if c.score >= good {
			return Good
		}
		return Warning
	}

	shoulderStatus := Warning
	if shoulder.risk == Safe {
		shoulderStatus = Good
	} else if shoulder.risk == Unknown {
		shoulderStatus = Bad
	}

	criteria := []Criterion{
		pitchCriterion(ElbowSafety, "Elbow safety", 25, elbow, riskStatus(elbow.risk),
			"No excessive stress on the elbow",
			"Watch the load on the elbow",
			"Heavy stress on the elbow; the delivery should be corrected"),
		pitchCriterion(ShoulderSafety, "Shoulder safety", 25, shoulder, shoulderStatus,
			"The shoulder is used safely",
			"Watch the load on the shoulder",
			"Heavy stress on the shoulder"),
		pitchCriterion(BodyUsage, "Body usage", 20, body, scoreStatus(body, 15),
			"The lower body drives the delivery",
			"Use the lower body more", ""),
		pitchCriterion(Stride, "Stride", 15, stride, scoreStatus(stride, 12),
			"Stride length is appropriate",
			"Adjust the stride length", ""),
		pitchCriterion(FollowThrough, "Follow-through", 15, follow, scoreStatus(follow, 12),
			"The whole body finishes the throw",
			"Finish the throw with the whole body", ""),
	}

	r := finish(criteria)
	r.ElbowAngles = angles
	r.InjuryRisk = InjuryRisk(elbow.risk, shoulder.risk)
	if elbow.risk == Caution || elbow.risk == Danger {
		r.InjuryWarnings = append(r.InjuryWarnings, elbow.details...)
	}
	if shoulder.risk == Caution || shoulder.risk == Danger {
		r.InjuryWarnings = append(r.InjuryWarnings, shoulder.details...)
	}

	switch r.InjuryRisk {
	case RiskHigh:
		r.Summary += " High injury risk: work on the delivery soon."
	case RiskMedium:
		r.Summary += " Some stress on the shoulder or elbow."
	}
	return r
}

// InjuryRisk combines the elbow and shoulder checks.
func InjuryRisk(elbow, shoulder Risk) string {
	switch {
	case elbow == Danger || shoulder == Danger:
		return RiskHigh
	case elbow == Caution || shoulder == Caution:
		return RiskMedium
	}
	return RiskLow
}

func pitchCriterion(key, name string, maxScore int, c check, status Status, good, warn, bad string) Criterion {
	advice := warn
	switch {
	case status == Good:
		advice = good
	case status == Bad && bad != "":
		advice = bad
	}
	score := c.score
	if !c.defined {
		score = 0
	}
	score = clamp(score, 0, maxScore)
	return Criterion{Key: key, Name: name, Score: score, Max: maxScore, Status: status, Advice: advice, Details: c.details}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func elbowAngle(jf *detector.JointFrame, j kinematics.ArmJoints) (float64, bool) {
	if !jf.AllVisible(j.Shoulder, j.Elbow, j.Wrist) {
		return 0, false
	}
	return kinematics.Angle(jf.Point(j.Shoulder), jf.Point(j.Elbow), jf.Point(j.Wrist)), true
}

func elbowSafety(history detector.FrameHistory, iv motion.Interval, arm kinematics.Arm) (check, []FrameAngle) {
	j := arm.Joints()
	var angles []FrameAngle
	minAngle, minFrame := math.Inf(1), iv.Peak
	for f := iv.Start; f <= iv.End; f++ {
		a, ok := elbowAngle(history.Get(f), j)
		if !ok {
			continue
		}
		angles = append(angles, FrameAngle{Frame: f, Angle: a})
		if a < minAngle {
			minAngle, minFrame = a, f
		}
	}
	if len(angles) == 0 {
		return check{risk: Unknown, details: []string{"elbow not visible during the pitch"}}, nil
	}

	c := check{score: 25, risk: Safe, defined: true}
	switch {
	case minAngle < 120:
		c.risk = Danger
		c.score = fraction(25, 0.2)
		c.details = append(c.details, fmt.Sprintf("minimum elbow angle %.0f° at frame %d: high valgus stress", minAngle, minFrame))
	case minAngle < 140:
		c.risk = Caution
		c.score = fraction(25, 0.6)
		c.details = append(c.details, fmt.Sprintf("minimum elbow angle %.0f°: some stress", minAngle))
	default:
		c.details = append(c.details, fmt.Sprintf("elbow angle within the safe range (minimum %.0f°)", minAngle))
	}

	if a, ok := elbowAngle(history.Get(iv.Peak), j); ok && a < 150 {
		c.details = append(c.details, fmt.Sprintf("elbow angle at release %.0f°: arm is bent", a))
		c.score = max(0, c.score-5)
	}
	return c, angles
}

func shoulderSafety(history detector.FrameHistory, iv motion.Interval, arm kinematics.Arm) check {
	j := arm.Joints()
	c := check{score: 25, risk: Safe}

	if jf := history.Get(iv.Peak); jf.AllVisible(j.Shoulder, j.Elbow) {
		c.defined = true
		diff := jf.Point(j.Shoulder).Y - jf.Point(j.Elbow).Y
		switch {
		case diff > 0.02:
			c.details = append(c.details, "elbow above the shoulder at release")
		case diff > -0.02:
			c.details = append(c.details, "elbow level with the shoulder at release")
		default:
			c.risk = Caution
			c.score = fraction(c.score, 0.5)
			c.details = append(c.details, "elbow below the shoulder at release: heavy shoulder load")
		}
	}

	for f := iv.Start; f < iv.Peak; f++ {
		jf := history.Get(f)
		if !jf.AllVisible(j.Shoulder, j.Elbow, j.Hip) {
			continue
		}
		c.defined = true
		a := kinematics.Angle(jf.Point(j.Elbow), jf.Point(j.Shoulder), jf.Point(j.Hip))
		if a > 110 {
			if c.risk == Safe {
				c.risk = Caution
				c.score = fraction(c.score, 0.6)
			}
			c.details = append(c.details, fmt.Sprintf("large shoulder abduction (%.0f° at frame %d): impingement risk", a, f))
			break
		}
	}

	if !c.defined {
		return check{risk: Unknown, details: []string{"shoulder not visible during the pitch"}}
	}
	if len(c.details) == 0 {
		c.details = append(c.details, "shoulder use within the safe range")
	}
	return c
}

func bodyUsage(history detector.FrameHistory, iv motion.Interval) check {
	c := check{score: 20}

	// Early opening: shoulders already turned before the pitch starts.
	for f := iv.Start - 5; f < iv.Peak; f++ {
		rot, ok := kinematics.BodyRotation(history.Get(f))
		if !ok {
			continue
		}
		c.defined = true
		if f < iv.Start && rot > 25 {
			c.details = append(c.details, "body opens early: lead with the lower body")
			c.score = max(0, c.score-8)
			break
		}
	}

	// Kinematic sequence: hips should reach peak turn before the shoulders.
	hipPeak, shoulderPeak := -1, -1
	hipMax, shoulderMax := math.Inf(-1), math.Inf(-1)
	n := 0
	for f := iv.Start; f <= iv.Peak; f++ {
		jf := history.Get(f)
		if !jf.AllVisible(detector.LeftHip, detector.RightHip, detector.LeftShoulder, detector.RightShoulder) {
			continue
		}
		n++
		if h := math.Abs(jf.Point(detector.RightHip).X - jf.Point(detector.LeftHip).X); h > hipMax {
			hipMax, hipPeak = h, f
		}
		if s := math.Abs(jf.Point(detector.RightShoulder).X - jf.Point(detector.LeftShoulder).X); s > shoulderMax {
			shoulderMax, shoulderPeak = s, f
		}
	}
	if n >= 3 {
		c.defined = true
		if hipPeak <= shoulderPeak {
			c.details = append(c.details, "hips rotate before the shoulders: good sequencing")
		} else {
			c.details = append(c.details, "shoulders rotate first: lead with the hips")
			c.score = max(0, c.score-6)
		}
	}

	if !c.defined {
		c.details = append(c.details, "body rotation could not be measured")
	} else if len(c.details) == 0 {
		c.details = append(c.details, "body usage is generally good")
	}
	return c
}

func strideLength(history detector.FrameHistory, iv motion.Interval) check {
	jf := history.Get(iv.Peak)
	if !jf.AllVisible(detector.LeftAnkle, detector.RightAnkle, detector.Nose) {
		return check{details: []string{"stride length could not be measured"}}
	}
	la, ra := jf.Point(detector.LeftAnkle), jf.Point(detector.RightAnkle)
	height := math.Max(la.Y, ra.Y) - jf.Point(detector.Nose).Y
	if height <= 0.1 {
		return check{details: []string{"stride length could not be measured"}}
	}

	ratio := math.Abs(la.X-ra.X) / height
	score, _ := strideBand.Score(ratio, 15)
	return check{
		score:   score,
		defined: true,
		details: []string{fmt.Sprintf("stride length %.0f%% of body height", ratio*100)},
	}
}

func followThrough(history detector.FrameHistory, iv motion.Interval, fps float64, arm kinematics.Arm) check {
	j := arm.Joints()
	c := check{score: 15}

	last := iv.Peak + 10
	if fps > 0 {
		last = iv.Peak + int(fps*0.3)
	}
	if iv.End < last {
		last = iv.End
	}

	var path []detector.Point2D
	for f := iv.Peak; f <= last; f++ {
		jf := history.Get(f)
		if jf.Visible(j.Wrist, detector.VisibilityThreshold) {
			path = append(path, jf.Point(j.Wrist))
		}
	}
	if len(path) >= 3 {
		c.defined = true
		travel := 0.0
		for i := 1; i < len(path); i++ {
			travel += path[i].Sub(path[i-1]).Norm()
		}
		if travel > 0.05 {
			c.details = append(c.details, "arm keeps moving after release")
		} else {
			c.score = fraction(c.score, 0.5)
			c.details = append(c.details, "arm stops abruptly after release: decelerate with the whole body")
		}
	} else {
		c.details = append(c.details, "not enough data to analyze the follow-through")
	}

	if jf := history.Get(last); jf.AllVisible(detector.Nose, j.Hip) {
		c.defined = true
		if jf.Point(detector.Nose).Y-jf.Point(j.Hip).Y > 0.05 {
			c.details = append(c.details, "body falls forward: good finish")
		} else {
			c.details = append(c.details, "bend forward more to finish the throw")
			c.score = max(0, c.score-3)
		}
	}
	return c
}

package evaluate

import (
	"fmt"
	"math"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

// FormCheck is one item of the batting form checklist.
// Detected is false when the joints needed for the item were not visible.
type FormCheck struct {
	Key       string   `json:"key"`
	Item      string   `json:"item"`
	Value     *float64 `json:"value,omitempty"`
	Display   string   `json:"display"`
	Judgement string   `json:"judgement"`
	Status    Status   `json:"status"`
	Detail    string   `json:"detail"`
	Detected  bool     `json:"detected"`
}

func notDetected(key, item, detail string) FormCheck {
	return FormCheck{Key: key, Item: item, Display: "-", Judgement: "not detected", Status: Info, Detail: detail}
}

func measured(key, item string, v float64, display, judgement string, status Status, detail string) FormCheck {
	return FormCheck{
		Key: key, Item: item, Value: &v, Display: display,
		Judgement: judgement, Status: status, Detail: detail, Detected: true,
	}
}

// CheckBattingForm runs the six-item batting checklist for the swing iv.
func CheckBattingForm(history detector.FrameHistory, iv motion.Interval) []FormCheck {
	var checks []FormCheck

	// Stance width
	stanceFrame := max(0, iv.Start-5)
	if ratio, ok := kinematics.StepWidthRatio(history.Get(stanceFrame)); ok {
		judgement, status := "appropriate", Good
		switch {
		case ratio < 0.8:
			judgement, status = "narrow", Warning
		case ratio > 1.5:
			judgement, status = "wide", Warning
		}
		checks = append(checks, measured("stance_width", "Stance width", ratio,
			fmt.Sprintf("%.2fx shoulder width", ratio), judgement, status,
			"ankle span / shoulder width, 0.8-1.5 is appropriate"))
	} else {
		checks = append(checks, notDetected("stance_width", "Stance width", "joints were not detected clearly"))
	}

	// Takeback: hands near chin height
	tb := history.Get(max(0, iv.Start-3))
	if tb.AllVisible(detector.Nose, detector.RightWrist) {
		noseY, wristY := tb.Point(detector.Nose).Y, tb.Point(detector.RightWrist).Y
		diff := math.Abs(wristY - noseY)
		judgement, status := "appropriate", Good
		switch {
		case diff < 0.15:
		case wristY < noseY:
			judgement, status = "too high", Warning
		default:
			judgement, status = "too low", Warning
		}
		checks = append(checks, measured("takeback", "Takeback", diff,
			fmt.Sprintf("%.3f from the nose", diff), judgement, status,
			"wrist near chin height, difference under 0.15 is appropriate"))
	} else {
		checks = append(checks, notDetected("takeback", "Takeback", "joints were not detected clearly"))
	}

	// Body opening
	if op, ok := kinematics.MeasureBodyOpening(history, iv.Start, iv.Peak); ok {
		status, detail := Warning, ""
		switch op.Timing {
		case kinematics.TimingLate:
			detail = "shoulders open right before contact, power does not transfer well"
		case kinematics.TimingGood:
			status, detail = Good, "body opens in time with contact"
		default:
			detail = "shoulders open too early and may lose power"
		}
		checks = append(checks, measured("body_opening", "Body opening", float64(op.FramesBefore),
			fmt.Sprintf("%d frames before contact", op.FramesBefore), op.Timing, status, detail))
	} else {
		checks = append(checks, notDetected("body_opening", "Body opening", "not enough shoulder rotation data"))
	}

	// Elbows at contact
	contact := kinematics.FrameAngles(history.Get(iv.Peak), elbowSides, nil)
	elbowChecked := false
	for _, d := range elbowSides {
		angle, ok := contact[d.Name]
		if !ok {
			continue
		}
		judgement, status := "extended", Good
		switch {
		case angle < 120:
			judgement, status = "too bent", Bad
		case angle < 140:
			judgement, status = "slightly bent", Warning
		}
		checks = append(checks, measured("impact_"+d.Name, "Contact "+d.Name+" angle", angle,
			fmt.Sprintf("%.1f°", angle), judgement, status, "140° or more is well extended"))
		elbowChecked = true
	}
	if !elbowChecked {
		checks = append(checks, notDetected("impact_elbow", "Contact elbow angle", "joints were not detected clearly"))
	}

	// Follow-through weight position
	followFrame := min(iv.Peak+5, iv.End)
	weight := kinematics.WeightShift(history, followFrame, followFrame)
	if fj := history.Get(followFrame); len(weight) == 1 && ankleSpan(fj) > 0.01 {
		shift := weight[0].Ratio
		judgement, status := "back foot (weight stayed back)", Warning
		switch {
		case shift < 0.45:
			judgement, status = "front foot (weight transferred)", Good
		case shift < 0.55:
			judgement, status = "center", Info
		}
		checks = append(checks, measured("follow_through", "Follow-through", shift,
			fmt.Sprintf("weight position %.2f", shift), judgement, status,
			"hip center toward the front foot means the weight moved"))
	} else {
		checks = append(checks, notDetected("follow_through", "Follow-through", "joints were not detected clearly"))
	}

	// Head stability
	if hs, ok := kinematics.MeasureHeadStability(history, iv.Start, iv.End); ok {
		judgement, status := "unsteady", Warning
		if hs.Stable {
			judgement, status = "stable", Good
		}
		checks = append(checks, measured("head_stability", "Head stability", math.Max(hs.StdX, hs.StdY),
			fmt.Sprintf("std x %.4f, y %.4f", hs.StdX, hs.StdY), judgement, status,
			"nose position standard deviation under 0.02 is stable"))
	} else {
		checks = append(checks, notDetected("head_stability", "Head stability", "not enough nose detections"))
	}

	return checks
}

func ankleSpan(jf *detector.JointFrame) float64 {
	if !jf.AllVisible(detector.LeftAnkle, detector.RightAnkle) {
		return 0
	}
	return math.Abs(jf.Point(detector.LeftAnkle).X - jf.Point(detector.RightAnkle).X)
}

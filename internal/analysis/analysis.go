// Package analysis runs the full pipeline over a pose history: limb speed,
// motion intervals, phases, release or contact metrics and evaluation.
package analysis

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/evaluate"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/phase"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/release"
)

// Kind is the motion being analyzed.
type Kind string

const (
	Batting  Kind = "batting"
	Pitching Kind = "pitching"
)

// ParseKind accepts batting or pitching.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Batting:
		return Batting, nil
	case Pitching:
		return Pitching, nil
	}
	return "", fmt.Errorf("unknown analysis kind %q", s)
}

// Options parameterizes one analysis run.
type Options struct {
	Kind        Kind
	Arm         kinematics.Arm
	FPS         float64
	TotalFrames int
	// Size scales angle computation to pixels when set.
	Size  *kinematics.ImageSize
	Swing motion.Config
	Pitch motion.Config
}

// DefaultOptions returns options with the default detector settings for kind.
func DefaultOptions(kind Kind, fps float64) Options {
	return Options{
		Kind:  kind,
		Arm:   kinematics.RightArm,
		FPS:   fps,
		Swing: motion.SwingConfig(),
		Pitch: motion.PitchConfig(),
	}
}

// Result is everything derived from one video.
type Result struct {
	ID          string                    `json:"id"`
	Kind        Kind                      `json:"kind"`
	Arm         string                    `json:"arm"`
	FPS         float64                   `json:"fps"`
	TotalFrames int                       `json:"total_frames"`
	Detected    int                       `json:"detected"`
	AngleNames  []string                  `json:"angle_names"`
	Angles      kinematics.AngleSeries    `json:"angles"`
	Speed       kinematics.SpeedSeries    `json:"speed"`
	Threshold   float64                   `json:"threshold"`
	Intervals   []motion.Interval         `json:"intervals"`
	Best        *motion.Interval          `json:"best,omitempty"`
	Phases      []phase.Phase             `json:"phases"`
	Release     *release.Point            `json:"release,omitempty"`
	ArmSlot     *float64                  `json:"arm_slot,omitempty"`
	Slot        release.Slot              `json:"slot,omitempty"`
	Contact     *release.Contact          `json:"contact,omitempty"`
	Weight      []kinematics.WeightSample `json:"weight_shift,omitempty"`
	Evaluation  *evaluate.Result          `json:"evaluation,omitempty"`
	FormChecks  []evaluate.FormCheck      `json:"form_checks,omitempty"`
	Checkpoints []evaluate.Checkpoint     `json:"checkpoints,omitempty"`
}

func (o Options) angleSet() kinematics.AngleSet {
	if o.Kind == Pitching {
		return kinematics.PitchingAngles(o.Arm)
	}
	return kinematics.BattingAngles
}

func (o Options) speedJoint() int {
	if o.Kind == Pitching {
		return o.Arm.Joints().Wrist
	}
	return detector.RightWrist
}

func (o Options) motionConfig() motion.Config {
	if o.Kind == Pitching {
		return o.Pitch
	}
	return o.Swing
}

// Analyze runs the pipeline over history. When no interval is found only the
// per-frame signals are filled in.
func Analyze(history detector.FrameHistory, opts Options) *Result {
	set := opts.angleSet()
	cfg := opts.motionConfig()

	r := &Result{
		ID:          uuid.NewString(),
		Kind:        opts.Kind,
		Arm:         opts.Arm.String(),
		FPS:         opts.FPS,
		TotalFrames: opts.TotalFrames,
		Detected:    history.Detected(),
		AngleNames:  set.Names(),
		Angles:      kinematics.ComputeAngleSeries(history, set, opts.Size),
		Speed:       kinematics.LimbSpeed(history, opts.speedJoint(), opts.FPS),
	}
	if frames := history.Frames(); len(frames) > 0 {
		r.TotalFrames = max(r.TotalFrames, frames[len(frames)-1]+1)
	}

	r.Threshold = motion.Threshold(r.Speed.Values(), cfg)
	r.Intervals = motion.DetectWithThreshold(r.Speed, r.Threshold, cfg.MinFrames)

	best, ok := motion.Best(r.Intervals)
	if !ok {
		return r
	}
	r.Best = &best

	switch opts.Kind {
	case Pitching:
		r.Phases = phase.SegmentPitching(history, best, opts.FPS, opts.Arm)
		if p, ok := release.Detect(history, best.Peak, opts.Arm); ok {
			r.Release = &p
		}
		if deg, ok := release.ArmSlot(history, best.Peak, opts.Arm); ok {
			r.ArmSlot = &deg
			r.Slot = release.ClassifySlot(deg)
		}
		ev := evaluate.EvaluatePitching(history, best, opts.FPS, opts.Arm)
		r.Evaluation = &ev

	default:
		r.Phases = phase.SegmentBatting(history, r.Speed, best, opts.FPS)
		contact := release.MeasureContact(history, best, opts.FPS)
		r.Contact = &contact
		r.Weight = kinematics.WeightShift(history, best.Start, best.End)
		ev := evaluate.EvaluateBatting(history, best, r.Weight)
		r.Evaluation = &ev
		r.FormChecks = evaluate.CheckBattingForm(history, best)
		r.Checkpoints = evaluate.PhaseCheckpoints(history, r.Phases)
	}
	return r
}

// PhaseAt returns the phase containing frame f.
func (r *Result) PhaseAt(f int) (phase.Phase, bool) {
	return phase.At(r.Phases, f)
}

// AnglesAt returns the angles measured at frame f. The map is empty when the
// frame had no pose.
func (r *Result) AnglesAt(f int) map[string]float64 {
	if a, ok := r.Angles[f]; ok {
		return a
	}
	return map[string]float64{}
}

// FrameState is the per-frame view used by playback.
type FrameState struct {
	Frame      int                `json:"frame"`
	Phase      phase.Key          `json:"phase,omitempty"`
	PhaseName  string             `json:"phase_name,omitempty"`
	PhaseColor string             `json:"phase_color,omitempty"`
	Angles     map[string]float64 `json:"angles"`
	Speed      *float64           `json:"speed,omitempty"`
	InMotion   bool               `json:"in_motion"`
}

// StateAt assembles the FrameState for frame f.
func (r *Result) StateAt(f int) FrameState {
	s := FrameState{Frame: f, Angles: r.AnglesAt(f)}
	if p, ok := r.PhaseAt(f); ok {
		info := p.Key.Info()
		s.Phase, s.PhaseName, s.PhaseColor = p.Key, info.Name, info.Color
	}
	if v, ok := r.Speed.At(f); ok {
		s.Speed = &v
	}
	for _, iv := range r.Intervals {
		if iv.Contains(f) {
			s.InMotion = true
			break
		}
	}
	return s
}

// Package phase splits a detected swing or pitch into named biomechanical phases.
package phase

import (
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

// Key identifies a phase.
type Key string

// Batting phases, in order.
const (
	Stance        Key = "stance"
	Load          Key = "load"
	Stride        Key = "stride"
	Swing         Key = "swing"
	FollowThrough Key = "follow_through"
)

// Pitching phases, in order. Stride and FollowThrough are shared with batting.
const (
	Windup       Key = "windup"
	LegLift      Key = "leg_lift"
	ArmCocking   Key = "arm_cocking"
	Acceleration Key = "acceleration"
)

// BattingKeys lists the batting phases in order.
var BattingKeys = []Key{Stance, Load, Stride, Swing, FollowThrough}

// PitchingKeys lists the pitching phases in order.
var PitchingKeys = []Key{Windup, LegLift, Stride, ArmCocking, Acceleration, FollowThrough}

// Info is display metadata for a phase.
type Info struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var infos = map[Key]Info{
	Stance:        {"Stance", "#2196F3"},
	Load:          {"Load", "#FF9800"},
	Stride:        {"Stride", "#9C27B0"},
	Swing:         {"Swing", "#F44336"},
	FollowThrough: {"Follow-through", "#4CAF50"},
	Windup:        {"Wind-up", "#2196F3"},
	LegLift:       {"Leg lift", "#9C27B0"},
	ArmCocking:    {"Arm cocking", "#E91E63"},
	Acceleration:  {"Acceleration", "#F44336"},
}

// Info returns display metadata for k.
func (k Key) Info() Info {
	if info, ok := infos[k]; ok {
		return info
	}
	return Info{Name: string(k), Color: "#9E9E9E"}
}

// Phase is an inclusive frame range.
type Phase struct {
	Key   Key `json:"key"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether f lies in [Start,End].
func (p Phase) Contains(f int) bool {
	return f >= p.Start && f <= p.End
}

// Window is the inclusive analysis range around an interval.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// margin converts seconds to frames, falling back to fixed frame counts when fps is unknown.
func margin(fps, seconds float64, fallback int) int {
	if fps > 0 {
		return int(fps * seconds)
	}
	return fallback
}

func window(iv motion.Interval, pre, post int) Window {
	start := iv.Start - pre
	if start < 0 {
		start = 0
	}
	return Window{Start: start, End: iv.End + post}
}

// BattingWindow extends iv by 0.5s before and 0.3s after.
func BattingWindow(iv motion.Interval, fps float64) Window {
	return window(iv, margin(fps, 0.5, 15), margin(fps, 0.3, 10))
}

// PitchingWindow extends iv by 0.8s before and 0.4s after.
func PitchingWindow(iv motion.Interval, fps float64) Window {
	return window(iv, margin(fps, 0.8, 24), margin(fps, 0.4, 12))
}

// At returns the first phase containing f.
func At(phases []Phase, f int) (Phase, bool) {
	for _, p := range phases {
		if p.Contains(f) {
			return p, true
		}
	}
	return Phase{}, false
}

// Find returns the phase with key k.
func Find(phases []Phase, k Key) (Phase, bool) {
	for _, p := range phases {
		if p.Key == k {
			return p, true
		}
	}
	return Phase{}, false
}

// builder appends phases in order. A phase never starts before the end of the
// previous one, and a phase whose end precedes its start is dropped.
type builder struct {
	phases []Phase
	next   int
}

func newBuilder(w Window) *builder {
	return &builder{next: w.Start}
}

func (b *builder) add(k Key, start, end int) {
	if start < b.next {
		start = b.next
	}
	if end < start {
		return
	}
	b.phases = append(b.phases, Phase{Key: k, Start: start, End: end})
	b.next = end + 1
}

// Package compare aligns two analyzed videos on a common timeline and
// measures how their motions differ.
package compare

import (
	"fmt"
	"strings"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

// Landmark selects which event of the best interval anchors the two timelines.
type Landmark int

const (
	LandmarkStart Landmark = iota
	LandmarkPeak
	LandmarkEnd
)

func (l Landmark) String() string {
	switch l {
	case LandmarkPeak:
		return "peak"
	case LandmarkEnd:
		return "end"
	}
	return "start"
}

// ParseLandmark accepts start, peak or end. Impact and release are aliases for peak.
func ParseLandmark(s string) (Landmark, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "start", "swing_start", "pitch_start":
		return LandmarkStart, nil
	case "peak", "impact", "release":
		return LandmarkPeak, nil
	case "end", "swing_end", "pitch_end":
		return LandmarkEnd, nil
	}
	return LandmarkStart, fmt.Errorf("unknown sync landmark %q", s)
}

// Frame returns the landmark frame of iv.
func (l Landmark) Frame(iv motion.Interval) int {
	switch l {
	case LandmarkPeak:
		return iv.Peak
	case LandmarkEnd:
		return iv.End
	}
	return iv.Start
}

// Pair is one aligned frame from each video.
type Pair struct {
	A int `json:"frame_a"`
	B int `json:"frame_b"`
}

// Mapping is an ordered list of aligned frames. Both sides strictly increase.
type Mapping []Pair

// FramesA returns the A side of the mapping.
func (m Mapping) FramesA() []int {
	out := make([]int, len(m))
	for i, p := range m {
		out[i] = p.A
	}
	return out
}

// FramesB returns the B side of the mapping.
func (m Mapping) FramesB() []int {
	out := make([]int, len(m))
	for i, p := range m {
		out[i] = p.B
	}
	return out
}

// Track is what the synchronizer needs from one analyzed video.
type Track struct {
	Intervals   []motion.Interval
	TotalFrames int
}

// Sync is the result of aligning two tracks.
type Sync struct {
	Landmark Landmark `json:"landmark"`
	AnchorA  int      `json:"anchor_a"`
	AnchorB  int      `json:"anchor_b"`
	Offset   int      `json:"offset"`
	Fallback bool     `json:"fallback"`
	Mapping  Mapping  `json:"mapping"`
}

// Anchors returns the landmark frames of each side's best interval.
// ok is false when either side has no interval.
func Anchors(a, b []motion.Interval, lm Landmark) (anchorA, anchorB int, ok bool) {
	bestA, okA := motion.Best(a)
	bestB, okB := motion.Best(b)
	if !okA || !okB {
		return 0, 0, false
	}
	return lm.Frame(bestA), lm.Frame(bestB), true
}

// Align builds the lock-step mapping that puts syncA and syncB at the same
// index. Walking stops at either side's frame count.
func Align(totalA, totalB, syncA, syncB int) Mapping {
	startA, startB := 0, 0
	if syncA > syncB {
		startA = syncA - syncB
	} else {
		startB = syncB - syncA
	}

	var m Mapping
	for fa, fb := startA, startB; fa < totalA && fb < totalB; fa, fb = fa+1, fb+1 {
		m = append(m, Pair{A: fa, B: fb})
	}
	return m
}

// Synchronize anchors a and b at lm, shifts B's anchor by offset and aligns them.
// When either side has no interval both anchors fall back to frame 0, which
// with a zero offset is the identity mapping truncated at the shorter video.
func Synchronize(a, b Track, lm Landmark, offset int) Sync {
	s := Sync{Landmark: lm, Offset: offset}
	anchorA, anchorB, ok := Anchors(a.Intervals, b.Intervals, lm)
	if !ok {
		s.Fallback = true
		anchorA, anchorB = 0, 0
	}
	s.AnchorA = anchorA
	s.AnchorB = anchorB
	s.Mapping = Align(a.TotalFrames, b.TotalFrames, anchorA, anchorB+offset)
	return s
}

// Package detector provides the pose detection collaborator and the joint data model
// consumed by the analysis core.
package detector

import (
	"math"
	"sort"
)

// Pose landmark indices following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumJoints      = 33
)

// Visibility thresholds.
const (
	// VisibilityThreshold is the confidence a joint must exceed to take part in geometry.
	VisibilityThreshold = 0.5
	// SpeedVisibilityThreshold is the confidence both endpoints of a speed sample must reach.
	SpeedVisibilityThreshold = 0.3
)

// Point2D is a position in normalized image coordinates (y grows downward).
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Norm returns the Euclidean length of p.
func (p Point2D) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Landmark is a single joint observation.
// Z is reported by the detector but unused by the analysis.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// JointFrame holds the 33 pose landmarks detected in one video frame.
type JointFrame struct {
	Points [NumJoints]Landmark `json:"points"`
}

// Visible reports whether joint idx has confidence strictly above threshold.
func (f *JointFrame) Visible(idx int, threshold float64) bool {
	if f == nil || idx < 0 || idx >= NumJoints {
		return false
	}
	return f.Points[idx].Visibility > threshold
}

// AllVisible reports whether every listed joint is visible at the default threshold.
func (f *JointFrame) AllVisible(indices ...int) bool {
	for _, idx := range indices {
		if !f.Visible(idx, VisibilityThreshold) {
			return false
		}
	}
	return true
}

// Point returns the 2D position of joint idx.
func (f *JointFrame) Point(idx int) Point2D {
	lm := f.Points[idx]
	return Point2D{X: lm.X, Y: lm.Y}
}

// FrameHistory maps a frame index to the pose detected in that frame.
// A present key with a nil value records a failed detection; an absent key
// means the frame was never processed.
type FrameHistory map[int]*JointFrame

// Frames returns the processed frame indices in increasing order.
func (h FrameHistory) Frames() []int {
	frames := make([]int, 0, len(h))
	for f := range h {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	return frames
}

// Get returns the pose for frame f, or nil when the frame is missing or had no detection.
func (h FrameHistory) Get(f int) *JointFrame {
	return h[f]
}

// Detected returns the number of frames with a successful detection.
func (h FrameHistory) Detected() int {
	n := 0
	for _, jf := range h {
		if jf != nil {
			n++
		}
	}
	return n
}

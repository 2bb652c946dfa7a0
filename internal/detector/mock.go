package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It replays a scripted sequence of poses, one per Detect call.
type MockDetector struct {
	mu       sync.Mutex
	sequence []*JointFrame
	index    int
	err      error
	closed   bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetSequence sets the poses returned by successive Detect calls.
// A nil entry simulates a frame without detection.
func (m *MockDetector) SetSequence(poses []*JointFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = poses
	m.index = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next scripted pose, or nil once the sequence is exhausted.
func (m *MockDetector) Detect(frame *gocv.Mat) (*JointFrame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.index >= len(m.sequence) {
		return nil, nil
	}
	pose := m.sequence[m.index]
	m.index++
	return pose, nil
}

// Calls returns how many poses have been consumed.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// StandingPose returns a right-handed batter standing side-on to the camera,
// with every joint fully visible. Tests perturb it to build motion sequences.
func StandingPose() *JointFrame {
	jf := &JointFrame{}
	set := func(idx int, x, y float64) {
		jf.Points[idx] = Landmark{X: x, Y: y, Visibility: 0.95}
	}

	// Head
	for i := Nose; i <= MouthRight; i++ {
		set(i, 0.50, 0.20)
	}

	// Upper body
	set(LeftShoulder, 0.45, 0.30)
	set(RightShoulder, 0.55, 0.30)
	set(LeftElbow, 0.42, 0.40)
	set(RightElbow, 0.58, 0.40)
	set(LeftWrist, 0.44, 0.48)
	set(RightWrist, 0.56, 0.48)
	set(LeftPinky, 0.44, 0.50)
	set(RightPinky, 0.56, 0.50)
	set(LeftIndex, 0.44, 0.50)
	set(RightIndex, 0.56, 0.50)
	set(LeftThumb, 0.44, 0.50)
	set(RightThumb, 0.56, 0.50)

	// Lower body
	set(LeftHip, 0.46, 0.55)
	set(RightHip, 0.54, 0.55)
	set(LeftKnee, 0.44, 0.70)
	set(RightKnee, 0.56, 0.70)
	set(LeftAnkle, 0.43, 0.85)
	set(RightAnkle, 0.57, 0.85)
	set(LeftHeel, 0.42, 0.86)
	set(RightHeel, 0.58, 0.86)
	set(LeftFootIndex, 0.41, 0.87)
	set(RightFootIndex, 0.59, 0.87)

	return jf
}

package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockVideo plays back in-memory frames for testing
type MockVideo struct {
	frames  []*gocv.Mat
	fps     float64
	index   int
	mu      sync.Mutex
	running bool
}

func NewMockVideo(frames []*gocv.Mat, fps float64) *MockVideo {
	return &MockVideo{
		frames: frames,
		fps:    fps,
	}
}

func (v *MockVideo) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.running = true
	v.index = 0
	return nil
}

func (v *MockVideo) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.running = false
	return nil
}

func (v *MockVideo) ReadFrame() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running {
		return nil, ErrVideoNotOpen
	}
	if v.index >= len(v.frames) {
		return nil, ErrEndOfVideo
	}

	// Clone the frame so the original isn't modified
	frame := v.frames[v.index].Clone()
	v.index++

	return &frame, nil
}

func (v *MockVideo) Info() Info {
	v.mu.Lock()
	defer v.mu.Unlock()

	info := Info{FPS: v.fps, FrameCount: len(v.frames)}
	if len(v.frames) > 0 {
		info.Width = v.frames[0].Cols()
		info.Height = v.frames[0].Rows()
	}
	return info
}

func (v *MockVideo) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// Reset restarts playback from the beginning
func (v *MockVideo) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.index = 0
}

// Package capture reads frames from video files using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

var (
	// ErrVideoNotOpen is returned when reading from a video that is not open.
	ErrVideoNotOpen = errors.New("video is not open")
	// ErrEndOfVideo is returned once every frame has been read.
	ErrEndOfVideo = errors.New("end of video")
)

// Info describes a video stream.
type Info struct {
	FPS        float64 `json:"fps"`
	FrameCount int     `json:"frame_count"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Video defines the interface for sequential frame sources.
type Video interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	Info() Info
	IsOpen() bool
}

// videoFile reads frames from a file on disk using GoCV.
type videoFile struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	info    Info
}

// NewVideoFile creates a Video for the file at path. Nothing is read until Open.
func NewVideoFile(path string) Video {
	return &videoFile{path: path}
}

// Open opens the file and reads its stream properties.
func (v *videoFile) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.running {
		return nil
	}

	if _, err := os.Stat(v.path); err != nil {
		return fmt.Errorf("open video: %w", err)
	}

	capture, err := gocv.VideoCaptureFile(v.path)
	if err != nil {
		return fmt.Errorf("open video %s: %w", v.path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open video %s: unsupported format", v.path)
	}

	v.info = Info{
		FPS:        capture.Get(gocv.VideoCaptureFPS),
		FrameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
		Width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
	}
	v.capture = capture
	v.running = true

	return nil
}

// Close closes the file and releases resources.
func (v *videoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		v.running = false
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	v.running = false

	return err
}

// ReadFrame reads the next frame. It returns ErrEndOfVideo after the last one.
// The caller is responsible for closing the returned Mat.
func (v *videoFile) ReadFrame() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		return nil, ErrVideoNotOpen
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEndOfVideo
	}

	return &mat, nil
}

// Info returns the stream properties read by Open.
func (v *videoFile) Info() Info {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.info
}

// IsOpen returns true if the file is currently open.
func (v *videoFile) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.running
}

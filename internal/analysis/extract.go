package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/capture"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/logger"
)

// ProgressFunc is called after each processed frame. total is the frame count
// reported by the container and may be 0 or inexact.
type ProgressFunc func(done, total int)

// Extract reads every frame of v and runs det on it. Frames where nobody is
// detected are recorded as nil entries. The returned Info carries the number
// of frames actually read. Cancellation is checked between frames.
func Extract(ctx context.Context, v capture.Video, det detector.Detector, progress ProgressFunc) (detector.FrameHistory, capture.Info, error) {
	if err := v.Open(); err != nil {
		return nil, capture.Info{}, err
	}
	defer v.Close()

	info := v.Info()
	history := detector.FrameHistory{}

	f := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, info, err
		}

		mat, err := v.ReadFrame()
		if errors.Is(err, capture.ErrEndOfVideo) {
			break
		}
		if err != nil {
			return nil, info, fmt.Errorf("read frame %d: %w", f, err)
		}

		jf, err := det.Detect(mat)
		mat.Close()
		if err != nil {
			return nil, info, fmt.Errorf("detect frame %d: %w", f, err)
		}
		history[f] = jf

		f++
		if progress != nil {
			progress(f, info.FrameCount)
		}
	}

	if info.FrameCount != f {
		logger.Debug("container reported %d frames, read %d", info.FrameCount, f)
	}
	info.FrameCount = f
	logger.Info("extracted %d frames, pose detected in %d", f, history.Detected())
	return history, info, nil
}

package analysis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/capture"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/compare"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/logger"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/store"
)

// ErrNoStore is returned by operations that need the history cache when the
// analyzer was created without one.
var ErrNoStore = errors.New("no store configured")

// DetectorFactory creates a detector. Each extraction gets its own instance.
type DetectorFactory func(detector.Config) (detector.Detector, error)

// VideoOpener returns an unopened video for path.
type VideoOpener func(path string) capture.Video

// Config holds configuration options for the analyzer.
type Config struct {
	Store        *store.Store
	Detector     detector.Config
	NewDetector  DetectorFactory
	OpenVideo    VideoOpener
	Swing        motion.Config
	Pitch        motion.Config
	ImageScaling bool
}

// Analyzer ties video extraction, the history cache and the analysis
// pipeline together.
type Analyzer struct {
	config Config
}

// New creates an Analyzer. Missing factories and motion settings get defaults.
func New(config Config) *Analyzer {
	if config.NewDetector == nil {
		config.NewDetector = mediaPipeOrMock
	}
	if config.OpenVideo == nil {
		config.OpenVideo = capture.NewVideoFile
	}
	if config.Swing.MinFrames == 0 {
		config.Swing = motion.SwingConfig()
	}
	if config.Pitch.MinFrames == 0 {
		config.Pitch = motion.PitchConfig()
	}
	return &Analyzer{config: config}
}

// mediaPipeOrMock tries MediaPipe first and falls back to the mock detector,
// which reports no person on every frame.
func mediaPipeOrMock(cfg detector.Config) (detector.Detector, error) {
	mp, err := detector.NewMediaPipeDetector(cfg)
	if err == nil {
		logger.Info("using MediaPipe pose detection")
		return mp, nil
	}
	logger.Warn("MediaPipe not available (%v), using mock detector", err)
	return detector.NewMockDetector(), nil
}

// Store returns the history cache, or nil.
func (a *Analyzer) Store() *store.Store {
	return a.config.Store
}

// OpenVideo returns an unopened reader for the video at path.
func (a *Analyzer) OpenVideo(path string) capture.Video {
	return a.config.OpenVideo(path)
}

// Options builds analysis options for a video of kind with the given arm
// and stream properties.
func (a *Analyzer) Options(kind Kind, arm kinematics.Arm, info capture.Info) Options {
	opts := Options{
		Kind:        kind,
		Arm:         arm,
		FPS:         info.FPS,
		TotalFrames: info.FrameCount,
		Swing:       a.config.Swing,
		Pitch:       a.config.Pitch,
	}
	if a.config.ImageScaling && info.Width > 0 && info.Height > 0 {
		opts.Size = &kinematics.ImageSize{Width: info.Width, Height: info.Height}
	}
	return opts
}

// ExtractFile runs the detector over every frame of the video at path.
func (a *Analyzer) ExtractFile(ctx context.Context, path string, progress ProgressFunc) (detector.FrameHistory, capture.Info, error) {
	det, err := a.config.NewDetector(a.config.Detector)
	if err != nil {
		return nil, capture.Info{}, fmt.Errorf("create detector: %w", err)
	}
	defer func() {
		if err := det.Close(); err != nil {
			logger.Warn("error closing detector: %v", err)
		}
	}()

	history, info, err := Extract(ctx, a.config.OpenVideo(path), det, progress)
	if err != nil {
		return nil, info, fmt.Errorf("extract %s: %w", path, err)
	}
	return history, info, nil
}

// AnalyzeFile extracts and analyzes a video without touching the cache.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, kind Kind, arm kinematics.Arm, progress ProgressFunc) (*Result, error) {
	history, info, err := a.ExtractFile(ctx, path, progress)
	if err != nil {
		return nil, err
	}
	return Analyze(history, a.Options(kind, arm, info)), nil
}

// Register extracts the video at path and caches its history. An empty name
// defaults to the file's base name.
func (a *Analyzer) Register(ctx context.Context, path, name string, kind Kind, arm kinematics.Arm, progress ProgressFunc) (*store.Video, error) {
	if a.config.Store == nil {
		return nil, ErrNoStore
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	history, info, err := a.ExtractFile(ctx, path, progress)
	if err != nil {
		return nil, err
	}

	v := &store.Video{
		Name:       name,
		Path:       path,
		Kind:       store.Kind(kind),
		Arm:        arm.String(),
		FPS:        info.FPS,
		FrameCount: info.FrameCount,
		Width:      info.Width,
		Height:     info.Height,
	}
	if err := a.config.Store.Videos().Create(v); err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}
	if err := a.config.Store.Frames().Save(v.ID, history); err != nil {
		if derr := a.config.Store.Videos().Delete(v.ID); derr != nil {
			logger.Warn("failed to remove video %s after a failed save: %v", v.ID, derr)
		}
		return nil, fmt.Errorf("save history: %w", err)
	}
	v.Detected = history.Detected()

	logger.Info("registered %s as %s (%d frames)", path, v.ID, v.FrameCount)
	return v, nil
}

// Load returns a cached video and its history.
func (a *Analyzer) Load(id string) (*store.Video, detector.FrameHistory, error) {
	if a.config.Store == nil {
		return nil, nil, ErrNoStore
	}
	v, err := a.config.Store.Videos().GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	history, err := a.config.Store.Frames().History(id)
	if err != nil {
		return nil, nil, fmt.Errorf("load history of %s: %w", id, err)
	}
	return v, history, nil
}

// StoredOptions builds analysis options from a cached video's metadata.
func (a *Analyzer) StoredOptions(v *store.Video) (Options, error) {
	kind, err := ParseKind(string(v.Kind))
	if err != nil {
		return Options{}, err
	}
	arm, err := kinematics.ParseArm(v.Arm)
	if err != nil {
		return Options{}, err
	}
	info := capture.Info{FPS: v.FPS, FrameCount: v.FrameCount, Width: v.Width, Height: v.Height}
	return a.Options(kind, arm, info), nil
}

// AnalyzeStored analyzes a cached history.
func (a *Analyzer) AnalyzeStored(id string) (*Result, error) {
	v, history, err := a.Load(id)
	if err != nil {
		return nil, err
	}
	opts, err := a.StoredOptions(v)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", id, err)
	}
	return Analyze(history, opts), nil
}

// CompareStored analyzes two cached videos in parallel and compares them.
func (a *Analyzer) CompareStored(idA, idB string, lm compare.Landmark, offset int) (*Comparison, error) {
	results, err := parallel(func(i int) (*Result, error) {
		return a.AnalyzeStored([]string{idA, idB}[i])
	})
	if err != nil {
		return nil, err
	}
	return Compare(results[0], results[1], lm, offset), nil
}

// CompareFiles extracts and analyzes two videos in parallel, each with its own
// detector, then compares them.
func (a *Analyzer) CompareFiles(ctx context.Context, pathA, pathB string, kind Kind, arm kinematics.Arm, lm compare.Landmark, offset int, progressA, progressB ProgressFunc) (*Comparison, error) {
	paths := []string{pathA, pathB}
	progress := []ProgressFunc{progressA, progressB}
	results, err := parallel(func(i int) (*Result, error) {
		return a.AnalyzeFile(ctx, paths[i], kind, arm, progress[i])
	})
	if err != nil {
		return nil, err
	}
	return Compare(results[0], results[1], lm, offset), nil
}

// parallel runs fn for sides 0 and 1 concurrently and returns the first error.
func parallel(fn func(i int) (*Result, error)) ([2]*Result, error) {
	var (
		wg      sync.WaitGroup
		results [2]*Result
		errs    [2]error
	)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = fn(i)
		}()
	}
	wg.Wait()

	if err := errors.Join(errs[0], errs[1]); err != nil {
		return results, err
	}
	return results, nil
}

package analysis

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/capture"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/compare"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/evaluate"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/phase"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/store"
)

const testFPS = 30

// wristSteps is the per-frame x movement of the right wrist for frames 11-20.
// At 30 fps the speeds are 0.6 .. 1.8 .. 0.6 with a single peak at frame 15.
var wristSteps = map[int]float64{
	11: 0.02, 12: 0.03, 13: 0.04, 14: 0.05, 15: 0.06,
	16: 0.05, 17: 0.04, 18: 0.03, 19: 0.02, 20: 0.02,
}

// swingPoses returns 30 poses: still, a swing over frames 11-20 with the hips
// drifting toward the front foot, then still again.
func swingPoses() []*detector.JointFrame {
	poses := make([]*detector.JointFrame, 30)
	wristX := 0.56
	for f := range poses {
		jf := detector.StandingPose()
		wristX += wristSteps[f]
		jf.Points[detector.RightWrist].X = wristX

		shift := 0.005 * math.Min(math.Max(float64(f-10), 0), 10)
		jf.Points[detector.LeftHip].X += shift
		jf.Points[detector.RightHip].X += shift
		poses[f] = jf
	}
	return poses
}

func swingHistory() detector.FrameHistory {
	h := detector.FrameHistory{}
	for f, jf := range swingPoses() {
		h[f] = jf
	}
	return h
}

func fixedOptions(kind Kind) Options {
	opts := DefaultOptions(kind, testFPS)
	opts.Swing = motion.Config{Policy: motion.Fixed, Fixed: 0.5, MinFrames: 5}
	opts.Pitch = motion.Config{Policy: motion.Fixed, Fixed: 0.5, MinFrames: 4}
	return opts
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"batting", Batting, false},
		{" Pitching ", Pitching, false},
		{"fielding", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnalyze_Batting(t *testing.T) {
	r := Analyze(swingHistory(), fixedOptions(Batting))

	if r.ID == "" {
		t.Error("expected a result ID")
	}
	if r.TotalFrames != 30 || r.Detected != 30 {
		t.Errorf("TotalFrames/Detected = %d/%d, want 30/30", r.TotalFrames, r.Detected)
	}
	if len(r.Speed) != 29 {
		t.Errorf("len(Speed) = %d, want 29", len(r.Speed))
	}

	want := motion.Interval{Start: 11, End: 20, Peak: 15}
	if r.Best == nil {
		t.Fatal("expected a best interval")
	}
	if r.Best.Start != want.Start || r.Best.End != want.End || r.Best.Peak != want.Peak {
		t.Errorf("Best = %+v, want start/end/peak %d/%d/%d", *r.Best, want.Start, want.End, want.Peak)
	}

	if len(r.Phases) == 0 {
		t.Error("expected phases")
	}
	for i := 1; i < len(r.Phases); i++ {
		if r.Phases[i].Start <= r.Phases[i-1].End {
			t.Errorf("phases %d and %d overlap", i-1, i)
		}
	}
	if r.Contact == nil {
		t.Error("expected contact metrics")
	}
	if r.Release != nil || r.ArmSlot != nil {
		t.Error("batting result should not carry release data")
	}

	if r.Evaluation == nil {
		t.Fatal("expected an evaluation")
	}
	if len(r.Evaluation.Criteria) != len(evaluate.BattingCriteria) {
		t.Errorf("criteria = %d, want %d", len(r.Evaluation.Criteria), len(evaluate.BattingCriteria))
	}
	if len(r.FormChecks) != 7 {
		t.Errorf("form checks = %d, want 7", len(r.FormChecks))
	}
}

func TestAnalyze_WeightShiftReachesEvaluation(t *testing.T) {
	r := Analyze(swingHistory(), fixedOptions(Batting))
	if r.Evaluation == nil {
		t.Fatal("expected an evaluation")
	}

	if len(r.Weight) != 10 {
		t.Fatalf("weight samples = %d, want 10", len(r.Weight))
	}
	c, ok := r.Evaluation.Criterion(evaluate.WeightShift)
	if !ok {
		t.Fatal("weight shift criterion missing")
	}
	if c.Score != c.Max || c.Status != evaluate.Good {
		t.Errorf("weight shift = %d/%d %s, want full score", c.Score, c.Max, c.Status)
	}
}

func TestAnalyze_NoMotion(t *testing.T) {
	h := detector.FrameHistory{}
	for f := range 20 {
		h[f] = detector.StandingPose()
	}
	h[20] = nil

	r := Analyze(h, DefaultOptions(Batting, testFPS))
	if len(r.Intervals) != 0 || r.Best != nil {
		t.Errorf("expected no intervals, got %+v", r.Intervals)
	}
	if r.Evaluation != nil || r.Phases != nil {
		t.Error("expected no evaluation or phases without an interval")
	}
	if r.TotalFrames != 21 || r.Detected != 20 {
		t.Errorf("TotalFrames/Detected = %d/%d, want 21/20", r.TotalFrames, r.Detected)
	}
	if len(r.Angles) != 20 {
		t.Errorf("angle frames = %d, want 20", len(r.Angles))
	}
}

func TestAnalyze_EmptyHistory(t *testing.T) {
	r := Analyze(detector.FrameHistory{}, DefaultOptions(Pitching, 0))
	if r.Best != nil || r.Evaluation != nil || len(r.Speed) != 0 {
		t.Errorf("expected an empty result, got %+v", r)
	}
}

func TestAnalyze_Pitching(t *testing.T) {
	r := Analyze(swingHistory(), fixedOptions(Pitching))

	if r.Best == nil || r.Best.Peak != 15 {
		t.Fatalf("Best = %+v, want peak 15", r.Best)
	}
	if r.Contact != nil || r.Weight != nil {
		t.Error("pitching result should not carry batting data")
	}
	if r.Evaluation == nil {
		t.Fatal("expected an evaluation")
	}
	if len(r.Evaluation.Criteria) != 5 {
		t.Errorf("criteria = %d, want 5", len(r.Evaluation.Criteria))
	}
	if r.Evaluation.InjuryRisk == "" {
		t.Error("expected an injury risk level")
	}

	if len(r.Phases) == 0 {
		t.Fatal("expected phases")
	}
	pitching := make(map[phase.Key]bool)
	for _, k := range phase.PitchingKeys {
		pitching[k] = true
	}
	for _, p := range r.Phases {
		if !pitching[p.Key] {
			t.Errorf("unexpected phase %s in a pitching result", p.Key)
		}
	}
}

func TestStateAt(t *testing.T) {
	r := Analyze(swingHistory(), fixedOptions(Batting))

	s := r.StateAt(15)
	if !s.InMotion {
		t.Error("frame 15 should be in motion")
	}
	if s.Speed == nil || math.Abs(*s.Speed-1.8) > 1e-6 {
		t.Errorf("speed at 15 = %v, want 1.8", s.Speed)
	}
	if s.Phase == "" || s.PhaseName == "" || s.PhaseColor == "" {
		t.Errorf("expected phase metadata at 15, got %+v", s)
	}
	if len(s.Angles) == 0 {
		t.Error("expected angles at 15")
	}

	s = r.StateAt(0)
	if s.InMotion || s.Speed != nil {
		t.Errorf("frame 0 should be idle without speed, got %+v", s)
	}

	s = r.StateAt(500)
	if s.Phase != "" || len(s.Angles) != 0 {
		t.Errorf("frame 500 should be empty, got %+v", s)
	}
}

func TestCompare_Identical(t *testing.T) {
	a := Analyze(swingHistory(), fixedOptions(Batting))
	b := Analyze(swingHistory(), fixedOptions(Batting))

	c := Compare(a, b, compare.LandmarkPeak, 0)
	if c.Sync.AnchorA != 15 || c.Sync.AnchorB != 15 || c.Sync.Fallback {
		t.Errorf("Sync = %+v, want anchors 15/15", c.Sync)
	}
	if len(c.Sync.Mapping) != 30 {
		t.Errorf("mapping length = %d, want 30", len(c.Sync.Mapping))
	}
	if math.Abs(c.Similarity-1) > 1e-9 {
		t.Errorf("Similarity = %v, want 1", c.Similarity)
	}
	if c.Evaluation == nil || c.Evaluation.ScoreChange != 0 {
		t.Errorf("Evaluation = %+v, want zero score change", c.Evaluation)
	}
	for name, d := range c.Shape {
		if d != 0 {
			t.Errorf("shape distance %s = %v, want 0", name, d)
		}
	}

	diffs, ok := c.AnglesAt(15)
	if !ok || len(diffs) == 0 {
		t.Fatal("expected angle diffs at index 15")
	}
	for _, d := range diffs {
		if d.Status != compare.Same {
			t.Errorf("%s status = %s, want same", d.Name, d.Status)
		}
	}
	if _, ok := c.AnglesAt(30); ok {
		t.Error("index 30 should be outside the mapping")
	}
}

func TestCompare_Offset(t *testing.T) {
	a := Analyze(swingHistory(), fixedOptions(Batting))
	b := Analyze(swingHistory(), fixedOptions(Batting))

	c := Compare(a, b, compare.LandmarkStart, 2)
	if c.Sync.Offset != 2 {
		t.Errorf("Offset = %d, want 2", c.Sync.Offset)
	}
	first := c.Sync.Mapping[0]
	if first.B-first.A != 2 {
		t.Errorf("first pair = %+v, want B two frames ahead", first)
	}
}

// mockFactories returns a detector factory that replays poses and a video
// opener producing one blank frame per pose.
func mockFactories(t *testing.T, poses []*detector.JointFrame) (DetectorFactory, VideoOpener) {
	t.Helper()
	frames := make([]*gocv.Mat, len(poses))
	for i := range frames {
		m := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	t.Cleanup(func() {
		for _, m := range frames {
			m.Close()
		}
	})

	newDetector := func(detector.Config) (detector.Detector, error) {
		d := detector.NewMockDetector()
		d.SetSequence(poses)
		return d, nil
	}
	openVideo := func(string) capture.Video {
		return capture.NewMockVideo(frames, testFPS)
	}
	return newDetector, openVideo
}

func TestExtract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GoCV test in short mode")
	}

	poses := swingPoses()
	poses[3] = nil
	newDetector, openVideo := mockFactories(t, poses)
	det, _ := newDetector(detector.Config{})

	var calls, lastTotal int
	history, info, err := Extract(context.Background(), openVideo(""), det, func(done, total int) {
		calls++
		lastTotal = total
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(history) != 30 || history.Detected() != 29 {
		t.Errorf("history = %d frames / %d detected, want 30/29", len(history), history.Detected())
	}
	if _, ok := history[3]; !ok || history[3] != nil {
		t.Error("frame 3 should be recorded as a missing detection")
	}
	if info.FrameCount != 30 || info.Width != 64 || info.Height != 48 {
		t.Errorf("info = %+v", info)
	}
	if calls != 30 || lastTotal != 30 {
		t.Errorf("progress calls/total = %d/%d, want 30/30", calls, lastTotal)
	}
}

func TestExtract_Cancelled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GoCV test in short mode")
	}

	newDetector, openVideo := mockFactories(t, swingPoses())
	det, _ := newDetector(detector.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Extract(ctx, openVideo(""), det, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Extract error = %v, want context.Canceled", err)
	}
}

func TestExtract_DetectorError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GoCV test in short mode")
	}

	_, openVideo := mockFactories(t, swingPoses())
	det := detector.NewMockDetector()
	boom := errors.New("pose service died")
	det.SetError(boom)

	if _, _, err := Extract(context.Background(), openVideo(""), det, nil); !errors.Is(err, boom) {
		t.Errorf("Extract error = %v, want wrapped detector error", err)
	}
}

func TestAnalyzer_RegisterAndAnalyzeStored(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GoCV test in short mode")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	defer s.Close()

	newDetector, openVideo := mockFactories(t, swingPoses())
	a := New(Config{
		Store:       s,
		NewDetector: newDetector,
		OpenVideo:   openVideo,
		Swing:       motion.Config{Policy: motion.Fixed, Fixed: 0.5, MinFrames: 5},
	})

	v, err := a.Register(context.Background(), "/videos/swing.mp4", "", Batting, kinematics.RightArm, nil)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if v.Name != "swing" || v.FrameCount != 30 || v.Detected != 30 {
		t.Errorf("video = %+v", v)
	}

	r, err := a.AnalyzeStored(v.ID)
	if err != nil {
		t.Fatalf("AnalyzeStored failed: %v", err)
	}
	if r.Best == nil || r.Best.Peak != 15 {
		t.Errorf("Best = %+v, want peak 15", r.Best)
	}

	v2, err := a.Register(context.Background(), "/videos/other.mp4", "other", Batting, kinematics.RightArm, nil)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	c, err := a.CompareStored(v.ID, v2.ID, compare.LandmarkPeak, 0)
	if err != nil {
		t.Fatalf("CompareStored failed: %v", err)
	}
	if math.Abs(c.Similarity-1) > 1e-9 {
		t.Errorf("Similarity = %v, want 1", c.Similarity)
	}

	if _, err := a.AnalyzeStored("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("AnalyzeStored(missing) error = %v, want ErrNotFound", err)
	}
}

func TestAnalyzer_RegisterSaveFailureLeavesNoVideo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GoCV test in short mode")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	defer s.Close()

	// NaN coordinates cannot be encoded, so saving the history fails after
	// the video row was created.
	poses := swingPoses()
	poses[5].Points[detector.Nose].X = math.NaN()
	newDetector, openVideo := mockFactories(t, poses)
	a := New(Config{Store: s, NewDetector: newDetector, OpenVideo: openVideo})

	if _, err := a.Register(context.Background(), "/videos/swing.mp4", "", Batting, kinematics.RightArm, nil); err == nil {
		t.Fatal("Register succeeded, want a save error")
	}

	videos, err := s.Videos().List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(videos) != 0 {
		t.Errorf("videos = %+v, want none after a failed save", videos)
	}
}

func TestAnalyzer_CompareFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GoCV test in short mode")
	}

	newDetector, openVideo := mockFactories(t, swingPoses())
	a := New(Config{
		NewDetector: newDetector,
		OpenVideo:   openVideo,
		Swing:       motion.Config{Policy: motion.Fixed, Fixed: 0.5, MinFrames: 5},
	})

	c, err := a.CompareFiles(context.Background(), "a.mp4", "b.mp4", Batting, kinematics.RightArm, compare.LandmarkStart, 0, nil, nil)
	if err != nil {
		t.Fatalf("CompareFiles failed: %v", err)
	}
	if c.Sync.AnchorA != 11 || c.Sync.AnchorB != 11 {
		t.Errorf("anchors = %d/%d, want 11/11", c.Sync.AnchorA, c.Sync.AnchorB)
	}
}

func TestAnalyzer_NoStore(t *testing.T) {
	a := New(Config{})
	if _, err := a.AnalyzeStored("x"); !errors.Is(err, ErrNoStore) {
		t.Errorf("AnalyzeStored error = %v, want ErrNoStore", err)
	}
	if _, err := a.Register(context.Background(), "x.mp4", "", Batting, kinematics.RightArm, nil); !errors.Is(err, ErrNoStore) {
		t.Errorf("Register error = %v, want ErrNoStore", err)
	}
}

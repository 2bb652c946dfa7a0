package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestJointFrame_Visible(t *testing.T) {
	jf := &JointFrame{}
	jf.Points[LeftShoulder].Visibility = 0.5
	jf.Points[RightShoulder].Visibility = 0.51

	if jf.Visible(LeftShoulder, VisibilityThreshold) {
		t.Error("visibility equal to threshold should not count as visible")
	}
	if !jf.Visible(RightShoulder, VisibilityThreshold) {
		t.Error("visibility above threshold should count as visible")
	}
	if jf.Visible(-1, 0) || jf.Visible(NumJoints, 0) {
		t.Error("out of range index should never be visible")
	}

	var nilFrame *JointFrame
	if nilFrame.Visible(Nose, 0) {
		t.Error("nil frame should never be visible")
	}
	if nilFrame.AllVisible(Nose) {
		t.Error("nil frame AllVisible should be false")
	}
}

func TestJointFrame_AllVisible(t *testing.T) {
	jf := StandingPose()
	if !jf.AllVisible(LeftHip, RightHip, LeftAnkle) {
		t.Error("standing pose joints should all be visible")
	}

	jf.Points[RightAnkle].Visibility = 0.4
	if jf.AllVisible(LeftHip, RightAnkle) {
		t.Error("expected AllVisible false with one low-confidence joint")
	}
	if !jf.AllVisible() {
		t.Error("AllVisible with no indices should be true")
	}
}

func TestPoint2D(t *testing.T) {
	p := Point2D{X: 4, Y: 6}
	q := Point2D{X: 1, Y: 2}
	d := p.Sub(q)
	if d.X != 3 || d.Y != 4 {
		t.Errorf("Sub = %+v, want {3 4}", d)
	}
	if math.Abs(d.Norm()-5) > epsilon {
		t.Errorf("Norm = %f, want 5", d.Norm())
	}
}

func TestFrameHistory(t *testing.T) {
	h := FrameHistory{
		5: StandingPose(),
		0: StandingPose(),
		3: nil,
	}

	frames := h.Frames()
	want := []int{0, 3, 5}
	if len(frames) != len(want) {
		t.Fatalf("Frames() = %v, want %v", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("Frames()[%d] = %d, want %d", i, frames[i], want[i])
		}
	}

	if h.Get(3) != nil {
		t.Error("failed detection should return nil")
	}
	if h.Get(42) != nil {
		t.Error("unprocessed frame should return nil")
	}
	if _, ok := h[3]; !ok {
		t.Error("failed detection should still be a present key")
	}
	if got := h.Detected(); got != 2 {
		t.Errorf("Detected() = %d, want 2", got)
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("no person", func(t *testing.T) {
		jf, err := parseResponse([]byte(`{"landmarks": null}` + "\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if jf != nil {
			t.Error("expected nil frame when no person detected")
		}
	})

	t.Run("full pose", func(t *testing.T) {
		line := `{"landmarks": [`
		for i := 0; i < NumJoints; i++ {
			if i > 0 {
				line += ","
			}
			line += `[0.25, 0.75, -0.1, 0.9]`
		}
		line += "]}\n"

		jf, err := parseResponse([]byte(line))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if jf == nil {
			t.Fatal("expected a frame")
		}
		lm := jf.Points[RightWrist]
		if lm.X != 0.25 || lm.Y != 0.75 || lm.Z != -0.1 || lm.Visibility != 0.9 {
			t.Errorf("unexpected landmark %+v", lm)
		}
	})

	t.Run("wrong landmark count", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"landmarks": [[0,0,0,1]]}`))
		if err == nil {
			t.Error("expected error for truncated landmark list")
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"landmarks": null, "error": "model not loaded"}`))
		if err == nil {
			t.Error("expected error from service")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseResponse([]byte(`not json`))
		if err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("replays sequence", func(t *testing.T) {
		m := NewMockDetector()
		first := StandingPose()
		m.SetSequence([]*JointFrame{first, nil})

		got, err := m.Detect(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != first {
			t.Error("expected first scripted pose")
		}

		got, err = m.Detect(nil)
		if err != nil || got != nil {
			t.Errorf("expected scripted miss, got %v, %v", got, err)
		}

		got, err = m.Detect(nil)
		if err != nil || got != nil {
			t.Errorf("expected nil after exhaustion, got %v, %v", got, err)
		}
		if m.Calls() != 2 {
			t.Errorf("Calls() = %d, want 2", m.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		m := NewMockDetector()
		want := errors.New("boom")
		m.SetError(want)
		if _, err := m.Detect(nil); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	})

	t.Run("close", func(t *testing.T) {
		m := NewMockDetector()
		if err := m.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if !m.Closed() {
			t.Error("expected Closed() true")
		}
	})
}

func TestMediaPipeDetector_ImplementsInterface(t *testing.T) {
	var _ Detector = (*MediaPipeDetector)(nil)
	var _ Detector = (*MockDetector)(nil)
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	_, err := NewMediaPipeDetector(Config{ScriptPath: "/nonexistent/pose_service.py"})
	if err == nil {
		t.Error("expected error for missing script")
	}
}

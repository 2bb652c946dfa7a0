package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func newTestVideo(id string) *Video {
	return &Video{
		ID:         id,
		Name:       "swing " + id,
		Path:       "/videos/" + id + ".mp4",
		Kind:       KindBatting,
		FPS:        30,
		FrameCount: 120,
		Width:      1280,
		Height:     720,
	}
}

func TestVideoRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Videos()

	v := newTestVideo("video-1")
	if err := repo.Create(v); err != nil {
		t.Fatalf("failed to create video: %v", err)
	}

	if v.CreatedAt.IsZero() || v.UpdatedAt.IsZero() {
		t.Error("timestamps should be set after create")
	}
	if v.Arm != "right" {
		t.Errorf("Arm = %q, want default right", v.Arm)
	}

	got, err := repo.GetByID("video-1")
	if err != nil {
		t.Fatalf("failed to get video: %v", err)
	}
	if got.Name != v.Name || got.Path != v.Path || got.Kind != KindBatting {
		t.Errorf("got %+v, want %+v", got, v)
	}
	if got.FPS != 30 || got.FrameCount != 120 || got.Width != 1280 || got.Height != 720 {
		t.Errorf("stream properties = %+v", got)
	}
}

func TestVideoRepository_Create_AssignsID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Videos()

	a, b := newTestVideo(""), newTestVideo("")
	if err := repo.Create(a); err != nil {
		t.Fatalf("failed to create video: %v", err)
	}
	if err := repo.Create(b); err != nil {
		t.Fatalf("failed to create second video: %v", err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs = %q, %q, want distinct generated IDs", a.ID, b.ID)
	}
}

func TestVideoRepository_Create_InvalidKind(t *testing.T) {
	s := newTestStore(t)

	v := newTestVideo("video-1")
	v.Kind = "bowling"
	if err := s.Videos().Create(v); err == nil {
		t.Error("expected constraint error for unknown kind")
	}
}

func TestVideoRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Videos()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Create(newTestVideo(id)); err != nil {
			t.Fatalf("failed to create video %s: %v", id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	videos, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list videos: %v", err)
	}
	if len(videos) != 3 {
		t.Fatalf("got %d videos, want 3", len(videos))
	}
	if videos[0].ID != "c" {
		t.Errorf("first video = %s, want newest c", videos[0].ID)
	}
}

func TestVideoRepository_Update(t *testing.T) {
	s := newTestStore(t)
	repo := s.Videos()

	v := newTestVideo("video-1")
	if err := repo.Create(v); err != nil {
		t.Fatalf("failed to create video: %v", err)
	}

	v.Kind = KindPitching
	v.Arm = "left"
	if err := repo.Update(v); err != nil {
		t.Fatalf("failed to update video: %v", err)
	}

	got, err := repo.GetByID("video-1")
	if err != nil {
		t.Fatalf("failed to get video: %v", err)
	}
	if got.Kind != KindPitching || got.Arm != "left" {
		t.Errorf("got kind %s arm %s, want pitching left", got.Kind, got.Arm)
	}
}

func TestVideoRepository_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Videos()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"get", func() error { _, err := repo.GetByID("missing"); return err }},
		{"update", func() error { return repo.Update(newTestVideo("missing")) }},
		{"delete", func() error { return repo.Delete("missing") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestKind_Valid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindBatting, true},
		{KindPitching, true},
		{"", false},
		{"bowling", false},
	}
	for _, tt := range tests {
		if got := tt.kind.Valid(); got != tt.want {
			t.Errorf("Kind(%q).Valid() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

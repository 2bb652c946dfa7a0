package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Kind is the motion a video records.
type Kind string

const (
	// KindBatting is a batting video.
	KindBatting Kind = "batting"
	// KindPitching is a pitching video.
	KindPitching Kind = "pitching"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindBatting || k == KindPitching
}

// Video is a registered video file and the stream properties read from it.
// Detected is the number of frames with a cached pose.
type Video struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Kind       Kind      `json:"kind"`
	Arm        string    `json:"arm"`
	FPS        float64   `json:"fps"`
	FrameCount int       `json:"frame_count"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Detected   int       `json:"detected"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// VideoRepository provides CRUD operations for videos.
type VideoRepository struct {
	db *sql.DB
}

// Videos returns the video repository for this store.
func (s *Store) Videos() *VideoRepository {
	return &VideoRepository{db: s.db}
}

const videoColumns = `id, name, path, kind, arm, fps, frame_count, width, height, detected, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(row scanner) (*Video, error) {
	v := &Video{}
	var kind string
	err := row.Scan(&v.ID, &v.Name, &v.Path, &kind, &v.Arm, &v.FPS, &v.FrameCount,
		&v.Width, &v.Height, &v.Detected, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Kind = Kind(kind)
	return v, nil
}

// Create inserts a new video into the database. An empty ID is replaced by a
// new UUID.
func (r *VideoRepository) Create(v *Video) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	if v.Arm == "" {
		v.Arm = "right"
	}

	_, err := r.db.Exec(
		`INSERT INTO videos (`+videoColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Path, string(v.Kind), v.Arm, v.FPS, v.FrameCount,
		v.Width, v.Height, v.Detected, v.CreatedAt, v.UpdatedAt,
	)
	return err
}

// GetByID retrieves a video by its ID.
func (r *VideoRepository) GetByID(id string) (*Video, error) {
	v, err := scanVideo(r.db.QueryRow(`SELECT `+videoColumns+` FROM videos WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// List retrieves all videos, newest first.
func (r *VideoRepository) List() ([]*Video, error) {
	rows, err := r.db.Query(`SELECT ` + videoColumns + ` FROM videos ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return videos, nil
}

// Update updates an existing video in the database.
func (r *VideoRepository) Update(v *Video) error {
	v.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE videos SET name = ?, path = ?, kind = ?, arm = ?, fps = ?, frame_count = ?,
		 width = ?, height = ?, detected = ?, updated_at = ?
		 WHERE id = ?`,
		v.Name, v.Path, string(v.Kind), v.Arm, v.FPS, v.FrameCount,
		v.Width, v.Height, v.Detected, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video and its cached frames by ID.
func (r *VideoRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

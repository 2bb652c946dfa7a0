package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
)

// FrameRepository stores the pose history extracted from each video.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// Save replaces the cached history of a video in a single transaction.
// It also updates the detected count on the video.
func (r *FrameRepository) Save(videoID string, history detector.FrameHistory) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM videos WHERE id = ?`, videoID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM video_frames WHERE video_id = ?`, videoID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO video_frames (video_id, frame, data) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range history.Frames() {
		var data sql.NullString
		if jf := history.Get(f); jf != nil {
			b, err := json.Marshal(jf.Points)
			if err != nil {
				return fmt.Errorf("encode frame %d: %w", f, err)
			}
			data = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.Exec(videoID, f, data); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`UPDATE videos SET detected = ?, updated_at = ? WHERE id = ?`,
		history.Detected(), time.Now(), videoID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// History loads the cached history of a video. A video without cached frames
// yields an empty history.
func (r *FrameRepository) History(videoID string) (detector.FrameHistory, error) {
	rows, err := r.db.Query(
		`SELECT frame, data FROM video_frames WHERE video_id = ? ORDER BY frame`,
		videoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := detector.FrameHistory{}
	for rows.Next() {
		var f int
		var data sql.NullString
		if err := rows.Scan(&f, &data); err != nil {
			return nil, err
		}
		if !data.Valid {
			history[f] = nil
			continue
		}
		jf := &detector.JointFrame{}
		if err := json.Unmarshal([]byte(data.String), &jf.Points); err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", f, err)
		}
		history[f] = jf
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}

// Count returns the number of cached frames of a video.
func (r *FrameRepository) Count(videoID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM video_frames WHERE video_id = ?`, videoID).Scan(&n)
	return n, err
}

// DeleteByVideoID removes all cached frames for a given video.
func (r *FrameRepository) DeleteByVideoID(videoID string) error {
	_, err := r.db.Exec(`DELETE FROM video_frames WHERE video_id = ?`, videoID)
	return err
}

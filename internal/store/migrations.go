package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Videos table - one row per registered video file
		`CREATE TABLE IF NOT EXISTS videos (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('batting', 'pitching')),
			arm TEXT NOT NULL DEFAULT 'right' CHECK(arm IN ('right', 'left')),
			fps REAL NOT NULL DEFAULT 0,
			frame_count INTEGER NOT NULL DEFAULT 0,
			width INTEGER NOT NULL DEFAULT 0,
			height INTEGER NOT NULL DEFAULT 0,
			detected INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Video frames table - extracted pose per processed frame, NULL data when nothing was detected
		`CREATE TABLE IF NOT EXISTS video_frames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			video_id TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			data TEXT,
			UNIQUE(video_id, frame)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_video_frames_video_id ON video_frames(video_id)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

package store

// runMigrations creates the schema. Every statement is idempotent.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Discrete actions taken on behalf of a tracked hand. Cursor moves
		// are not logged.
		`CREATE TABLE IF NOT EXISTS action_events (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			hand TEXT NOT NULL CHECK(hand IN ('Left', 'Right')),
			kind TEXT NOT NULL,
			key TEXT NOT NULL DEFAULT '',
			combo TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL DEFAULT '',
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,

		// Application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_action_events_created_at ON action_events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_action_events_session_id ON action_events(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

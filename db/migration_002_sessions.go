package db

import "database/sql"

func init() {
	RegisterMigration(Migration{
		Version:     2,
		Description: "create sessions table for demo auth",
		Up: func(db *sql.DB) error {
			_, err := db.Exec(`
				CREATE TABLE IF NOT EXISTS sessions (
					id TEXT PRIMARY KEY,
					created_at INTEGER NOT NULL,
					expires_at INTEGER NOT NULL,
					last_used_at INTEGER NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
			`)
			return err
		},
	})
}

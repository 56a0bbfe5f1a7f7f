package db

import "database/sql"

func init() {
	RegisterMigration(Migration{
		Version:     1,
		Description: "create todos table",
		Up: func(db *sql.DB) error {
			_, err := db.Exec(`
				CREATE TABLE IF NOT EXISTS todos (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					completed INTEGER NOT NULL DEFAULT 0,
					created_at INTEGER NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos(created_at);
				CREATE INDEX IF NOT EXISTS idx_todos_completed ON todos(completed, created_at);
			`)
			return err
		},
	})
}

package migrations

import (
	"database/sql"

	"github.com/pairgen/pairgen/pkg/db"
	"github.com/pkg/errors"
)

// Migration20260612100000CreateRuns creates the runs table that stores one row
// per generation run together with the rendered suite.
func Migration20260612100000CreateRuns() db.Migration {
	return db.Migration{
		Version:     20260612100000,
		Description: "Create runs table",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS runs (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					model_path TEXT NOT NULL,
					model_hash TEXT NOT NULL,
					seed INTEGER NOT NULL,
					row_count INTEGER NOT NULL,
					pairs_total INTEGER NOT NULL,
					pairs_covered INTEGER NOT NULL,
					uncoverable INTEGER NOT NULL,
					duration_ms INTEGER NOT NULL,
					suite_json TEXT NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create runs table")
			}
			return nil
		},
	}
}

package migrations

import (
	"database/sql"

	"github.com/pairgen/pairgen/pkg/db"
	"github.com/pkg/errors"
)

// Migration20260803093000AddModelNameToRuns adds the model_name column so runs
// recorded from yaml or markdown models keep the declared model name.
func Migration20260803093000AddModelNameToRuns() db.Migration {
	return db.Migration{
		Version:     20260803093000,
		Description: "Add model_name column to runs",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec("ALTER TABLE runs ADD COLUMN model_name TEXT NOT NULL DEFAULT ''"); err != nil {
				return errors.Wrap(err, "failed to add model_name column")
			}
			return nil
		},
	}
}

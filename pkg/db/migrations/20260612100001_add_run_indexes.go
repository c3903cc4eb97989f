package migrations

import (
	"database/sql"

	"github.com/pairgen/pairgen/pkg/db"
	"github.com/pkg/errors"
)

// Migration20260612100001AddRunIndexes adds the indexes the history listing and
// pruning queries depend on.
func Migration20260612100001AddRunIndexes() db.Migration {
	return db.Migration{
		Version:     20260612100001,
		Description: "Add indexes for run listing and pruning",
		Up: func(tx *sql.Tx) error {
			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC)",
				"CREATE INDEX IF NOT EXISTS idx_runs_model_hash ON runs(model_hash)",
			}

			for _, idx := range indexes {
				if _, err := tx.Exec(idx); err != nil {
					return errors.Wrap(err, "failed to create index")
				}
			}
			return nil
		},
	}
}

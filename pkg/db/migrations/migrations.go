// Package migrations contains all database migrations for pairgen.
// Migrations use Rails-style timestamp versioning (YYYYMMDDHHmmss).
package migrations

import (
	"github.com/pairgen/pairgen/pkg/db"
)

// All returns all registered migrations in the correct order.
// New migrations should be added to this list.
func All() []db.Migration {
	return []db.Migration{
		Migration20260612100000CreateRuns(),
		Migration20260612100001AddRunIndexes(),
		Migration20260803093000AddModelNameToRuns(),
	}
}

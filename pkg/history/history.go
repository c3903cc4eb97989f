// Package history persists generation runs in a local SQLite database so
// suites can be listed, re-rendered, and compared after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/pairgen/pairgen/pkg/db"
	"github.com/pairgen/pairgen/pkg/db/migrations"
)

// DefaultListLimit caps List when the caller passes no limit.
const DefaultListLimit = 20

// Run is one recorded generation run together with its rendered suite.
type Run struct {
	ID           string    `db:"id" json:"id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	ModelPath    string    `db:"model_path" json:"model_path"`
	ModelName    string    `db:"model_name" json:"model_name,omitempty"`
	ModelHash    string    `db:"model_hash" json:"model_hash"`
	Seed         int64     `db:"seed" json:"seed"`
	RowCount     int       `db:"row_count" json:"row_count"`
	PairsTotal   int       `db:"pairs_total" json:"pairs_total"`
	PairsCovered int       `db:"pairs_covered" json:"pairs_covered"`
	Uncoverable  int       `db:"uncoverable" json:"uncoverable"`
	DurationMS   int64     `db:"duration_ms" json:"duration_ms"`
	SuiteJSON    string    `db:"suite_json" json:"-"`
}

// Coverage reports covered pairs over coverable pairs as a percentage.
func (r *Run) Coverage() float64 {
	if r.PairsTotal == 0 {
		return 100
	}
	return float64(r.PairsCovered) / float64(r.PairsTotal) * 100
}

// Store records and retrieves runs.
type Store struct {
	db *sqlx.DB
}

// Open opens the run store at path, creating the database and applying
// pending migrations as needed. An empty path selects the default location.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	conn, err := db.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	runner := db.NewMigrationRunner(conn)
	if err := runner.Run(ctx, migrations.All()); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to run history migrations")
	}

	return &Store{db: conn}, nil
}

// Record inserts run, filling in ID and CreatedAt when unset.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO runs (
			id, created_at, model_path, model_name, model_hash, seed,
			row_count, pairs_total, pairs_covered, uncoverable, duration_ms, suite_json
		) VALUES (
			:id, :created_at, :model_path, :model_name, :model_hash, :seed,
			:row_count, :pairs_total, :pairs_covered, :uncoverable, :duration_ms, :suite_json
		)
	`
	if _, err := s.db.NamedExecContext(ctx, query, run); err != nil {
		return errors.Wrap(err, "failed to record run")
	}
	return nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	query := `SELECT id, created_at, model_path, model_name, model_hash, seed,
		row_count, pairs_total, pairs_covered, uncoverable, duration_ms, suite_json
		FROM runs WHERE id = ?`
	err := s.db.GetContext(ctx, &run, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load run")
	}
	return &run, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var runs []Run
	query := `SELECT id, created_at, model_path, model_name, model_hash, seed,
		row_count, pairs_total, pairs_covered, uncoverable, duration_ms, suite_json
		FROM runs ORDER BY created_at DESC, id LIMIT ?`
	if err := s.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	return runs, nil
}

// Prune deletes all but the keep most recent runs and reports how many rows
// were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC, id LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prune runs")
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count pruned runs")
	}
	return removed, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// HashModel fingerprints raw model input so runs of the same model can be
// grouped even when the file moves.
func HashModel(src []byte) string {
	h := fnv.New64a()
	h.Write(src)
	return fmt.Sprintf("%016x", h.Sum64())
}

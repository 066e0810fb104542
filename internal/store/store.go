// Package store persists evaluation run history in a local SQLite
// database so extraction quality can be tracked across tagging rounds.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matzpen-project/matzpen/internal/model"
)

// Store wraps the run-history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL,
			valid_records INTEGER NOT NULL,
			invalid_records INTEGER NOT NULL,
			tp INTEGER NOT NULL,
			fp INTEGER NOT NULL,
			tn INTEGER NOT NULL,
			fn INTEGER NOT NULL,
			precision REAL NOT NULL,
			recall REAL NOT NULL,
			f1 REAL NOT NULL,
			accuracy REAL NOT NULL,
			specificity REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_segments (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			attribute TEXT NOT NULL,
			value TEXT NOT NULL,
			tp INTEGER NOT NULL,
			fp INTEGER NOT NULL,
			tn INTEGER NOT NULL,
			fn INTEGER NOT NULL,
			accuracy REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_segments_run_id ON run_segments(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveEvaluation appends one evaluation run with its segment
// breakdowns and returns the run id.
func (s *Store) SaveEvaluation(source string, ev model.Evaluation, segments []model.SegmentStats) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (created_at, source, valid_records, invalid_records,
			tp, fp, tn, fn, precision, recall, f1, accuracy, specificity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), source,
		ev.ValidRecords, ev.InvalidRecords,
		ev.Matrix.TP, ev.Matrix.FP, ev.Matrix.TN, ev.Matrix.FN,
		ev.Metrics.Precision, ev.Metrics.Recall, ev.Metrics.F1,
		ev.Metrics.Accuracy, ev.Metrics.Specificity,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, seg := range segments {
		if _, err := tx.Exec(
			`INSERT INTO run_segments (run_id, attribute, value, tp, fp, tn, fn, accuracy)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, seg.Attribute, seg.Value,
			seg.Matrix.TP, seg.Matrix.FP, seg.Matrix.TN, seg.Matrix.FN, seg.Accuracy,
		); err != nil {
			return 0, fmt.Errorf("insert segment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// RunSummary is one stored evaluation run.
type RunSummary struct {
	ID             int64
	CreatedAt      time.Time
	Source         string
	ValidRecords   int
	InvalidRecords int
	Matrix         model.ConfusionMatrix
	Metrics        model.Metrics
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, created_at, source, valid_records, invalid_records,
			tp, fp, tn, fn, precision, recall, f1, accuracy, specificity
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var created string
		if err := rows.Scan(&r.ID, &created, &r.Source, &r.ValidRecords, &r.InvalidRecords,
			&r.Matrix.TP, &r.Matrix.FP, &r.Matrix.TN, &r.Matrix.FN,
			&r.Metrics.Precision, &r.Metrics.Recall, &r.Metrics.F1,
			&r.Metrics.Accuracy, &r.Metrics.Specificity); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Segments returns the stored segment breakdown of one run.
func (s *Store) Segments(runID int64) ([]model.SegmentStats, error) {
	rows, err := s.db.Query(
		`SELECT attribute, value, tp, fp, tn, fn, accuracy
		 FROM run_segments WHERE run_id = ? ORDER BY (fp + fn) DESC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var out []model.SegmentStats
	for rows.Next() {
		var seg model.SegmentStats
		if err := rows.Scan(&seg.Attribute, &seg.Value,
			&seg.Matrix.TP, &seg.Matrix.FP, &seg.Matrix.TN, &seg.Matrix.FN,
			&seg.Accuracy); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}

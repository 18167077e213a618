package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned by Run for an unknown run id.
var ErrRunNotFound = errors.New("store: run not found")

// Run is one recorded planning request and its result. Paths holds the
// JSON encoding of the returned paths so the store stays independent of
// the planner's types.
type Run struct {
	ID        string          `json:"id"`
	Goal      []string        `json:"goal"`
	Knowledge []string        `json:"knowledge"`
	Paths     json.RawMessage `json:"paths"`
	CreatedAt time.Time       `json:"created_at"`
}

// RecordRun stores a planning run. Recording the same id again replaces it.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	goal, err := json.Marshal(r.Goal)
	if err != nil {
		return fmt.Errorf("store: encode goal: %w", err)
	}
	known, err := json.Marshal(r.Knowledge)
	if err != nil {
		return fmt.Errorf("store: encode knowledge: %w", err)
	}
	paths := r.Paths
	if len(paths) == 0 {
		paths = json.RawMessage("[]")
	}

	const q = `
		INSERT INTO plan_runs (run_id, goal, knowledge, paths)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			goal      = excluded.goal,
			knowledge = excluded.knowledge,
			paths     = excluded.paths`
	if _, err := s.db.ExecContext(ctx, q, r.ID, string(goal), string(known), string(paths)); err != nil {
		return fmt.Errorf("store: record run %q: %w", r.ID, err)
	}
	return nil
}

// Run returns the recorded run with the given id.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	runs, err := s.queryRuns(ctx,
		"SELECT run_id, goal, knowledge, paths, created_at FROM plan_runs WHERE run_id = ?", id)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("%w: %q", ErrRunNotFound, id)
	}
	return runs[0], nil
}

// Runs returns up to limit recorded runs, newest first. A limit <= 0
// returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryRuns(ctx,
		"SELECT run_id, goal, knowledge, paths, created_at FROM plan_runs ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	var runs []Run
	err := s.each(ctx, query, args, func(rows *sql.Rows) error {
		var (
			r                 Run
			goal, known, path string
			ts                string
		)
		if err := rows.Scan(&r.ID, &goal, &known, &path, &ts); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(goal), &r.Goal); err != nil {
			return fmt.Errorf("run %q goal: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(known), &r.Knowledge); err != nil {
			return fmt.Errorf("run %q knowledge: %w", r.ID, err)
		}
		r.Paths = json.RawMessage(path)
		createdAt, err := parseTimestamp(ts)
		if err != nil {
			return fmt.Errorf("run %q: %w", r.ID, err)
		}
		r.CreatedAt = createdAt
		runs = append(runs, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	return runs, nil
}

// timestampFormats lists the formats SQLite drivers may produce for
// CURRENT_TIMESTAMP. modernc.org/sqlite typically returns RFC 3339, while
// canonical SQLite returns the space-separated DateTime format.
var timestampFormats = []string{
	time.RFC3339,
	time.DateTime,
}

// parseTimestamp attempts to parse a SQLite timestamp string using known formats.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

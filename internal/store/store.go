// Package store persists catalogs and planning runs in a local SQLite
// database so a curriculum can be imported once and planned against many
// times.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/expr"
	"github.com/papapumpkin/syllabus/internal/skill"
)

// ErrEmpty is returned by Load when no catalog has been saved.
var ErrEmpty = errors.New("store: no catalog saved")

// schema contains the DDL executed on every open. Positions keep the
// declaration order of skills, units and their lists.
const schema = `
CREATE TABLE IF NOT EXISTS skills (
    id         TEXT PRIMARY KEY,
    repository TEXT NOT NULL DEFAULT '',
    position   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS skill_nested (
    skill_id TEXT NOT NULL,
    child_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (skill_id, position)
);

CREATE TABLE IF NOT EXISTS units (
    id         TEXT PRIMARY KEY,
    kind       TEXT NOT NULL,
    requires   TEXT NOT NULL,
    media_time INTEGER NOT NULL DEFAULT 0,
    word_count INTEGER NOT NULL DEFAULT 0,
    position   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS unit_teaches (
    unit_id  TEXT NOT NULL,
    skill_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (unit_id, position)
);

CREATE TABLE IF NOT EXISTS unit_suggested (
    unit_id  TEXT NOT NULL,
    skill_id TEXT NOT NULL,
    weight   REAL NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (unit_id, position)
);

CREATE TABLE IF NOT EXISTS unit_selectors (
    unit_id    TEXT NOT NULL,
    repository TEXT NOT NULL DEFAULT '',
    prefix     TEXT NOT NULL DEFAULT '',
    units      TEXT NOT NULL DEFAULT '[]',
    position   INTEGER NOT NULL,
    PRIMARY KEY (unit_id, position)
);

CREATE TABLE IF NOT EXISTS plan_runs (
    run_id     TEXT PRIMARY KEY,
    goal       TEXT NOT NULL,
    knowledge  TEXT NOT NULL,
    paths      TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// catalogTables are cleared, children first, before a catalog is saved.
var catalogTables = []string{
	"unit_selectors", "unit_suggested", "unit_teaches", "units", "skill_nested", "skills",
}

// Store is a catalog and run history backed by SQLite in WAL mode.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, enables WAL mode and a
// busy timeout, and creates the schema if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite has a single writer; one connection keeps PRAGMAs consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored catalog with c in a single transaction.
func (s *Store) Save(ctx context.Context, c *catalog.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx for catalog: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, table := range catalogTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("store: clear %s: %w", table, err)
		}
	}

	for i, sk := range c.Skills() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO skills (id, repository, position) VALUES (?, ?, ?)",
			sk.ID, sk.RepositoryID, i); err != nil {
			return fmt.Errorf("store: insert skill %q: %w", sk.ID, err)
		}
		for j, child := range sk.NestedSkillIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO skill_nested (skill_id, child_id, position) VALUES (?, ?, ?)",
				sk.ID, child, j); err != nil {
				return fmt.Errorf("store: insert nested skill %q/%q: %w", sk.ID, child, err)
			}
		}
	}

	for i, u := range c.Units() {
		if err := insertUnit(ctx, tx, u, i); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit catalog: %w", err)
	}
	return nil
}

// insertUnit writes one unit and its lists.
func insertUnit(ctx context.Context, tx *sql.Tx, u catalog.Unit, pos int) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO units (id, kind, requires, media_time, word_count, position) VALUES (?, ?, ?, ?, ?, ?)",
		u.ID, u.Kind.String(), expr.Format(u.Requirements()),
		int64(u.MediaTime/time.Second), u.WordCount, pos); err != nil {
		return fmt.Errorf("store: insert unit %q: %w", u.ID, err)
	}
	for j, id := range u.Teaches {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO unit_teaches (unit_id, skill_id, position) VALUES (?, ?, ?)",
			u.ID, id, j); err != nil {
			return fmt.Errorf("store: insert taught skill %q/%q: %w", u.ID, id, err)
		}
	}
	for j, sg := range u.Suggested {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO unit_suggested (unit_id, skill_id, weight, position) VALUES (?, ?, ?, ?)",
			u.ID, sg.SkillID, sg.Weight, j); err != nil {
			return fmt.Errorf("store: insert suggestion %q/%q: %w", u.ID, sg.SkillID, err)
		}
	}
	for j, sel := range u.Selectors {
		ids, err := json.Marshal(sel.UnitIDs)
		if err != nil {
			return fmt.Errorf("store: encode selector units for %q: %w", u.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO unit_selectors (unit_id, repository, prefix, units, position) VALUES (?, ?, ?, ?, ?)",
			u.ID, sel.RepositoryID, sel.Prefix, string(ids), j); err != nil {
			return fmt.Errorf("store: insert selector for %q: %w", u.ID, err)
		}
	}
	return nil
}

// Load rebuilds the stored catalog. It returns ErrEmpty when nothing has
// been saved.
func (s *Store) Load(ctx context.Context) (*catalog.Catalog, error) {
	skills, err := s.loadSkills(ctx)
	if err != nil {
		return nil, err
	}
	units, err := s.loadUnits(ctx)
	if err != nil {
		return nil, err
	}
	if len(skills) == 0 && len(units) == 0 {
		return nil, ErrEmpty
	}
	c, err := catalog.New(skills, units)
	if err != nil {
		return nil, fmt.Errorf("store: rebuild catalog: %w", err)
	}
	return c, nil
}

func (s *Store) loadSkills(ctx context.Context) ([]skill.Skill, error) {
	var skills []skill.Skill
	index := make(map[string]int)
	err := s.each(ctx, "SELECT id, repository FROM skills ORDER BY position", nil, func(rows *sql.Rows) error {
		var sk skill.Skill
		if err := rows.Scan(&sk.ID, &sk.RepositoryID); err != nil {
			return err
		}
		index[sk.ID] = len(skills)
		skills = append(skills, sk)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: load skills: %w", err)
	}

	err = s.each(ctx, "SELECT skill_id, child_id FROM skill_nested ORDER BY skill_id, position", nil, func(rows *sql.Rows) error {
		var parent, child string
		if err := rows.Scan(&parent, &child); err != nil {
			return err
		}
		if i, ok := index[parent]; ok {
			skills[i].NestedSkillIDs = append(skills[i].NestedSkillIDs, child)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: load nested skills: %w", err)
	}
	return skills, nil
}

func (s *Store) loadUnits(ctx context.Context) ([]catalog.Unit, error) {
	var units []catalog.Unit
	index := make(map[string]int)
	err := s.each(ctx, "SELECT id, kind, requires, media_time, word_count FROM units ORDER BY position", nil, func(rows *sql.Rows) error {
		var (
			u        catalog.Unit
			kind     string
			requires string
			media    int64
		)
		if err := rows.Scan(&u.ID, &kind, &requires, &media, &u.WordCount); err != nil {
			return err
		}
		var err error
		if u.Kind, err = catalog.ParseKind(kind); err != nil {
			return fmt.Errorf("unit %q: %w", u.ID, err)
		}
		if u.Requires, err = expr.Parse(requires); err != nil {
			return fmt.Errorf("unit %q: %w", u.ID, err)
		}
		u.MediaTime = time.Duration(media) * time.Second
		index[u.ID] = len(units)
		units = append(units, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: load units: %w", err)
	}

	err = s.each(ctx, "SELECT unit_id, skill_id FROM unit_teaches ORDER BY unit_id, position", nil, func(rows *sql.Rows) error {
		var unitID, skillID string
		if err := rows.Scan(&unitID, &skillID); err != nil {
			return err
		}
		if i, ok := index[unitID]; ok {
			units[i].Teaches = append(units[i].Teaches, skillID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: load taught skills: %w", err)
	}

	err = s.each(ctx, "SELECT unit_id, skill_id, weight FROM unit_suggested ORDER BY unit_id, position", nil, func(rows *sql.Rows) error {
		var unitID string
		var sg catalog.Suggestion
		if err := rows.Scan(&unitID, &sg.SkillID, &sg.Weight); err != nil {
			return err
		}
		if i, ok := index[unitID]; ok {
			units[i].Suggested = append(units[i].Suggested, sg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: load suggestions: %w", err)
	}

	err = s.each(ctx, "SELECT unit_id, repository, prefix, units FROM unit_selectors ORDER BY unit_id, position", nil, func(rows *sql.Rows) error {
		var unitID, ids string
		var sel catalog.Selector
		if err := rows.Scan(&unitID, &sel.RepositoryID, &sel.Prefix, &ids); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(ids), &sel.UnitIDs); err != nil {
			return fmt.Errorf("unit %q selector: %w", unitID, err)
		}
		if i, ok := index[unitID]; ok {
			units[i].Selectors = append(units[i].Selectors, sel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: load selectors: %w", err)
	}
	return units, nil
}

// each runs query and calls scan for every row.
func (s *Store) each(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

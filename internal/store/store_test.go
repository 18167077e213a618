package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/expr"
	"github.com/papapumpkin/syllabus/internal/skill"
)

// testStore creates a temporary SQLite store and registers cleanup.
func testStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.syllabus.db")
	s, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]skill.Skill{
			{ID: "web", RepositoryID: "w", NestedSkillIDs: []string{"html", "css"}},
			{ID: "html", RepositoryID: "w"},
			{ID: "css", RepositoryID: "w"},
			{ID: "js"},
		},
		[]catalog.Unit{
			{ID: "html-intro", Requires: expr.Empty{}, Teaches: []string{"html"}, MediaTime: 10 * time.Minute},
			{
				ID:        "css-intro",
				Requires:  expr.AllOf("html"),
				Teaches:   []string{"css"},
				Suggested: []catalog.Suggestion{{SkillID: "js", Weight: 0.5}},
				WordCount: 1200,
			},
			{
				ID: "js-intro",
				Requires: expr.NOf{Min: 1, Terms: []expr.Expr{
					expr.Var("html"),
					expr.Or{Terms: []expr.Expr{expr.Var("css"), expr.Var("web")}},
				}},
				Teaches: []string{"js"},
			},
			{
				ID:       "web-course",
				Kind:     catalog.KindComposite,
				Requires: expr.Empty{},
				Teaches:  []string{"web"},
				Selectors: []catalog.Selector{
					{RepositoryID: "w"},
					{Prefix: "css-", UnitIDs: []string{"css-intro"}},
				},
			},
		},
	)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("enables WAL", func(t *testing.T) {
		t.Parallel()
		s := testStore(t)
		var mode string
		if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("query journal_mode: %v", err)
		}
		if mode != "wal" {
			t.Errorf("journal_mode = %q, want %q", mode, "wal")
		}
	})

	t.Run("idempotent schema creation", func(t *testing.T) {
		t.Parallel()
		dbPath := filepath.Join(t.TempDir(), "twice.db")
		for i := 0; i < 2; i++ {
			s, err := Open(context.Background(), dbPath)
			if err != nil {
				t.Fatalf("open %d: %v", i, err)
			}
			s.Close()
		}
	})
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testStore(t)
	want := sampleCatalog(t)

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if diff := cmp.Diff(want.Skills(), got.Skills()); diff != "" {
		t.Errorf("skills mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Units(), got.Units()); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testStore(t)

	if err := s.Save(ctx, sampleCatalog(t)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	small := catalog.MustNew([]skill.Skill{{ID: "x"}}, []catalog.Unit{{ID: "ux", Requires: expr.Empty{}, Teaches: []string{"x"}}})
	if err := s.Save(ctx, small); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"ux"}, got.UnitIDs()); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
	if got.Hierarchy().Len() != 1 {
		t.Errorf("skills = %d, want 1", got.Hierarchy().Len())
	}
}

func TestLoadEmpty(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrEmpty) {
		t.Errorf("Load error = %v, want ErrEmpty", err)
	}
}

func TestRuns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testStore(t)

	first := Run{ID: "r1", Goal: []string{"css"}, Knowledge: []string{"html"}, Paths: json.RawMessage(`[{"cost":1}]`)}
	second := Run{ID: "r2", Goal: []string{"js"}}
	for _, r := range []Run{first, second} {
		if err := s.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun(%s): %v", r.ID, err)
		}
	}

	got, err := s.Run(ctx, "r1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(first.Goal, got.Goal); diff != "" {
		t.Errorf("goal mismatch (-want +got):\n%s", diff)
	}
	if string(got.Paths) != `[{"cost":1}]` {
		t.Errorf("paths = %s", got.Paths)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	runs, err := s.Runs(ctx, 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Runs = %d entries, want 2", len(runs))
	}
	if runs[0].ID != "r2" {
		t.Errorf("newest run = %q, want r2", runs[0].ID)
	}
	if string(runs[0].Paths) != "[]" {
		t.Errorf("empty paths stored as %s, want []", runs[0].Paths)
	}

	limited, err := s.Runs(ctx, 1)
	if err != nil {
		t.Fatalf("Runs(1): %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Runs(1) = %d entries, want 1", len(limited))
	}

	if _, err := s.Run(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Run(missing) error = %v, want ErrRunNotFound", err)
	}
}

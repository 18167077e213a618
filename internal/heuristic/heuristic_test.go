package heuristic

import (
	"math"
	"sync"
	"testing"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/expr"
	"github.com/papapumpkin/syllabus/internal/skill"
)

func chainCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]skill.Skill{
			{ID: "1"}, {ID: "2"}, {ID: "3"},
			{ID: "group", NestedSkillIDs: []string{"a", "b"}},
			{ID: "a"}, {ID: "b"},
		},
		[]catalog.Unit{
			{ID: "lu1", Teaches: []string{"1"}},
			{ID: "lu2", Requires: expr.AllOf("1"), Teaches: []string{"2"}, WordCount: 500},
			{ID: "lu3", Requires: expr.AllOf("2"), Teaches: []string{"3"}},
			{ID: "teach-a", Teaches: []string{"a"}},
			{ID: "needs-group", Requires: expr.AllOf("group"), Teaches: []string{"3"}},
		},
	)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func TestDistance(t *testing.T) {
	t.Parallel()
	m := Build(chainCatalog(t), nil)

	tests := []struct {
		unit, skill string
		want        float64
	}{
		{"lu1", "1", 1},
		{"lu1", "2", 2},
		{"lu1", "3", 3},
		{"lu2", "3", 2},
		{"lu3", "1", math.Inf(1)},
		// Nesting edges are free in both directions.
		{"teach-a", "group", 1},
		{"teach-a", "b", 1},
		{"teach-a", "3", 2},
		{"ghost", "1", math.Inf(1)},
	}
	for _, tt := range tests {
		if got := m.Distance(tt.unit, tt.skill); got != tt.want {
			t.Errorf("Distance(%s, %s) = %v, want %v", tt.unit, tt.skill, got, tt.want)
		}
	}
}

func TestDistances(t *testing.T) {
	t.Parallel()
	m := Build(chainCatalog(t), nil)

	if got := m.Distances("lu1", []string{"3", "2"}); got != 2 {
		t.Errorf("Distances(lu1, [3 2]) = %v, want 2", got)
	}
	if got := m.Distances("lu3", []string{"1", "a"}); !math.IsInf(got, 1) {
		t.Errorf("Distances(lu3, unreachable) = %v, want +Inf", got)
	}
	if got := m.Distances("lu3", nil); got != 0 {
		t.Errorf("Distances(lu3, nil) = %v, want 0", got)
	}
}

func TestBuildWithCost(t *testing.T) {
	t.Parallel()

	words := func(u catalog.Unit) float64 {
		if u.WordCount == 0 {
			return 1
		}
		return float64(u.WordCount) / 250
	}
	m := Build(chainCatalog(t), words)
	if got := m.Distance("lu1", "3"); got != 4 {
		t.Errorf("Distance(lu1, 3) = %v, want 4", got)
	}

	forbid := func(u catalog.Unit) float64 {
		if u.ID == "lu2" {
			return math.Inf(1)
		}
		return 1
	}
	m = Build(chainCatalog(t), forbid)
	if got := m.Distance("lu1", "3"); !math.IsInf(got, 1) {
		t.Errorf("Distance through forbidden unit = %v, want +Inf", got)
	}
}

func TestWithUnreachable(t *testing.T) {
	t.Parallel()
	m := Build(chainCatalog(t), nil, WithUnreachable(1))
	if got := m.Distance("lu3", "1"); got != 1 {
		t.Errorf("Distance(lu3, 1) = %v, want legacy fallback 1", got)
	}
	if got := m.Distances("lu3", []string{"1", "2"}); got != 1 {
		t.Errorf("Distances(lu3, [1 2]) = %v, want 1", got)
	}
}

func TestConcurrentRows(t *testing.T) {
	t.Parallel()
	m := Build(chainCatalog(t), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := m.Distance("lu1", "3"); got != 3 {
				t.Errorf("Distance(lu1, 3) = %v, want 3", got)
			}
		}()
	}
	wg.Wait()
}

func TestDistancesMatchesRows(t *testing.T) {
	t.Parallel()
	c := chainCatalog(t)
	m := Build(c, nil)

	goalSets := [][]string{{"3"}, {"2", "b"}, {"group"}, {"1", "a", "3"}}
	for _, u := range c.Units() {
		for _, goals := range goalSets {
			want := math.Inf(1)
			for _, g := range goals {
				want = math.Min(want, m.Distance(u.ID, g))
			}
			if got := m.Distances(u.ID, goals); got != want {
				t.Errorf("Distances(%s, %v) = %v, want %v", u.ID, goals, got, want)
			}
		}
	}
}

package planner

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/expr"
)

func TestCostFunctions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   CostFunc
		unit catalog.Unit
		want float64
	}{
		{"count", CountCost, catalog.Unit{MediaTime: time.Hour}, 1},
		{"media time", MediaTimeCost, catalog.Unit{MediaTime: 90 * time.Second}, 1.5},
		{"media time fallback", MediaTimeCost, catalog.Unit{}, 1},
		{"word count", WordCountCost, catalog.Unit{WordCount: 1000}, 4},
		{"word count fallback", WordCountCost, catalog.Unit{WordCount: -3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.fn(tt.unit); got != tt.want {
				t.Errorf("cost = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestForbid(t *testing.T) {
	t.Parallel()
	isGerman := func(u catalog.Unit) bool { return u.ID == "de" }
	fn := Forbid(isGerman, WordCountCost)

	if got := fn(catalog.Unit{ID: "de", WordCount: 500}); !math.IsInf(got, 1) {
		t.Errorf("forbidden unit cost = %v, want +Inf", got)
	}
	if got := fn(catalog.Unit{ID: "en", WordCount: 500}); got != 2 {
		t.Errorf("allowed unit cost = %v, want 2", got)
	}
	if got := Forbid(isGerman, nil)(catalog.Unit{ID: "en"}); got != 1 {
		t.Errorf("nil base cost = %v, want CountCost", got)
	}
}

func TestCostByName(t *testing.T) {
	t.Parallel()
	u := catalog.Unit{WordCount: 500, MediaTime: 3 * time.Minute}

	for name, want := range map[string]float64{"": 1, "count": 1, "media_time": 3, "Word_Count": 2} {
		fn, err := CostByName(name)
		if err != nil {
			t.Errorf("CostByName(%q): %v", name, err)
			continue
		}
		if got := fn(u); got != want {
			t.Errorf("CostByName(%q) cost = %v, want %v", name, got, want)
		}
	}
	if _, err := CostByName("vibes"); !errors.Is(err, ErrUnknownCost) {
		t.Errorf("CostByName(vibes) error = %v, want ErrUnknownCost", err)
	}
}

func TestPenaltiesValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pen     Penalties
		wantErr bool
	}{
		{"defaults", DefaultPenalties(), false},
		{"typical", Penalties{ContextSwitch: 1.5, SuggestionViolation: 0.25, CompositeReimbursement: 0.8}, false},
		{"context switch below 1", Penalties{ContextSwitch: 0.9, CompositeReimbursement: 1}, true},
		{"context switch NaN", Penalties{ContextSwitch: math.NaN(), CompositeReimbursement: 1}, true},
		{"negative suggestion", Penalties{ContextSwitch: 1, SuggestionViolation: -0.1, CompositeReimbursement: 1}, true},
		{"zero reimbursement", Penalties{ContextSwitch: 1}, true},
		{"reimbursement above 1", Penalties{ContextSwitch: 1, CompositeReimbursement: 1.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.pen.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPenalty) {
				t.Errorf("Validate() error = %v, want ErrInvalidPenalty", err)
			}
		})
	}
}

func pathSummary(paths []Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

func pathCosts(paths []Path) []float64 {
	out := make([]float64, len(paths))
	for i, p := range paths {
		out[i] = p.Cost
	}
	return out
}

func TestContextSwitchPenalty(t *testing.T) {
	t.Parallel()
	c := buildCatalog(t, flatSkills("a", "b", "x"), []unitSpec{
		{"la", nil, []string{"a"}},
		{"lb", nil, []string{"b"}},
		{"ux", []string{"a"}, []string{"x"}},
	})
	pen := DefaultPenalties()
	pen.ContextSwitch = 2
	p := newPlanner(t, c, WithPenalties(pen), WithAlternatives(3))

	paths := plan(t, p, Request{Goal: []string{"x", "b"}})
	// ux straight after lb switches topic and pays double.
	want := []string{"la -> ux -> lb", "lb -> la -> ux", "la -> lb -> ux"}
	if diff := cmp.Diff(want, pathSummary(paths)); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{3, 3, 4}, pathCosts(paths)); diff != "" {
		t.Errorf("costs mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggestionViolationPenalty(t *testing.T) {
	t.Parallel()
	c := buildCatalog(t, flatSkills("a", "b"),
		[]unitSpec{{"la", nil, []string{"a"}}},
		catalog.Unit{ID: "lb", Requires: expr.Empty{}, Teaches: []string{"b"}, Suggested: []catalog.Suggestion{{SkillID: "a", Weight: 1}}},
	)
	pen := DefaultPenalties()
	pen.SuggestionViolation = 0.5
	p := newPlanner(t, c, WithPenalties(pen), WithAlternatives(2))

	paths := plan(t, p, Request{Goal: []string{"a", "b"}})
	if diff := cmp.Diff([]string{"la -> lb", "lb -> la"}, pathSummary(paths)); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2, 2.5}, pathCosts(paths)); diff != "" {
		t.Errorf("costs mismatch (-want +got):\n%s", diff)
	}
}

func TestPathRounding(t *testing.T) {
	t.Parallel()
	c := chain(t)
	third := func(catalog.Unit) float64 { return 1.0 / 3 }
	paths := plan(t, newPlanner(t, c, WithCost(third)), Request{Goal: []string{"3"}})
	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(paths))
	}
	if paths[0].Cost != 1 {
		t.Errorf("cost = %v, want 1", paths[0].Cost)
	}
	for _, st := range paths[0].Steps {
		if st.Cost != 0.33 {
			t.Errorf("step %s cost = %v, want 0.33", st.Unit, st.Cost)
		}
	}
}

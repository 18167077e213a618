package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/syllabus/internal/skill"
)

// knownSet is a plain Known for tests that do not need closure.
type knownSet map[string]bool

func (k knownSet) Has(id string) bool { return k[id] }

func set(ids ...string) knownSet {
	k := make(knownSet, len(ids))
	for _, id := range ids {
		k[id] = true
	}
	return k
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	a, b, c := Var("a"), Var("b"), Var("c")

	tests := []struct {
		name  string
		expr  Expr
		known knownSet
		want  bool
	}{
		{"empty on nothing", Empty{}, set(), true},
		{"variable known", a, set("a"), true},
		{"variable unknown", a, set("b"), false},
		{"and all", And{Terms: []Expr{a, b}}, set("a", "b"), true},
		{"and partial", And{Terms: []Expr{a, b}}, set("a"), false},
		{"and no terms", And{}, set(), true},
		{"or one", Or{Terms: []Expr{a, b}}, set("b"), true},
		{"or none", Or{Terms: []Expr{a, b}}, set("c"), false},
		{"or no terms", Or{}, set("a"), false},
		{"nof reached", NOf{Min: 2, Terms: []Expr{a, b, c}}, set("a", "c"), true},
		{"nof short", NOf{Min: 2, Terms: []Expr{a, b, c}}, set("c"), false},
		{"nof zero", NOf{Min: 0, Terms: []Expr{a}}, set(), true},
		{"nested", And{Terms: []Expr{Or{Terms: []Expr{a, b}}, NOf{Min: 1, Terms: []Expr{c, Empty{}}}}}, set("b"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.expr.Evaluate(tt.known, nil, nil); got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", Format(tt.expr), got, tt.want)
			}
		})
	}
}

func TestEvaluateMatchesTermSemantics(t *testing.T) {
	t.Parallel()

	terms := []Expr{Var("a"), Var("b"), Or{Terms: []Expr{Var("c"), Var("d")}}}
	universe := []string{"a", "b", "c", "d"}

	// Every subset of the universe.
	for mask := 0; mask < 1<<len(universe); mask++ {
		known := set()
		for i, id := range universe {
			if mask&(1<<i) != 0 {
				known[id] = true
			}
		}
		held := 0
		for _, term := range terms {
			if term.Evaluate(known, nil, nil) {
				held++
			}
		}
		if got, want := (And{Terms: terms}).Evaluate(known, nil, nil), held == len(terms); got != want {
			t.Errorf("And on %v = %v, want %v", known, got, want)
		}
		if got, want := (Or{Terms: terms}).Evaluate(known, nil, nil), held > 0; got != want {
			t.Errorf("Or on %v = %v, want %v", known, got, want)
		}
		for m := 0; m <= len(terms)+1; m++ {
			if got, want := (NOf{Min: m, Terms: terms}).Evaluate(known, nil, nil), held >= m; got != want {
				t.Errorf("NOf(%d) on %v = %v, want %v", m, known, got, want)
			}
		}
	}
}

func TestEvaluateWithout(t *testing.T) {
	t.Parallel()

	h := skill.NewHierarchy([]skill.Skill{
		{ID: "css", NestedSkillIDs: []string{"selectors", "layout"}},
		{ID: "selectors"},
		{ID: "layout"},
		{ID: "go"},
	})

	tests := []struct {
		name    string
		expr    Expr
		known   knownSet
		without []Expr
		want    bool
	}{
		{
			name:  "no exclusion uses plain membership",
			expr:  Var("css"),
			known: set("css"),
			want:  true,
		},
		{
			name:    "group narrows to uncovered child",
			expr:    Var("css"),
			known:   set("layout"),
			without: []Expr{Var("selectors")},
			want:    true,
		},
		{
			name:    "uncovered child unknown",
			expr:    Var("css"),
			known:   set("selectors"),
			without: []Expr{Var("selectors")},
			want:    false,
		},
		{
			name:    "every child covered elsewhere",
			expr:    Var("css"),
			known:   set("selectors", "layout", "css"),
			without: []Expr{Or{Terms: []Expr{Var("selectors"), Var("layout")}}},
			want:    false,
		},
		{
			name:    "leaf falls back to itself",
			expr:    Var("go"),
			known:   set("go"),
			without: []Expr{Var("selectors")},
			want:    true,
		},
		{
			name:    "leaf covered by exclusion",
			expr:    Var("go"),
			known:   set("go"),
			without: []Expr{Var("go")},
			want:    false,
		},
		{
			name:    "exclusion threads through and",
			expr:    And{Terms: []Expr{Var("css"), Var("go")}},
			known:   set("layout", "go"),
			without: []Expr{Var("selectors")},
			want:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.expr.Evaluate(tt.known, h, tt.without); got != tt.want {
				t.Errorf("Evaluate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateIsRepeatable(t *testing.T) {
	t.Parallel()
	e := NOf{Min: 1, Terms: []Expr{Var("a"), And{Terms: []Expr{Var("b"), Var("c")}}}}
	known := set("b", "c")
	first := e.Evaluate(known, nil, nil)
	for i := 0; i < 5; i++ {
		if e.Evaluate(known, nil, nil) != first {
			t.Fatal("repeated evaluation changed result")
		}
	}
}

func TestSkills(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr Expr
		want []string
	}{
		{"empty", Empty{}, nil},
		{"variable", Var("a"), []string{"a"}},
		{"order preserved", And{Terms: []Expr{Var("c"), Var("a"), Var("b")}}, []string{"c", "a", "b"}},
		{"duplicates dropped", Or{Terms: []Expr{Var("a"), Var("b"), Var("a")}}, []string{"a", "b"}},
		{
			"nested flattened",
			NOf{Min: 1, Terms: []Expr{And{Terms: []Expr{Var("x"), Empty{}}}, Or{Terms: []Expr{Var("y"), Var("x")}}}},
			[]string{"x", "y"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, tt.expr.Skills()); diff != "" {
				t.Errorf("Skills() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAllOf(t *testing.T) {
	t.Parallel()
	if _, ok := AllOf().(Empty); !ok {
		t.Errorf("AllOf() = %T, want Empty", AllOf())
	}
	got := AllOf("a", "b")
	if diff := cmp.Diff(Expr(And{Terms: []Expr{Var("a"), Var("b")}}), got); diff != "" {
		t.Errorf("AllOf mismatch (-want +got):\n%s", diff)
	}
}

// Package expr implements precondition expressions: boolean formulas over
// skill membership that decide whether a learning unit may be taken.
package expr

import "github.com/papapumpkin/syllabus/internal/skill"

// Operator names an expression variant. Operator names are part of the
// serialized form and must not change.
type Operator string

// Expression variants.
const (
	OpEmpty    Operator = "empty"
	OpVariable Operator = "variable"
	OpAnd      Operator = "and"
	OpOr       Operator = "or"
	OpNOf      Operator = "nof"
)

// Known is the learned-skill set an expression is evaluated against.
// skill.State satisfies it.
type Known interface {
	Has(id string) bool
}

// Expr is a precondition formula. Evaluation is read-only and depends only
// on its arguments.
type Expr interface {
	// Evaluate reports whether the formula holds for known. When without is
	// non-empty, each variable is narrowed to the hierarchy children (or the
	// skill itself) that no formula in without is satisfied by on its own.
	Evaluate(known Known, h *skill.Hierarchy, without []Expr) bool
	// Skills returns every variable skill id in the formula, in first-seen
	// order and without duplicates.
	Skills() []string
	// Operator returns the variant name.
	Operator() Operator
}

// Empty is the formula with no requirements. It always holds.
type Empty struct{}

// Variable holds when its skill is known.
type Variable struct {
	SkillID string
}

// And holds when every term holds.
type And struct {
	Terms []Expr
}

// Or holds when at least one term holds.
type Or struct {
	Terms []Expr
}

// NOf holds when at least Min terms hold.
type NOf struct {
	Min   int
	Terms []Expr
}

// Var is shorthand for a Variable.
func Var(id string) Variable {
	return Variable{SkillID: id}
}

// AllOf builds the conjunction of one variable per skill id. An empty list
// yields Empty; this is how flat required-skill lists are represented.
func AllOf(ids ...string) Expr {
	if len(ids) == 0 {
		return Empty{}
	}
	terms := make([]Expr, len(ids))
	for i, id := range ids {
		terms[i] = Var(id)
	}
	return And{Terms: terms}
}

// Evaluate always returns true.
func (Empty) Evaluate(Known, *skill.Hierarchy, []Expr) bool { return true }

// Skills returns nil.
func (Empty) Skills() []string { return nil }

// Operator returns OpEmpty.
func (Empty) Operator() Operator { return OpEmpty }

// Evaluate reports whether the skill is known. With a without list, the
// skill is expanded to its children (or itself when it has none), children
// satisfying any without formula on their own are dropped, and the variable
// holds iff something remains and all of it is known.
func (v Variable) Evaluate(known Known, h *skill.Hierarchy, without []Expr) bool {
	if len(without) == 0 {
		return known.Has(v.SkillID)
	}

	candidates := []string{v.SkillID}
	if h != nil {
		if children := h.Children(v.SkillID); len(children) > 0 {
			candidates = children
		}
	}

	remaining := 0
	for _, c := range candidates {
		if coveredBy(c, h, without) {
			continue
		}
		remaining++
		if !known.Has(c) {
			return false
		}
	}
	return remaining > 0
}

// Skills returns the variable's skill id.
func (v Variable) Skills() []string { return []string{v.SkillID} }

// Operator returns OpVariable.
func (Variable) Operator() Operator { return OpVariable }

// Evaluate reports whether all terms hold.
func (a And) Evaluate(known Known, h *skill.Hierarchy, without []Expr) bool {
	for _, t := range a.Terms {
		if !t.Evaluate(known, h, without) {
			return false
		}
	}
	return true
}

// Skills returns the variable skills of all terms.
func (a And) Skills() []string { return collect(a.Terms) }

// Operator returns OpAnd.
func (And) Operator() Operator { return OpAnd }

// Evaluate reports whether any term holds.
func (o Or) Evaluate(known Known, h *skill.Hierarchy, without []Expr) bool {
	for _, t := range o.Terms {
		if t.Evaluate(known, h, without) {
			return true
		}
	}
	return false
}

// Skills returns the variable skills of all terms.
func (o Or) Skills() []string { return collect(o.Terms) }

// Operator returns OpOr.
func (Or) Operator() Operator { return OpOr }

// Evaluate reports whether at least Min terms hold.
func (n NOf) Evaluate(known Known, h *skill.Hierarchy, without []Expr) bool {
	if n.Min <= 0 {
		return true
	}
	held := 0
	for _, t := range n.Terms {
		if t.Evaluate(known, h, without) {
			held++
			if held >= n.Min {
				return true
			}
		}
	}
	return false
}

// Skills returns the variable skills of all terms.
func (n NOf) Skills() []string { return collect(n.Terms) }

// Operator returns OpNOf.
func (NOf) Operator() Operator { return OpNOf }

// singleton is a Known holding exactly one skill.
type singleton string

func (s singleton) Has(id string) bool { return string(s) == id }

// coveredBy reports whether knowing id alone satisfies any formula in without.
func coveredBy(id string, h *skill.Hierarchy, without []Expr) bool {
	for _, w := range without {
		if w.Evaluate(singleton(id), h, nil) {
			return true
		}
	}
	return false
}

func collect(terms []Expr) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range terms {
		for _, id := range t.Skills() {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/papapumpkin/syllabus/internal/expr"
	"github.com/papapumpkin/syllabus/internal/skill"
)

// Kind distinguishes plain learning units from composite units that are
// resolved by planning a sub-curriculum. It is fixed when the unit is built.
type Kind int

const (
	KindPlain     Kind = iota // applied directly
	KindComposite             // resolved by recursive planning
)

// String returns the catalog spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindComposite:
		return "composite"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses a catalog kind name. The empty string means plain.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain":
		return KindPlain, nil
	case "composite":
		return KindComposite, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Suggestion is a soft prerequisite: the unit is better taken after the
// skill is known, but the skill is not required.
type Suggestion struct {
	SkillID string
	Weight  float64
}

// Selector narrows which units a composite may use internally. All
// non-empty criteria of one selector must match.
type Selector struct {
	// RepositoryID matches units whose taught skills all belong to the repository.
	RepositoryID string
	// Prefix matches units whose id starts with it.
	Prefix string
	// UnitIDs matches the listed units.
	UnitIDs []string
}

// Matches reports whether u satisfies every criterion of the selector.
func (s Selector) Matches(u Unit, h *skill.Hierarchy) bool {
	if s.Prefix != "" && !strings.HasPrefix(u.ID, s.Prefix) {
		return false
	}
	if len(s.UnitIDs) > 0 && !contains(s.UnitIDs, u.ID) {
		return false
	}
	if s.RepositoryID != "" {
		if len(u.Teaches) == 0 {
			return false
		}
		for _, id := range u.Teaches {
			sk, ok := h.Skill(id)
			if !ok || sk.RepositoryID != s.RepositoryID {
				return false
			}
		}
	}
	return true
}

// Unit is a learning unit: it requires some skills and teaches others.
type Unit struct {
	ID        string
	Kind      Kind
	Requires  expr.Expr
	Teaches   []string
	Suggested []Suggestion
	MediaTime time.Duration
	WordCount int
	// Selectors restrict the units a composite may be resolved with. Any
	// matching selector admits a unit; no selectors admit every unit.
	Selectors []Selector
}

// IsComposite reports whether the unit is resolved by recursive planning.
func (u Unit) IsComposite() bool {
	return u.Kind == KindComposite
}

// Requirements returns the unit's precondition, Empty when none is set.
func (u Unit) Requirements() expr.Expr {
	if u.Requires == nil {
		return expr.Empty{}
	}
	return u.Requires
}

// RequiredSkills returns every skill referenced by the unit's precondition.
func (u Unit) RequiredSkills() []string {
	return u.Requirements().Skills()
}

// SuggestedSkills returns the ids of the unit's soft prerequisites.
func (u Unit) SuggestedSkills() []string {
	ids := make([]string, len(u.Suggested))
	for i, s := range u.Suggested {
		ids[i] = s.SkillID
	}
	return ids
}

// Admits reports whether candidate may be used when resolving u.
func (u Unit) Admits(candidate Unit, h *skill.Hierarchy) bool {
	if len(u.Selectors) == 0 {
		return true
	}
	for _, s := range u.Selectors {
		if s.Matches(candidate, h) {
			return true
		}
	}
	return false
}

// Teaching reports whether the unit lists id among its teaching goals.
func (u Unit) Teaching(id string) bool {
	return contains(u.Teaches, id)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package planner

import (
	"fmt"
	"math"
	"strings"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

// CostFunc prices one unit. It returns a non-negative number, or +Inf to
// forbid the unit outright.
type CostFunc func(catalog.Unit) float64

// CountCost charges 1 per unit, so the cheapest path is the shortest.
func CountCost(catalog.Unit) float64 { return 1 }

// MediaTimeCost charges the unit's media time in minutes, or 1 when the
// unit has none.
func MediaTimeCost(u catalog.Unit) float64 {
	if u.MediaTime <= 0 {
		return 1
	}
	return u.MediaTime.Minutes()
}

// wordsPerUnit is the reading length WordCountCost charges 1 for.
const wordsPerUnit = 250

// WordCountCost charges one per 250 words of reading, or 1 when the unit
// has no word count.
func WordCountCost(u catalog.Unit) float64 {
	if u.WordCount <= 0 {
		return 1
	}
	return float64(u.WordCount) / wordsPerUnit
}

// Forbid wraps base so that units matching pred cost +Inf and are never
// planned.
func Forbid(pred func(catalog.Unit) bool, base CostFunc) CostFunc {
	if base == nil {
		base = CountCost
	}
	return func(u catalog.Unit) float64 {
		if pred(u) {
			return math.Inf(1)
		}
		return base(u)
	}
}

// CostByName returns the named built-in cost function: "count",
// "media_time" or "word_count".
func CostByName(name string) (CostFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "count":
		return CountCost, nil
	case "media_time", "time":
		return MediaTimeCost, nil
	case "word_count", "words":
		return WordCountCost, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCost, name)
	}
}

// Penalties shape path cost beyond the raw unit cost.
type Penalties struct {
	// ContextSwitch multiplies the cost of a unit none of whose
	// requirements were taught by the unit just before it. Must be >= 1.
	ContextSwitch float64 `mapstructure:"context_switch"`
	// SuggestionViolation scales the surcharge for each suggested skill
	// still unknown when the unit is taken. Must be >= 0.
	SuggestionViolation float64 `mapstructure:"suggestion_violation"`
	// CompositeReimbursement discounts the cost of a resolved composite.
	// Must be in (0, 1].
	CompositeReimbursement float64 `mapstructure:"composite_reimbursement"`
}

// DefaultPenalties returns neutral penalties: plain unit costs pass
// through unchanged.
func DefaultPenalties() Penalties {
	return Penalties{
		ContextSwitch:          1,
		SuggestionViolation:    0,
		CompositeReimbursement: 1,
	}
}

// Validate checks the penalty bounds.
func (p Penalties) Validate() error {
	switch {
	case !(p.ContextSwitch >= 1) || math.IsInf(p.ContextSwitch, 1):
		return fmt.Errorf("%w: context_switch must be >= 1, got %g", ErrInvalidPenalty, p.ContextSwitch)
	case !(p.SuggestionViolation >= 0) || math.IsInf(p.SuggestionViolation, 1):
		return fmt.Errorf("%w: suggestion_violation must be >= 0, got %g", ErrInvalidPenalty, p.SuggestionViolation)
	case !(p.CompositeReimbursement > 0 && p.CompositeReimbursement <= 1):
		return fmt.Errorf("%w: composite_reimbursement must be in (0, 1], got %g", ErrInvalidPenalty, p.CompositeReimbursement)
	}
	return nil
}

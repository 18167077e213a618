package planner

import "errors"

// Sentinel errors for planner configuration and search limits.
var (
	// ErrInvalidPenalty indicates a penalty outside its allowed range.
	ErrInvalidPenalty = errors.New("invalid penalty")
	// ErrUnknownCost indicates a cost function name with no built-in.
	ErrUnknownCost = errors.New("unknown cost function")
	// ErrExpansionLimit indicates the search stopped after MaxExpansions
	// node expansions. Paths found until then are still returned.
	ErrExpansionLimit = errors.New("expansion limit reached")
)

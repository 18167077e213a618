package planner

import (
	"github.com/papapumpkin/syllabus/internal/logger"
	"github.com/papapumpkin/syllabus/internal/telemetry"
)

// DefaultMaxDepth bounds how deeply composite units may nest.
const DefaultMaxDepth = 8

// Option configures a Planner.
type Option func(*Planner)

// WithCost sets the unit cost function. The default is CountCost.
func WithCost(fn CostFunc) Option {
	return func(p *Planner) {
		if fn != nil {
			p.cost = fn
		}
	}
}

// WithPenalties sets the path cost penalties. New rejects invalid values.
func WithPenalties(pen Penalties) Option {
	return func(p *Planner) {
		p.penalties = pen
	}
}

// WithAlternatives sets how many distinct paths Plan returns at most.
// Values below 1 mean 1.
func WithAlternatives(k int) Option {
	return func(p *Planner) {
		p.alternatives = max(k, 1)
	}
}

// WithMaxDepth bounds composite recursion. A composite that would nest
// deeper is treated as unresolvable.
func WithMaxDepth(d int) Option {
	return func(p *Planner) {
		p.maxDepth = max(d, 0)
	}
}

// WithMaxExpansions stops a Plan call after n node expansions across all
// recursion levels. Zero means unbounded.
func WithMaxExpansions(n int) Option {
	return func(p *Planner) {
		p.maxExpansions = max(n, 0)
	}
}

// WithUnreachableDistance sets the heuristic distance for skills a unit
// cannot reach. The default is +Inf, which prunes such units; 1 restores
// the legacy relaxation.
func WithUnreachableDistance(d float64) Option {
	return func(p *Planner) {
		p.unreachable = d
	}
}

// WithLogger sets the logger for search diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(p *Planner) {
		p.log = l
	}
}

// WithEmitter sets the telemetry emitter. A nil emitter records nothing.
func WithEmitter(e *telemetry.Emitter) Option {
	return func(p *Planner) {
		p.emitter = e
	}
}

// Package planner finds minimum-cost learning paths: ordered sequences of
// units that take a learner from what they know to a state fulfilling a
// goal.
//
// The search is best-first over closed skill states. Each call reduces
// the catalog to the goal's backward scope, builds a distance heuristic
// over it, and expands states cheapest-first until the requested number
// of distinct paths is found or the frontier is exhausted. Composite
// units are resolved by planning their own goal recursively, with the
// composite and every enclosing composite excluded from the sub-search.
//
// A Planner is immutable after New and safe for concurrent use; each Plan
// call owns all of its search data.
package planner

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/logger"
	"github.com/papapumpkin/syllabus/internal/skill"
	"github.com/papapumpkin/syllabus/internal/telemetry"
)

// Planner plans over one catalog.
type Planner struct {
	catalog       *catalog.Catalog
	cost          CostFunc
	penalties     Penalties
	alternatives  int
	maxDepth      int
	maxExpansions int
	unreachable   float64
	log           *logger.Logger
	emitter       *telemetry.Emitter
}

// New creates a planner over c. It fails when the configured penalties
// are out of range.
func New(c *catalog.Catalog, opts ...Option) (*Planner, error) {
	p := &Planner{
		catalog:      c,
		cost:         CountCost,
		penalties:    DefaultPenalties(),
		alternatives: 1,
		maxDepth:     DefaultMaxDepth,
		unreachable:  math.Inf(1),
		log:          logger.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	if err := p.penalties.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Catalog returns the catalog the planner works over.
func (p *Planner) Catalog() *catalog.Catalog {
	return p.catalog
}

// Request is one planning problem.
type Request struct {
	// Goal lists the skills the learner must know at the end.
	Goal []string `json:"goal"`
	// Knowledge lists the skills the learner already knows.
	Knowledge []string `json:"knowledge,omitempty"`
	// Exclude lists units that must not be used.
	Exclude []string `json:"exclude,omitempty"`
}

// Plan returns up to the configured number of distinct paths for req,
// cheapest first. No path is not an error: the result is then empty.
// Plan returns ctx.Err() when ctx ends mid-search, and the paths found so
// far together with ErrExpansionLimit when the expansion budget runs out.
func (p *Planner) Plan(ctx context.Context, req Request) ([]Path, error) {
	runID := telemetry.NewRunID()
	log := p.log.With("run", runID)
	start := time.Now()

	p.emitter.Record(telemetry.KindPlanStart, runID, "", req)
	log.Debug("plan start", "goal", req.Goal, "knowledge", len(req.Knowledge), "exclude", req.Exclude)

	h := p.catalog.Hierarchy()
	s := &search{
		p:     p,
		ctx:   ctx,
		runID: runID,
		log:   log,
		h:     h,
		memo:  make(map[string]*Path),
	}
	known := skill.NewState(h, req.Knowledge...)
	paths, err := s.run(req.Goal, known, newExclusion(req.Exclude...), 0, p.alternatives, nil)

	data := map[string]any{
		"paths":      len(paths),
		"expansions": s.expansions,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}
	switch {
	case errors.Is(err, ErrExpansionLimit):
		p.emitter.Record(telemetry.KindExpansionLimit, runID, "", data)
		log.Warn("expansion limit reached", "limit", p.maxExpansions, "paths", len(paths))
	case err != nil:
		log.Debug("plan aborted", "error", err)
		return nil, err
	}
	p.emitter.Record(telemetry.KindPlanDone, runID, "", data)
	log.Debug("plan done", "paths", len(paths), "expansions", s.expansions)
	return paths, err
}

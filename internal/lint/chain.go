package lint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/diagnose"
	"github.com/papapumpkin/syllabus/internal/graph"
)

// ErrNotBuilt is returned by checks that need a catalog when no build
// check ran before them.
var ErrNotBuilt = errors.New("catalog not built")

// Check is a single named check in the chain. Fn returns one finding per
// problem; a check fails when it returns findings or an error.
type Check struct {
	Name     string
	Advisory bool
	Fn       func(ctx context.Context, s *Subject) (findings []string, err error)
}

// Chain runs checks sequentially, stopping on the first blocking failure.
type Chain struct {
	Checks []Check
}

// Run executes each check in sequence against f. A non-nil error is only
// returned when ctx is cancelled; check failures are captured in the
// Result.
func (c *Chain) Run(ctx context.Context, f *catalog.File) (*Result, error) {
	result := &Result{Passed: true}
	s := &Subject{File: f}

	for _, check := range c.Checks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("lint chain cancelled: %w", err)
		}

		start := time.Now()
		findings, err := check.Fn(ctx, s)
		elapsed := time.Since(start)
		if err != nil && len(findings) == 0 {
			findings = []string{err.Error()}
		}

		failed := len(findings) > 0
		result.Checks = append(result.Checks, CheckResult{
			Name:     check.Name,
			Passed:   !failed,
			Advisory: check.Advisory,
			Findings: findings,
			Elapsed:  elapsed,
		})
		if failed && !check.Advisory {
			result.Passed = false
			return result, nil
		}
	}
	return result, nil
}

// DefaultChain returns the standard catalog chain: structure, build,
// nesting, then the advisory cycles and unteachable checks.
func DefaultChain() *Chain {
	return &Chain{Checks: []Check{
		{Name: "structure", Fn: structureCheck},
		{Name: "build", Fn: buildCheck},
		{Name: "nesting", Fn: nestingCheck},
		{Name: "cycles", Advisory: true, Fn: cyclesCheck},
		{Name: "unteachable", Advisory: true, Fn: unteachableCheck},
	}}
}

// structureCheck reports every catalog.Validate error.
func structureCheck(_ context.Context, s *Subject) ([]string, error) {
	errs := catalog.Validate(s.File)
	findings := make([]string, 0, len(errs))
	for i := range errs {
		findings = append(findings, fmt.Sprintf("%s [%s]", errs[i].Error(), errs[i].Category))
	}
	return findings, nil
}

// buildCheck builds the catalog and stores it on the subject.
func buildCheck(_ context.Context, s *Subject) ([]string, error) {
	c, err := s.File.Build()
	if err != nil {
		return nil, err
	}
	s.Catalog = c
	return nil, nil
}

// nestingCheck reports nesting loops and the ancestors they corrupt.
func nestingCheck(_ context.Context, s *Subject) ([]string, error) {
	if s.Catalog == nil {
		return nil, ErrNotBuilt
	}
	h := s.Catalog.Hierarchy()
	cycles := diagnose.NestingCycles(h)
	if len(cycles) == 0 {
		return nil, nil
	}
	var findings []string
	for _, cyc := range cycles {
		findings = append(findings, "nesting cycle: "+strings.Join(cyc, ", "))
	}
	if corrupted := diagnose.CorruptedAncestors(h, cycles); len(corrupted) > 0 {
		findings = append(findings, "corrupted ancestors: "+strings.Join(corrupted, ", "))
	}
	return findings, nil
}

// cyclesCheck reports requirement cycles between skills and units.
func cyclesCheck(_ context.Context, s *Subject) ([]string, error) {
	if s.Catalog == nil {
		return nil, ErrNotBuilt
	}
	var findings []string
	for _, cyc := range diagnose.Cycles(s.Catalog) {
		findings = append(findings, "dependency cycle: "+joinRefs(cyc))
	}
	return findings, nil
}

// unteachableCheck reports leaf skills no unit teaches. Such skills can
// only ever be prior knowledge.
func unteachableCheck(ctx context.Context, s *Subject) ([]string, error) {
	if s.Catalog == nil {
		return nil, ErrNotBuilt
	}
	h := s.Catalog.Hierarchy()
	var findings []string
	for _, id := range h.IDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(h.Children(id)) == 0 && len(s.Catalog.Teachers(id)) == 0 {
			findings = append(findings, fmt.Sprintf("skill %q is taught by no unit", id))
		}
	}
	return findings, nil
}

func joinRefs(refs []graph.Ref) string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}

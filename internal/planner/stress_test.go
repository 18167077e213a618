package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// TestPlanStress plans across a catalog of 5,000 skills and units.
func TestPlanStress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}
	t.Parallel()

	const n = 2500
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("s%04d", i)
	}
	specs := make([]unitSpec, 0, n)
	for i := 0; i < n; i++ {
		spec := unitSpec{id: fmt.Sprintf("u%04d", i), teaches: []string{ids[i]}}
		if i > 0 {
			spec.requires = []string{ids[i-1]}
		}
		if i > 1 && i%10 == 0 {
			spec.requires = append(spec.requires, ids[i-2])
		}
		specs = append(specs, spec)
	}
	c := buildCatalog(t, flatSkills(ids...), specs)

	start := time.Now()
	paths, err := newPlanner(t, c).Plan(context.Background(), Request{Goal: []string{ids[n-1]}})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(paths) != 1 || paths[0].Len() != n {
		t.Fatalf("expected one path of %d steps, got %d paths", n, len(paths))
	}
	if elapsed > 5*time.Second {
		t.Errorf("planning took %v, want under 5s", elapsed)
	}
}

// parallelChains builds k independent chains of n units each. Unit
// c<k>u<i> teaches c<k>s<i> and requires c<k>s<i-1>.
func parallelChains(t testing.TB, k, n int) ([]string, *Planner, int) {
	t.Helper()
	var ids []string
	var specs []unitSpec
	tips := make([]string, k)
	for c := 0; c < k; c++ {
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("c%02ds%02d", c, i)
			spec := unitSpec{id: fmt.Sprintf("c%02du%02d", c, i), teaches: []string{id}}
			if i > 0 {
				spec.requires = []string{ids[len(ids)-1]}
			}
			ids = append(ids, id)
			specs = append(specs, spec)
		}
		tips[c] = ids[len(ids)-1]
	}
	return tips, newPlanner(t, buildCatalog(t, flatSkills(ids...), specs)), len(specs)
}

// TestPlanStressBranching plans over 50 interleavable chains. With two
// goal tips the search finishes quickly; with three the min-over-goals
// heuristic is flat across the interleavings and MaxExpansions bounds it.
func TestPlanStressBranching(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}
	t.Parallel()

	const chains, length = 50, 50
	tips, p, units := parallelChains(t, chains, length)
	if units != chains*length {
		t.Fatalf("built %d units, want %d", units, chains*length)
	}

	t.Run("two goals", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		paths, err := p.Plan(context.Background(), Request{Goal: tips[:2]})
		elapsed := time.Since(start)
		if err != nil {
			t.Fatalf("Plan: %v", err)
		}
		if len(paths) != 1 || paths[0].Len() != 2*length || paths[0].Cost != 2*length {
			t.Fatalf("expected one path of %d steps, got %v", 2*length, paths)
		}
		if elapsed > 5*time.Second {
			t.Errorf("planning took %v, want under 5s", elapsed)
		}
	})

	t.Run("three goals bounded", func(t *testing.T) {
		t.Parallel()
		const limit = 5000
		limited, err := New(p.Catalog(), WithMaxExpansions(limit))
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		start := time.Now()
		_, err = limited.Plan(context.Background(), Request{Goal: tips[:3]})
		elapsed := time.Since(start)
		if !errors.Is(err, ErrExpansionLimit) {
			t.Fatalf("Plan error = %v, want ErrExpansionLimit", err)
		}
		if elapsed > 5*time.Second {
			t.Errorf("bounded planning took %v, want under 5s", elapsed)
		}
	})
}

package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/syllabus/internal/telemetry"
)

// PlanBatch plans independent requests concurrently, running at most
// limit at a time (0 means no limit). Results keep the order of reqs.
// The first failing request cancels the rest. A request that hits the
// expansion limit keeps its partial paths; the batch then completes and
// returns its results with an error wrapping ErrExpansionLimit.
func PlanBatch(ctx context.Context, p *Planner, reqs []Request, limit int) ([][]Path, error) {
	batchID := telemetry.NewRunID()
	p.emitter.Record(telemetry.KindBatchStart, batchID, "", map[string]any{"requests": len(reqs), "limit": limit})

	results := make([][]Path, len(reqs))
	var (
		mu      sync.Mutex
		limited []int
	)
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			paths, err := p.Plan(gctx, req)
			if errors.Is(err, ErrExpansionLimit) {
				mu.Lock()
				limited = append(limited, i)
				mu.Unlock()
			} else if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			results[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.emitter.Record(telemetry.KindBatchDone, batchID, "", map[string]any{"requests": len(reqs), "limited": len(limited)})
	if len(limited) > 0 {
		sort.Ints(limited)
		return results, fmt.Errorf("requests %v: %w", limited, ErrExpansionLimit)
	}
	return results, nil
}

package graph

import (
	"container/heap"
	"fmt"
)

// ShortestPaths runs Dijkstra from src and returns the distance to every
// reachable node, src included at 0. Unreachable nodes are absent.
// Returns ErrNodeNotFound if src is not in the graph.
func (g *Graph) ShortestPaths(src Ref) (map[Ref]float64, error) {
	if !g.nodes[src] {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, src)
	}
	return dijkstra(g.out, []Ref{src}), nil
}

// DistancesTo returns, for every node that can reach at least one of
// targets, the cost of its cheapest path to the nearest target. Targets
// not in the graph are ignored.
func (g *Graph) DistancesTo(targets ...Ref) map[Ref]float64 {
	var sources []Ref
	for _, t := range targets {
		if g.nodes[t] {
			sources = append(sources, t)
		}
	}
	return dijkstra(g.in, sources)
}

// dijkstra runs a multi-source shortest-path search over adj.
func dijkstra(adj map[Ref]map[Ref]float64, sources []Ref) map[Ref]float64 {
	dist := make(map[Ref]float64, len(sources))
	pq := make(distQueue, 0, len(sources))
	for _, s := range sources {
		dist[s] = 0
		pq = append(pq, distItem{ref: s})
	}
	heap.Init(&pq)

	done := make(map[Ref]bool)
	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(distItem)
		if done[cur.ref] {
			continue
		}
		done[cur.ref] = true
		for next, w := range adj[cur.ref] {
			d := cur.dist + w
			if old, seen := dist[next]; seen && old <= d {
				continue
			}
			dist[next] = d
			heap.Push(&pq, distItem{ref: next, dist: d})
		}
	}
	return dist
}

type distItem struct {
	ref  Ref
	dist float64
}

// distQueue is a min-heap of tentative distances. Stale entries are
// skipped on pop instead of being decreased in place.
type distQueue []distItem

func (q distQueue) Len() int { return len(q) }
func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].ref.Less(q[j].ref)
}
func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x any)   { *q = append(*q, x.(distItem)) }
func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

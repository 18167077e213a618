package planner

import (
	"container/heap"

	"github.com/papapumpkin/syllabus/internal/skill"
)

// node is a search node. The chain of parents from a goal node back to
// the root spells out one path.
type node struct {
	state  skill.State
	parent *node
	unit   string   // applied unit, empty at the root
	taught []string // skills the step added before closure
	sub    *Path    // composite resolution, if any
	step   float64  // cost of this step alone
	g      float64  // accumulated cost
	f      float64  // g plus heuristic

	seq   int  // insertion order, breaks priority ties
	index int  // position in the owning heap
	alt   bool // descends from a revived duplicate; may revisit closed states
}

// nodeHeap is a min-heap ordered by f, then insertion order.
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *nodeHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	*h = old[:last]
	n.index = -1
	return n
}

// openList is the search frontier. It holds at most one node per state;
// displaced duplicates go to the extra heap, from which they can be
// revived to look for alternative paths.
type openList struct {
	open    nodeHeap
	extra   nodeHeap
	byState map[string]*node
	seq     int
}

func newOpenList() *openList {
	return &openList{byState: make(map[string]*node)}
}

// add inserts n. If a node for the same state is already open, the
// cheaper of the two stays and the other is stashed.
func (o *openList) add(n *node) {
	n.seq = o.seq
	o.seq++

	key := n.state.Key()
	old, ok := o.byState[key]
	if !ok {
		o.byState[key] = n
		heap.Push(&o.open, n)
		return
	}
	if n.g < old.g {
		heap.Remove(&o.open, old.index)
		heap.Push(&o.extra, old)
		o.byState[key] = n
		heap.Push(&o.open, n)
		return
	}
	heap.Push(&o.extra, n)
}

// pop removes the open node with the lowest f, or returns nil.
func (o *openList) pop() *node {
	if o.open.Len() == 0 {
		return nil
	}
	n := heap.Pop(&o.open).(*node)
	delete(o.byState, n.state.Key())
	return n
}

// stash parks n on the extra heap without touching the open set.
func (o *openList) stash(n *node) {
	n.seq = o.seq
	o.seq++
	heap.Push(&o.extra, n)
}

// popExtra revives the cheapest stashed node, or returns nil.
func (o *openList) popExtra() *node {
	if o.extra.Len() == 0 {
		return nil
	}
	n := heap.Pop(&o.extra).(*node)
	n.alt = true
	return n
}

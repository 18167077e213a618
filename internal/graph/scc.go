package graph

import "sort"

// Cycles returns the strongly connected components that contain a cycle:
// components with more than one node, and single nodes with a self-loop.
// Each cycle is sorted, and cycles are ordered by their first node.
func (g *Graph) Cycles() [][]Ref {
	t := &tarjan{
		g:       g,
		index:   make(map[Ref]int),
		lowlink: make(map[Ref]int),
		onStack: make(map[Ref]bool),
	}
	for _, r := range g.Nodes() {
		if _, seen := t.index[r]; !seen {
			t.strongConnect(r)
		}
	}

	var cycles [][]Ref
	for _, comp := range t.components {
		if len(comp) == 1 {
			if _, self := g.out[comp[0]][comp[0]]; !self {
				continue
			}
		}
		SortRefs(comp)
		cycles = append(cycles, comp)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0].Less(cycles[j][0]) })
	return cycles
}

// tarjan holds the bookkeeping of one run of Tarjan's SCC algorithm.
type tarjan struct {
	g          *Graph
	next       int
	index      map[Ref]int
	lowlink    map[Ref]int
	stack      []Ref
	onStack    map[Ref]bool
	components [][]Ref
}

func (t *tarjan) strongConnect(v Ref) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.Successors(v) {
		if _, seen := t.index[w]; !seen {
			t.strongConnect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}
	var comp []Ref
	for {
		n := len(t.stack) - 1
		w := t.stack[n]
		t.stack = t.stack[:n]
		t.onStack[w] = false
		comp = append(comp, w)
		if w == v {
			break
		}
	}
	t.components = append(t.components, comp)
}

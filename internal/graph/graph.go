// Package graph provides the directed, weighted graph shared by the
// distance heuristic and the curriculum diagnostics. Nodes are skill or
// unit references; edges carry non-negative weights. It supports
// shortest-path queries, strongly connected components and transitive
// reachability.
package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNodeNotFound is returned when an operation references a non-existent node.
var ErrNodeNotFound = errors.New("node not found")

// ErrInvalidWeight is returned when an edge weight is negative or NaN.
var ErrInvalidWeight = errors.New("invalid edge weight")

// Kind tells skill nodes from unit nodes.
type Kind int

const (
	KindSkill Kind = iota // Skill node
	KindUnit              // Learning unit node
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	if k == KindUnit {
		return "unit"
	}
	return "skill"
}

// Ref identifies a node: a skill or a unit id. Skill and unit ids live in
// separate namespaces.
type Ref struct {
	Kind Kind
	ID   string
}

// SkillRef returns the reference to skill id.
func SkillRef(id string) Ref { return Ref{Kind: KindSkill, ID: id} }

// UnitRef returns the reference to unit id.
func UnitRef(id string) Ref { return Ref{Kind: KindUnit, ID: id} }

// String formats the reference as "kind:id".
func (r Ref) String() string {
	return r.Kind.String() + ":" + r.ID
}

// Less orders references by kind (skills first), then id.
func (r Ref) Less(o Ref) bool {
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	return r.ID < o.ID
}

// SortRefs sorts refs in place by Less.
func SortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
}

// Graph is a directed graph with weighted edges. Parallel edges collapse
// to the cheapest one. Self-loops are allowed and count as cycles.
// A Graph is not safe for concurrent mutation; read-only use is.
type Graph struct {
	nodes map[Ref]bool
	// out maps node → successor → weight (forward edges).
	out map[Ref]map[Ref]float64
	// in maps node → predecessor → weight (backward edges).
	in map[Ref]map[Ref]float64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[Ref]bool),
		out:   make(map[Ref]map[Ref]float64),
		in:    make(map[Ref]map[Ref]float64),
	}
}

// AddNode adds r if it is not present yet.
func (g *Graph) AddNode(r Ref) {
	if g.nodes[r] {
		return
	}
	g.nodes[r] = true
	g.out[r] = make(map[Ref]float64)
	g.in[r] = make(map[Ref]float64)
}

// AddEdge adds an edge from → to with the given weight, adding missing
// nodes. When the edge already exists the lower weight is kept.
func (g *Graph) AddEdge(from, to Ref, weight float64) error {
	if weight < 0 || math.IsNaN(weight) {
		return fmt.Errorf("%w: %s → %s: %v", ErrInvalidWeight, from, to, weight)
	}
	g.AddNode(from)
	g.AddNode(to)
	if w, ok := g.out[from][to]; ok && w <= weight {
		return nil
	}
	g.out[from][to] = weight
	g.in[to][from] = weight
	return nil
}

// Has reports whether r is a node of the graph.
func (g *Graph) Has(r Ref) bool {
	return g.nodes[r]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns every node, sorted.
func (g *Graph) Nodes() []Ref {
	refs := make([]Ref, 0, len(g.nodes))
	for r := range g.nodes {
		refs = append(refs, r)
	}
	SortRefs(refs)
	return refs
}

// Weight returns the weight of the edge from → to.
func (g *Graph) Weight(from, to Ref) (float64, bool) {
	w, ok := g.out[from][to]
	return w, ok
}

// Successors returns the direct successors of r, sorted.
func (g *Graph) Successors(r Ref) []Ref {
	return sortedKeys(g.out[r])
}

// Predecessors returns the direct predecessors of r, sorted.
func (g *Graph) Predecessors(r Ref) []Ref {
	return sortedKeys(g.in[r])
}

// Reachable returns every node reachable from r through forward edges,
// excluding r itself unless it lies on a cycle. The result is sorted.
// Returns ErrNodeNotFound if r is not in the graph.
func (g *Graph) Reachable(r Ref) ([]Ref, error) {
	if !g.nodes[r] {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, r)
	}
	return g.walk(r, g.out), nil
}

// Ancestors returns every node that can reach r, sorted. Returns
// ErrNodeNotFound if r is not in the graph.
func (g *Graph) Ancestors(r Ref) ([]Ref, error) {
	if !g.nodes[r] {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, r)
	}
	return g.walk(r, g.in), nil
}

// walk performs a BFS over adj from start, collecting visited nodes.
func (g *Graph) walk(start Ref, adj map[Ref]map[Ref]float64) []Ref {
	visited := make(map[Ref]bool)
	queue := []Ref{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	result := make([]Ref, 0, len(visited))
	for r := range visited {
		result = append(result, r)
	}
	SortRefs(result)
	return result
}

func sortedKeys(m map[Ref]float64) []Ref {
	if len(m) == 0 {
		return nil
	}
	refs := make([]Ref, 0, len(m))
	for r := range m {
		refs = append(refs, r)
	}
	SortRefs(refs)
	return refs
}

// Package heuristic builds the distance map that guides the planner: for
// each unit, the cheapest known cost of reaching every skill starting
// from that unit.
package heuristic

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/graph"
)

// Option configures a Map.
type Option func(*Map)

// WithUnreachable sets the distance reported for skills a unit cannot
// reach. The default is +Inf; 1 reproduces the legacy relaxation.
func WithUnreachable(d float64) Option {
	return func(m *Map) {
		m.unreachable = d
	}
}

// Map answers unit → skill distance queries over one catalog. Results
// are computed on first use and cached; a Map is safe for concurrent use.
type Map struct {
	g           *graph.Graph
	unreachable float64

	mu   sync.Mutex
	rows map[string]map[string]float64
	// toGoals caches, per goal set, each unit's distance to its nearest goal.
	toGoals map[string]map[string]float64
}

// Build assembles the distance graph of c:
//   - nesting relations become zero-weight edges in both directions,
//   - each required skill leads to its unit at zero weight,
//   - each unit leads to its taught skills at cost(u), or 1 when cost is nil.
func Build(c *catalog.Catalog, cost func(catalog.Unit) float64, opts ...Option) *Map {
	m := &Map{
		g:           graph.New(),
		unreachable: math.Inf(1),
		rows:        make(map[string]map[string]float64),
		toGoals:     make(map[string]map[string]float64),
	}
	for _, o := range opts {
		o(m)
	}

	h := c.Hierarchy()
	for _, id := range h.IDs() {
		m.g.AddNode(graph.SkillRef(id))
		for _, child := range h.Children(id) {
			// Weights are non-negative constants; AddEdge cannot fail.
			_ = m.g.AddEdge(graph.SkillRef(id), graph.SkillRef(child), 0)
			_ = m.g.AddEdge(graph.SkillRef(child), graph.SkillRef(id), 0)
		}
	}
	for _, u := range c.Units() {
		ref := graph.UnitRef(u.ID)
		m.g.AddNode(ref)
		for _, id := range u.RequiredSkills() {
			_ = m.g.AddEdge(graph.SkillRef(id), ref, 0)
		}
		w := 1.0
		if cost != nil {
			w = cost(u)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 1) {
			continue
		}
		for _, id := range u.Teaches {
			_ = m.g.AddEdge(ref, graph.SkillRef(id), w)
		}
	}
	return m
}

// Distance returns the cheapest cost of reaching skillID from unitID.
func (m *Map) Distance(unitID, skillID string) float64 {
	if d, ok := m.row(unitID)[skillID]; ok {
		return d
	}
	return m.unreachable
}

// Distances returns the minimum Distance from unitID over goals, or 0
// when goals is empty.
func (m *Map) Distances(unitID string, goals []string) float64 {
	if len(goals) == 0 {
		return 0
	}
	if d, ok := m.goalDistances(goals)[unitID]; ok {
		return d
	}
	return m.unreachable
}

// goalDistances runs one reverse search from the whole goal set, which
// answers Distances for every unit at once.
func (m *Map) goalDistances(goals []string) map[string]float64 {
	sorted := append([]string(nil), goals...)
	sort.Strings(sorted)
	key := strings.Join(sorted, "\x00")

	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.toGoals[key]; ok {
		return r
	}
	targets := make([]graph.Ref, len(sorted))
	for i, id := range sorted {
		targets[i] = graph.SkillRef(id)
	}
	r := make(map[string]float64)
	for ref, d := range m.g.DistancesTo(targets...) {
		if ref.Kind == graph.KindUnit {
			r[ref.ID] = d
		}
	}
	m.toGoals[key] = r
	return r
}

// row returns the memoised skill distances from unitID.
func (m *Map) row(unitID string) map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.rows[unitID]; ok {
		return r
	}
	r := make(map[string]float64)
	if dist, err := m.g.ShortestPaths(graph.UnitRef(unitID)); err == nil {
		for ref, d := range dist {
			if ref.Kind == graph.KindSkill {
				r[ref.ID] = d
			}
		}
	}
	m.rows[unitID] = r
	return r
}

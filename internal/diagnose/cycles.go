// Package diagnose explains why a curriculum cannot be planned: it finds
// dependency cycles, the skill groups a nesting cycle corrupts, and the
// first skill on a goal's backward trace that nothing teaches.
package diagnose

import (
	"sort"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/graph"
	"github.com/papapumpkin/syllabus/internal/skill"
)

// DependencyGraph builds the directed graph the cycle detector runs on:
// unit → required skill, skill → teaching unit and skill → nested skill.
func DependencyGraph(c *catalog.Catalog) *graph.Graph {
	g := graph.New()
	h := c.Hierarchy()
	for _, id := range h.IDs() {
		g.AddNode(graph.SkillRef(id))
		for _, child := range h.Children(id) {
			// Zero weights are always valid.
			_ = g.AddEdge(graph.SkillRef(id), graph.SkillRef(child), 0)
		}
	}
	for _, u := range c.Units() {
		ref := graph.UnitRef(u.ID)
		g.AddNode(ref)
		for _, id := range u.RequiredSkills() {
			_ = g.AddEdge(ref, graph.SkillRef(id), 0)
		}
		for _, id := range u.Teaches {
			_ = g.AddEdge(graph.SkillRef(id), ref, 0)
		}
	}
	return g
}

// Cycles returns every dependency cycle of c as the sorted list of skills
// and units on it. Cycles are reported, never repaired.
func Cycles(c *catalog.Catalog) [][]graph.Ref {
	return DependencyGraph(c).Cycles()
}

// NestingCycles returns the cycles of the skill nesting relation alone,
// each as sorted skill ids.
func NestingCycles(h *skill.Hierarchy) [][]string {
	g := graph.New()
	for _, id := range h.IDs() {
		g.AddNode(graph.SkillRef(id))
		for _, child := range h.Children(id) {
			_ = g.AddEdge(graph.SkillRef(id), graph.SkillRef(child), 0)
		}
	}

	var cycles [][]string
	for _, refs := range g.Cycles() {
		ids := make([]string, len(refs))
		for i, r := range refs {
			ids[i] = r.ID
		}
		cycles = append(cycles, ids)
	}
	return cycles
}

// CorruptedAncestors returns the skills that directly or transitively
// contain a skill of one of cycles, excluding the cycle members
// themselves. The result is sorted.
func CorruptedAncestors(h *skill.Hierarchy, cycles [][]string) []string {
	members := make(map[string]bool)
	for _, cyc := range cycles {
		for _, id := range cyc {
			members[id] = true
		}
	}

	found := make(map[string]bool)
	for id := range members {
		for _, anc := range h.Ancestors(id) {
			if !members[anc] {
				found[anc] = true
			}
		}
	}

	out := make([]string, 0, len(found))
	for id := range found {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

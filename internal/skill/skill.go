// Package skill models skills, their nested-skill composition, and the
// closed knowledge states the planner searches over.
package skill

import "sort"

// Skill is a unit of knowledge that may decompose into nested skills.
// Relations are stored as ids so that multi-parent hierarchies never embed
// one skill inside another.
type Skill struct {
	ID             string
	RepositoryID   string
	NestedSkillIDs []string
}

// IsGroup reports whether the skill decomposes into nested skills.
func (s Skill) IsGroup() bool {
	return len(s.NestedSkillIDs) > 0
}

// Hierarchy indexes a set of skills by id and precomputes, per skill, its
// direct children and the skills that list it as a child.
type Hierarchy struct {
	skills   map[string]Skill
	children map[string][]string
	parents  map[string][]string
}

// NewHierarchy builds a hierarchy index over skills. Nested ids that do not
// name a skill in the set are kept as children so that closure still treats
// them as required parts of their parent.
func NewHierarchy(skills []Skill) *Hierarchy {
	h := &Hierarchy{
		skills:   make(map[string]Skill, len(skills)),
		children: make(map[string][]string, len(skills)),
		parents:  make(map[string][]string),
	}
	for _, s := range skills {
		h.skills[s.ID] = s
	}
	for _, s := range skills {
		seen := make(map[string]bool, len(s.NestedSkillIDs))
		for _, child := range s.NestedSkillIDs {
			if seen[child] {
				continue
			}
			seen[child] = true
			h.children[s.ID] = append(h.children[s.ID], child)
			h.parents[child] = append(h.parents[child], s.ID)
		}
	}
	for id := range h.parents {
		sort.Strings(h.parents[id])
	}
	return h
}

// Skill returns the skill with the given id.
func (h *Hierarchy) Skill(id string) (Skill, bool) {
	s, ok := h.skills[id]
	return s, ok
}

// Has reports whether id names a skill in the hierarchy.
func (h *Hierarchy) Has(id string) bool {
	_, ok := h.skills[id]
	return ok
}

// Len returns the number of skills in the hierarchy.
func (h *Hierarchy) Len() int {
	return len(h.skills)
}

// IDs returns all skill ids, sorted.
func (h *Hierarchy) IDs() []string {
	ids := make([]string, 0, len(h.skills))
	for id := range h.skills {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Children returns the direct nested skills of id in declaration order.
// The returned slice must not be modified.
func (h *Hierarchy) Children(id string) []string {
	return h.children[id]
}

// Parents returns the skills that list id as a direct child, sorted.
// The returned slice must not be modified.
func (h *Hierarchy) Parents(id string) []string {
	return h.parents[id]
}

// Ancestors returns every skill that directly or transitively contains id,
// sorted. Cycles in the hierarchy are tolerated.
func (h *Hierarchy) Ancestors(id string) []string {
	return h.walk(id, h.parents)
}

// Descendants returns every skill directly or transitively nested in id,
// sorted. Cycles in the hierarchy are tolerated.
func (h *Hierarchy) Descendants(id string) []string {
	return h.walk(id, h.children)
}

// walk collects everything reachable from id through edges, excluding id
// itself unless it lies on a cycle.
func (h *Hierarchy) walk(id string, edges map[string][]string) []string {
	visited := make(map[string]bool)
	stack := append([]string(nil), edges[id]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		stack = append(stack, edges[cur]...)
	}
	result := make([]string, 0, len(visited))
	for v := range visited {
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}

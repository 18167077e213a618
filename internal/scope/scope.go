// Package scope bounds the planning search space by walking backward from
// the goal: only units that can contribute to reaching a goal skill, and
// the skills they touch, are kept.
package scope

import (
	"sort"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/skill"
)

// Result is the reduced search space for one goal.
type Result struct {
	// Units holds the in-scope unit ids in catalog order.
	Units []string
	// Skills holds the in-scope skill ids, sorted.
	Skills []string
}

// Filter walks backward from goal. A frontier starts with the goal
// skills; each popped skill that is neither known nor processed pulls in
// every unit teaching it, whose required skills join the frontier, along
// with the skill's nested children.
//
// The scoped skills are the goal, every skill referenced by an in-scope
// unit, and all hierarchy ancestors and descendants of those, so state
// closure never needs a skill outside the scope.
func Filter(goal []string, c *catalog.Catalog, known skill.State) Result {
	h := c.Hierarchy()

	inScope := make(map[string]bool)
	processed := make(map[string]bool)
	frontier := append([]string(nil), goal...)
	for len(frontier) > 0 {
		n := len(frontier) - 1
		id := frontier[n]
		frontier = frontier[:n]
		if known.Has(id) || processed[id] {
			continue
		}
		processed[id] = true

		for _, u := range c.Teachers(id) {
			if inScope[u.ID] {
				continue
			}
			inScope[u.ID] = true
			frontier = append(frontier, u.RequiredSkills()...)
		}
		frontier = append(frontier, h.Children(id)...)
	}

	var res Result
	skills := make(map[string]bool)
	mention := func(ids ...string) {
		for _, id := range ids {
			skills[id] = true
		}
	}
	mention(goal...)
	for _, u := range c.Units() {
		if !inScope[u.ID] {
			continue
		}
		res.Units = append(res.Units, u.ID)
		mention(u.RequiredSkills()...)
		mention(u.Teaches...)
		mention(u.SuggestedSkills()...)
	}

	direct := make([]string, 0, len(skills))
	for id := range skills {
		direct = append(direct, id)
	}
	for _, id := range direct {
		mention(h.Ancestors(id)...)
		mention(h.Descendants(id)...)
	}

	res.Skills = make([]string, 0, len(skills))
	for id := range skills {
		res.Skills = append(res.Skills, id)
	}
	sort.Strings(res.Skills)
	return res
}

// Reduce returns the catalog restricted to the scope of goal.
func Reduce(goal []string, c *catalog.Catalog, known skill.State) *catalog.Catalog {
	r := Filter(goal, c, known)
	return c.Restrict(r.Units, r.Skills)
}

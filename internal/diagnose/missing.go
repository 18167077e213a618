package diagnose

import (
	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/graph"
	"github.com/papapumpkin/syllabus/internal/skill"
)

// Missing is the result of a missing-skill trace.
type Missing struct {
	// Skill is the skill no unit teaches and no related skill supplies.
	Skill string `json:"skill"`
	// Trace lists the skills and units visited from the goal down to Skill.
	Trace []graph.Ref `json:"trace"`
}

// MissingSkill traces backward from each goal skill through teaching
// units, their requirements and the skill hierarchy. A skill is
// obtainable when it is known, when one of its teaching units has
// obtainable requirements, when all of its nested skills are obtainable,
// or when a skill containing it is obtainable. MissingSkill reports the
// first skill on the trace that is not obtainable and has nothing deeper
// to blame; ok is false when every goal skill is obtainable.
func MissingSkill(c *catalog.Catalog, goal []string, known skill.State) (Missing, bool) {
	a := &analysis{
		c:        c,
		h:        c.Hierarchy(),
		known:    known,
		visiting: make(map[string]bool),
		ok:       make(map[string]bool),
		failed:   make(map[string]*Missing),
	}
	for _, id := range goal {
		if ok, miss := a.resolve(id, nil); !ok {
			if miss == nil {
				miss = &Missing{Skill: id, Trace: []graph.Ref{graph.SkillRef(id)}}
			}
			return *miss, true
		}
	}
	return Missing{}, false
}

// analysis memoises obtainability per skill during one trace.
type analysis struct {
	c        *catalog.Catalog
	h        *skill.Hierarchy
	known    skill.State
	visiting map[string]bool
	ok       map[string]bool
	failed   map[string]*Missing
	// cyclic is set when a resolution ran into a skill still being
	// resolved; failures found meanwhile depend on the route and are not
	// memoised.
	cyclic bool
}

// resolve reports whether id is obtainable. When it is not, miss names
// the skill to blame, or is nil when the only obstacle is a cycle.
func (a *analysis) resolve(id string, trace []graph.Ref) (bool, *Missing) {
	if a.known.Has(id) || a.ok[id] {
		return true, nil
	}
	if miss, seen := a.failed[id]; seen {
		return false, miss
	}
	if a.visiting[id] {
		a.cyclic = true
		return false, nil
	}

	trace = append(append([]graph.Ref(nil), trace...), graph.SkillRef(id))
	a.visiting[id] = true
	defer delete(a.visiting, id)

	outerCyclic := a.cyclic
	a.cyclic = false
	ok, miss := a.try(id, trace)
	switch {
	case ok:
		a.ok[id] = true
	case !a.cyclic:
		a.failed[id] = miss
	}
	a.cyclic = a.cyclic || outerCyclic
	return ok, miss
}

// try checks the routes to id in order: teachers, nested skills, then
// containing skills.
func (a *analysis) try(id string, trace []graph.Ref) (bool, *Missing) {
	var blame *Missing

	teachers := a.c.Teachers(id)
	for _, u := range teachers {
		t := &tracer{a: a, trace: append(append([]graph.Ref(nil), trace...), graph.UnitRef(u.ID))}
		if u.Requirements().Evaluate(t, a.h, nil) {
			return true, nil
		}
		if blame == nil {
			blame = t.miss
		}
	}

	if children := a.h.Children(id); len(children) > 0 {
		all := true
		for _, child := range children {
			ok, miss := a.resolve(child, trace)
			if ok {
				continue
			}
			all = false
			if blame == nil && len(teachers) == 0 {
				blame = miss
			}
			break
		}
		if all {
			return true, nil
		}
	}

	for _, parent := range a.h.Parents(id) {
		if ok, _ := a.resolve(parent, trace); ok {
			return true, nil
		}
	}

	if blame == nil && len(teachers) == 0 && len(a.h.Children(id)) == 0 {
		blame = &Missing{Skill: id, Trace: trace}
	}
	return false, blame
}

// tracer adapts analysis to expr.Known so requirement expressions (with
// their And/Or/NOf structure) decide which skills must be obtainable.
type tracer struct {
	a     *analysis
	trace []graph.Ref
	miss  *Missing
}

// Has resolves id and records the first miss seen.
func (t *tracer) Has(id string) bool {
	ok, miss := t.a.resolve(id, t.trace)
	if !ok && t.miss == nil {
		t.miss = miss
	}
	return ok
}

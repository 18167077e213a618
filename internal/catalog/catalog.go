// Package catalog holds the skills and learning units a planning call works
// over, and loads them from catalog files.
//
// A Catalog is a flat table keyed by id: skills, units and every relation
// between them are id references, never embedded values. Catalogs are
// read-only after construction and safe to share between goroutines.
package catalog

import (
	"fmt"
	"sort"

	"github.com/papapumpkin/syllabus/internal/skill"
)

// Catalog indexes skills and units for planning.
type Catalog struct {
	skills    []skill.Skill
	units     []Unit
	unitIndex map[string]int
	hierarchy *skill.Hierarchy
	// teachers maps skill id → indexes of units teaching it.
	teachers map[string][]int
}

// New builds a catalog. Units keep their given order, which is the order
// the planner considers them in. Duplicate skill or unit ids are rejected.
func New(skills []skill.Skill, units []Unit) (*Catalog, error) {
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: skill id", ErrMissingField)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: skill %q", ErrDuplicateID, s.ID)
		}
		seen[s.ID] = true
	}

	c := &Catalog{
		skills:    append([]skill.Skill(nil), skills...),
		units:     make([]Unit, 0, len(units)),
		unitIndex: make(map[string]int, len(units)),
		hierarchy: skill.NewHierarchy(skills),
		teachers:  make(map[string][]int),
	}
	for _, u := range units {
		if u.ID == "" {
			return nil, fmt.Errorf("%w: unit id", ErrMissingField)
		}
		if _, dup := c.unitIndex[u.ID]; dup {
			return nil, fmt.Errorf("%w: unit %q", ErrDuplicateID, u.ID)
		}
		c.unitIndex[u.ID] = len(c.units)
		c.units = append(c.units, u)
	}
	for i, u := range c.units {
		for _, id := range u.Teaches {
			c.teachers[id] = append(c.teachers[id], i)
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. Intended for tests.
func MustNew(skills []skill.Skill, units []Unit) *Catalog {
	c, err := New(skills, units)
	if err != nil {
		panic(err)
	}
	return c
}

// Hierarchy returns the skill hierarchy of the catalog.
func (c *Catalog) Hierarchy() *skill.Hierarchy {
	return c.hierarchy
}

// Skills returns all skills in catalog order. The slice must not be modified.
func (c *Catalog) Skills() []skill.Skill {
	return c.skills
}

// Units returns all units in catalog order. The slice must not be modified.
func (c *Catalog) Units() []Unit {
	return c.units
}

// Unit returns the unit with the given id.
func (c *Catalog) Unit(id string) (Unit, bool) {
	i, ok := c.unitIndex[id]
	if !ok {
		return Unit{}, false
	}
	return c.units[i], true
}

// Skill returns the skill with the given id.
func (c *Catalog) Skill(id string) (skill.Skill, bool) {
	return c.hierarchy.Skill(id)
}

// Teachers returns the units teaching the skill, in catalog order.
func (c *Catalog) Teachers(skillID string) []Unit {
	idx := c.teachers[skillID]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Unit, len(idx))
	for i, j := range idx {
		out[i] = c.units[j]
	}
	return out
}

// Filter returns a catalog with the same skills and only the units keep
// accepts.
func (c *Catalog) Filter(keep func(Unit) bool) *Catalog {
	units := make([]Unit, 0, len(c.units))
	for _, u := range c.units {
		if keep(u) {
			units = append(units, u)
		}
	}
	// Ids were unique in c, so New cannot fail.
	return MustNew(c.skills, units)
}

// Restrict returns a catalog holding only the named units and skills.
// Unknown ids are ignored; catalog order is preserved.
func (c *Catalog) Restrict(unitIDs, skillIDs []string) *Catalog {
	keepUnit := toSet(unitIDs)
	keepSkill := toSet(skillIDs)

	skills := make([]skill.Skill, 0, len(skillIDs))
	for _, s := range c.skills {
		if keepSkill[s.ID] {
			skills = append(skills, s)
		}
	}
	units := make([]Unit, 0, len(unitIDs))
	for _, u := range c.units {
		if keepUnit[u.ID] {
			units = append(units, u)
		}
	}
	return MustNew(skills, units)
}

// SkillIDs returns all skill ids, sorted.
func (c *Catalog) SkillIDs() []string {
	return c.hierarchy.IDs()
}

// UnitIDs returns all unit ids in catalog order.
func (c *Catalog) UnitIDs() []string {
	ids := make([]string, len(c.units))
	for i, u := range c.units {
		ids[i] = u.ID
	}
	return ids
}

// Referenced returns every skill id mentioned by any unit (required,
// taught or suggested) or by any skill's nested list, sorted.
func (c *Catalog) Referenced() []string {
	seen := make(map[string]bool)
	for _, s := range c.skills {
		for _, id := range s.NestedSkillIDs {
			seen[id] = true
		}
	}
	for _, u := range c.units {
		for _, id := range u.RequiredSkills() {
			seen[id] = true
		}
		for _, id := range u.Teaches {
			seen[id] = true
		}
		for _, id := range u.SuggestedSkills() {
			seen[id] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

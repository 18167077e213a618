package planner

import (
	"math"
	"sort"
	"strings"
)

// Step is one applied unit of a Path. Sub holds the resolved
// sub-curriculum when the unit is a composite.
type Step struct {
	Unit string  `json:"unit"`
	Cost float64 `json:"cost"`
	Sub  *Path   `json:"sub,omitempty"`
}

// Path is an ordered sequence of units turning the starting knowledge
// into one that fulfills the goal. Paths are never modified after Plan
// returns them.
type Path struct {
	Steps []Step  `json:"steps"`
	Cost  float64 `json:"cost"`
}

// Units returns the top-level unit ids in order.
func (p *Path) Units() []string {
	ids := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		ids[i] = s.Unit
	}
	return ids
}

// Len returns the number of top-level steps.
func (p *Path) Len() int {
	return len(p.Steps)
}

// String renders the unit sequence, nesting composite resolutions in
// brackets: "lu1 -> course[lu2 -> lu3]".
func (p *Path) String() string {
	parts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		parts[i] = s.Unit
		if s.Sub != nil {
			parts[i] += "[" + s.Sub.String() + "]"
		}
	}
	return strings.Join(parts, " -> ")
}

// sequenceKey identifies a path by its unit sequence.
func (p *Path) sequenceKey() string {
	return strings.Join(p.Units(), "\x00")
}

// round2 rounds to two decimals.
func round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}

// sortPaths orders paths by cost, then lexicographically by unit sequence.
func sortPaths(paths []Path) {
	sort.SliceStable(paths, func(i, j int) bool {
		if paths[i].Cost != paths[j].Cost {
			return paths[i].Cost < paths[j].Cost
		}
		a, b := paths[i].Units(), paths[j].Units()
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}

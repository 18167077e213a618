package planner

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/expr"
	"github.com/papapumpkin/syllabus/internal/heuristic"
	"github.com/papapumpkin/syllabus/internal/logger"
	"github.com/papapumpkin/syllabus/internal/scope"
	"github.com/papapumpkin/syllabus/internal/skill"
	"github.com/papapumpkin/syllabus/internal/telemetry"
)

// search is the state of one Plan call, shared by every recursion level.
type search struct {
	p     *Planner
	ctx   context.Context
	runID string
	log   *logger.Logger
	h     *skill.Hierarchy

	expansions int
	// memo caches composite resolutions by unit, state and exclusions.
	// A nil entry records an unresolvable composite.
	memo map[string]*Path
}

// level is one search over a scoped catalog toward one goal.
type level struct {
	goal   []string
	want   int
	units  []catalog.Unit
	dm     *heuristic.Map
	excl   exclusion
	depth  int
	open   *openList
	closed map[string]bool
}

// run searches for up to want distinct paths from known to goal, using
// only units outside excl that admit accepts (nil admits all).
func (s *search) run(goal []string, known skill.State, excl exclusion, depth, want int, admit func(catalog.Unit) bool) ([]Path, error) {
	scoped := scope.Reduce(goal, s.p.catalog, known).Filter(func(u catalog.Unit) bool {
		return !excl.has(u.ID) && (admit == nil || admit(u))
	})
	lv := &level{
		goal:   goal,
		want:   want,
		units:  scoped.Units(),
		dm:     heuristic.Build(scoped, s.p.cost, heuristic.WithUnreachable(s.p.unreachable)),
		excl:   excl,
		depth:  depth,
		open:   newOpenList(),
		closed: make(map[string]bool),
	}
	lv.open.add(&node{state: known})

	var paths []Path
	seen := make(map[string]bool)
	for len(paths) < want {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}
		n := lv.open.pop()
		if n == nil && len(paths) > 0 {
			// Without a first path there are no alternatives to revive.
			n = lv.open.popExtra()
		}
		if n == nil {
			break
		}

		if n.state.Fulfills(goal) {
			path := buildPath(n)
			key := path.sequenceKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			paths = append(paths, path)
			if depth == 0 {
				s.p.emitter.Record(telemetry.KindPathFound, s.runID, "", map[string]any{
					"units": path.Units(),
					"cost":  path.Cost,
				})
			}
			continue
		}

		key := n.state.Key()
		if lv.closed[key] && !n.alt {
			continue
		}
		lv.closed[key] = true

		if s.p.maxExpansions > 0 && s.expansions >= s.p.maxExpansions {
			sortPaths(paths)
			return paths, ErrExpansionLimit
		}
		s.expansions++
		if err := s.expand(lv, n); err != nil {
			sortPaths(paths)
			return paths, err
		}
	}
	sortPaths(paths)
	return paths, nil
}

// expand pushes a child node for every eligible unit of the level.
func (s *search) expand(lv *level, n *node) error {
	open := n.state.Missing(lv.goal)
	for _, u := range lv.units {
		if !teachesUnknown(u, n.state) || !s.eligible(u, n.state) {
			continue
		}

		var child *node
		if u.IsComposite() {
			var err error
			if child, err = s.compositeChild(lv, n, u); err != nil {
				return err
			}
		} else {
			child = s.plainChild(n, u)
		}
		if child == nil || math.IsInf(child.g, 1) {
			continue
		}

		est := s.estimate(lv.dm, u, open)
		if math.IsInf(est, 1) {
			continue
		}
		child.f = child.g + est
		child.alt = n.alt

		switch {
		case !lv.closed[child.state.Key()] || child.alt:
			lv.open.add(child)
		case lv.want > 1:
			// Kept for alternative paths through an already expanded state.
			lv.open.stash(child)
		}
	}
	return nil
}

// eligible reports whether u's requirements hold in st. A composite must
// not rely on the skills it teaches itself.
func (s *search) eligible(u catalog.Unit, st skill.State) bool {
	var without []expr.Expr
	if u.IsComposite() {
		without = []expr.Expr{expr.AllOf(u.Teaches...)}
	}
	return u.Requirements().Evaluate(st, s.h, without)
}

func teachesUnknown(u catalog.Unit, st skill.State) bool {
	for _, id := range u.Teaches {
		if !st.Has(id) {
			return true
		}
	}
	return false
}

// plainChild applies a plain unit, or returns nil when its cost forbids it.
func (s *search) plainChild(n *node, u catalog.Unit) *node {
	c := s.p.cost(u)
	if !(c >= 0) || math.IsInf(c, 1) {
		return nil
	}
	pen := s.p.penalties
	if contextSwitch(n, u) {
		c *= pen.ContextSwitch
	}
	if w := unknownSuggestions(u, n.state); w > 0 {
		c *= 1 + pen.SuggestionViolation*w
	}
	return &node{
		state:  n.state.Derive(s.h, u.Teaches...),
		parent: n,
		unit:   u.ID,
		taught: u.Teaches,
		step:   c,
		g:      n.g + c,
	}
}

// compositeChild resolves a composite by planning its teaching goals with
// the composite excluded. It returns nil when no resolution exists.
func (s *search) compositeChild(lv *level, n *node, u catalog.Unit) (*node, error) {
	if c := s.p.cost(u); !(c >= 0) || math.IsInf(c, 1) {
		return nil, nil
	}
	if lv.depth >= s.p.maxDepth {
		s.log.Debug("composite too deep", "unit", u.ID, "depth", lv.depth)
		return nil, nil
	}
	sub, err := s.resolve(u, n.state, lv.excl.with(u.ID), lv.depth+1)
	if err != nil || sub == nil {
		return nil, err
	}

	c := sub.Cost * s.p.penalties.CompositeReimbursement
	taught := append(append([]string(nil), u.Teaches...), s.taughtBy(sub)...)
	return &node{
		state:  n.state.Derive(s.h, taught...),
		parent: n,
		unit:   u.ID,
		taught: taught,
		sub:    sub,
		step:   c,
		g:      n.g + c,
	}, nil
}

// resolve plans the cheapest sub-path for composite u from st. Results,
// including failures, are memoised per search.
func (s *search) resolve(u catalog.Unit, st skill.State, excl exclusion, depth int) (*Path, error) {
	key := u.ID + "\x00" + st.Key() + "\x00" + excl.key()
	if sub, ok := s.memo[key]; ok {
		return sub, nil
	}

	admit := func(c catalog.Unit) bool { return u.Admits(c, s.h) }
	paths, err := s.run(u.Teaches, st, excl, depth, 1, admit)
	if err != nil {
		return nil, err
	}

	var sub *Path
	if len(paths) > 0 {
		sub = &paths[0]
		s.p.emitter.Record(telemetry.KindCompositeResolved, s.runID, u.ID, map[string]any{
			"depth": depth,
			"units": sub.Units(),
			"cost":  sub.Cost,
		})
		s.log.Debug("composite resolved", "unit", u.ID, "depth", depth, "cost", sub.Cost)
	} else {
		s.p.emitter.Record(telemetry.KindCompositeUnresolved, s.runID, u.ID, map[string]any{"depth": depth})
		s.log.Debug("composite unresolved", "unit", u.ID, "depth", depth)
	}
	s.memo[key] = sub
	return sub, nil
}

// estimate is the heuristic for a child reached through u while the
// goals in open were still unknown.
func (s *search) estimate(dm *heuristic.Map, u catalog.Unit, open []string) float64 {
	if len(open) == 0 {
		return 0
	}
	d := dm.Distances(u.ID, open)
	if math.IsInf(d, 1) {
		return d
	}
	return math.Max(0, d-s.p.cost(u))
}

// taughtBy collects the skills taught by every unit of p, nested
// resolutions included.
func (s *search) taughtBy(p *Path) []string {
	var ids []string
	for _, st := range p.Steps {
		if u, ok := s.p.catalog.Unit(st.Unit); ok {
			ids = append(ids, u.Teaches...)
		}
		if st.Sub != nil {
			ids = append(ids, s.taughtBy(st.Sub)...)
		}
	}
	return ids
}

// contextSwitch reports whether u changes topic: it has requirements, a
// previous unit exists, and that unit taught none of them.
func contextSwitch(n *node, u catalog.Unit) bool {
	req := u.RequiredSkills()
	if len(req) == 0 || n.parent == nil {
		return false
	}
	for _, id := range req {
		for _, t := range n.taught {
			if t == id {
				return false
			}
		}
	}
	return true
}

// unknownSuggestions sums the weights of u's suggested skills not yet
// known in st.
func unknownSuggestions(u catalog.Unit, st skill.State) float64 {
	var w float64
	for _, sg := range u.Suggested {
		if !st.Has(sg.SkillID) {
			w += sg.Weight
		}
	}
	return w
}

// buildPath walks from a goal node back to the root.
func buildPath(n *node) Path {
	var steps []Step
	for cur := n; cur.parent != nil; cur = cur.parent {
		steps = append(steps, Step{Unit: cur.unit, Cost: round2(cur.step), Sub: cur.sub})
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	if steps == nil {
		steps = []Step{}
	}
	return Path{Steps: steps, Cost: round2(n.g)}
}

// exclusion is a sorted set of unit ids barred from a search level.
type exclusion []string

func newExclusion(ids ...string) exclusion {
	var e exclusion
	for _, id := range ids {
		e = e.with(id)
	}
	return e
}

func (e exclusion) has(id string) bool {
	i := sort.SearchStrings(e, id)
	return i < len(e) && e[i] == id
}

// with returns a copy of e that also holds id.
func (e exclusion) with(id string) exclusion {
	if id == "" || e.has(id) {
		return e
	}
	out := make(exclusion, 0, len(e)+1)
	out = append(out, e...)
	out = append(out, id)
	sort.Strings(out)
	return out
}

func (e exclusion) key() string {
	return strings.Join(e, "\x00")
}

package skill

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// State is a closed, immutable set of known skill ids. States are always
// built through NewState or Derive so the closure invariant holds: a group
// is known exactly when all of its nested skills are known.
type State struct {
	ids []string
	set map[string]struct{}
	key string
}

// NewState returns the closure of ids under h.
func NewState(h *Hierarchy, ids ...string) State {
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			known[id] = struct{}{}
		}
	}
	applyClosure(h, known)
	return fromSet(known)
}

// Derive returns a new state holding s plus taught, closed under h. The
// receiver is left unchanged.
func (s State) Derive(h *Hierarchy, taught ...string) State {
	known := make(map[string]struct{}, len(s.set)+len(taught))
	for id := range s.set {
		known[id] = struct{}{}
	}
	for _, id := range taught {
		if id != "" {
			known[id] = struct{}{}
		}
	}
	applyClosure(h, known)
	return fromSet(known)
}

// Has reports whether id is known in s.
func (s State) Has(id string) bool {
	_, ok := s.set[id]
	return ok
}

// Fulfills reports whether every goal skill is known in s.
func (s State) Fulfills(goal []string) bool {
	for _, id := range goal {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Missing returns the goal skills not yet known in s, in goal order.
func (s State) Missing(goal []string) []string {
	var open []string
	for _, id := range goal {
		if !s.Has(id) {
			open = append(open, id)
		}
	}
	return open
}

// IDs returns the known skill ids, sorted. The returned slice must not be
// modified.
func (s State) IDs() []string {
	return s.ids
}

// Len returns the number of known skills.
func (s State) Len() int {
	return len(s.ids)
}

// Key is the structural identity of the state: two states are equal iff
// their keys are equal.
func (s State) Key() string {
	return s.key
}

// Equal reports whether s and o hold the same closed skill set.
func (s State) Equal(o State) bool {
	return s.key == o.key
}

// fromSet freezes a closed set into a State.
func fromSet(known map[string]struct{}) State {
	ids := make([]string, 0, len(known))
	for id := range known {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sum := sha256.New()
	for _, id := range ids {
		sum.Write([]byte(id))
		sum.Write([]byte{0})
	}
	return State{
		ids: ids,
		set: known,
		key: hex.EncodeToString(sum.Sum(nil)[:16]),
	}
}

// applyClosure applies the two closure rules to known until nothing changes:
// a group whose nested skills are all known becomes known, and every
// nested skill of a known group becomes known. Each id enters the worklist
// at most once, so the loop terminates even on a cyclic hierarchy.
func applyClosure(h *Hierarchy, known map[string]struct{}) {
	queue := make([]string, 0, len(known))
	for id := range known {
		queue = append(queue, id)
	}
	add := func(id string) {
		if _, ok := known[id]; ok {
			return
		}
		known[id] = struct{}{}
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		for _, child := range h.children[id] {
			add(child)
		}
		for _, parent := range h.parents[id] {
			if _, ok := known[parent]; ok {
				continue
			}
			if allKnown(h.children[parent], known) {
				add(parent)
			}
		}
	}
}

func allKnown(ids []string, known map[string]struct{}) bool {
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return false
		}
	}
	return true
}

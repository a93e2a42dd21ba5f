// Package dsr holds the user-supplied domain-specific rewrites for a
// given operator alphabet, kept as a population distinct from the
// library rewrites produced by anti-unification (spec.md's two
// separate rewrite populations, §3): a DSR asserts a semantic equality
// the caller already knows to hold, rather than one discovered by
// generalizing over an existing corpus.
package dsr

import (
	"beamlearn/ast"
	"beamlearn/egraph"
)

// Rewrite is a named domain-specific rewrite: a distinct type from
// egraph.Rewrite only to keep the two rewrite populations from being
// accidentally interchanged at call sites, even though the underlying
// shape (searcher/applier pattern pair, optional side condition) is
// identical.
type Rewrite[O ast.Op] egraph.Rewrite[O]

// Set is an ordered, named collection of DSRs for one operator
// alphabet.
type Set[O ast.Op] struct {
	rewrites []Rewrite[O]
	byName   map[string]int
}

// NewSet builds a Set from the given rewrites via Add, so a repeated
// name keeps only its last rewrite and a later lookup by name is
// unambiguous.
func NewSet[O ast.Op](rewrites ...Rewrite[O]) Set[O] {
	s := Set[O]{byName: make(map[string]int, len(rewrites))}
	for _, r := range rewrites {
		s.Add(r)
	}
	return s
}

// Add appends r to the set. If a rewrite with the same name already
// exists, it is replaced in place (last registration wins) rather than
// duplicated.
func (s *Set[O]) Add(r Rewrite[O]) {
	if s.byName == nil {
		s.byName = make(map[string]int)
	}
	if i, ok := s.byName[r.Name]; ok {
		s.rewrites[i] = r
		return
	}
	s.byName[r.Name] = len(s.rewrites)
	s.rewrites = append(s.rewrites, r)
}

// Len reports how many rewrites are registered.
func (s Set[O]) Len() int { return len(s.rewrites) }

// Lookup returns the rewrite registered under name, if any.
func (s Set[O]) Lookup(name string) (Rewrite[O], bool) {
	i, ok := s.byName[name]
	if !ok {
		return Rewrite[O]{}, false
	}
	return s.rewrites[i], true
}

// Rewrites returns the set's contents as egraph.Rewrite values, ready
// to pass to egraph.Saturate.
func (s Set[O]) Rewrites() []egraph.Rewrite[O] {
	out := make([]egraph.Rewrite[O], len(s.rewrites))
	for i, r := range s.rewrites {
		out[i] = egraph.Rewrite[O](r)
	}
	return out
}

// Saturate runs every rewrite in s against g to a fixpoint (or until a
// resource limit trips), exactly the DSR-saturation step of a round
// (spec.md §4.4 step 3).
func Saturate[O ast.Op](g *egraph.Graph[O], s Set[O], limits egraph.Limits) egraph.StopReason {
	return egraph.Saturate(g, s.Rewrites(), limits)
}

// Rule builds a DSR from a bare name/searcher/applier triple, with no
// side condition — the common case for a semantic equality that always
// holds regardless of what matched.
func Rule[O ast.Op](name string, search, apply egraph.Pattern[O]) Rewrite[O] {
	return Rewrite[O]{Name: name, Search: search, Apply: apply}
}

// ConditionalRule builds a DSR gated by a side condition evaluated
// against the matched e-class and substitution.
func ConditionalRule[O ast.Op](name string, search, apply egraph.Pattern[O], didFire func(g *egraph.Graph[O], matched ast.ClassID, subst egraph.Subst) bool) Rewrite[O] {
	return Rewrite[O]{Name: name, Search: search, Apply: apply, DidFire: didFire}
}

package egraph

import (
	"time"

	"beamlearn/ast"
)

// StopReason names why Saturate stopped.
type StopReason int

const (
	StopSaturated StopReason = iota
	StopIterationLimit
	StopTimeLimit
	StopNodeLimit
	StopOther
)

func (r StopReason) String() string {
	switch r {
	case StopSaturated:
		return "Saturated"
	case StopIterationLimit:
		return "IterationLimit"
	case StopTimeLimit:
		return "TimeLimit"
	case StopNodeLimit:
		return "NodeLimit"
	default:
		return "Other"
	}
}

// Limits bounds a single Saturate call.
type Limits struct {
	IterLimit int // 0 means unbounded
	NodeLimit int // 0 means unbounded
	TimeLimit time.Duration
}

// matchRecord pairs a rule with one of its matches, gathered before any
// union is applied this iteration so rewrite application order within
// an iteration never affects which matches fire (standard equality
// saturation discipline).
type matchRecord[O ast.Op] struct {
	rule    *Rewrite[O]
	matched ast.ClassID
	subst   Subst
}

// Saturate runs rules to fixpoint (or to a limit), matching every rule
// against every live e-class each iteration, applying all matches
// found, rebuilding, and stopping when an iteration produces no new
// union (Saturated) or a limit is hit.
func Saturate[O ast.Op](g *Graph[O], rules []Rewrite[O], limits Limits) StopReason {
	start := time.Now()

	for iter := 0; ; iter++ {
		if limits.IterLimit > 0 && iter >= limits.IterLimit {
			return StopIterationLimit
		}
		if limits.TimeLimit > 0 && time.Since(start) > limits.TimeLimit {
			return StopTimeLimit
		}
		if limits.NodeLimit > 0 && g.NumNodes() > limits.NodeLimit {
			return StopNodeLimit
		}

		var matches []matchRecord[O]
		for _, id := range g.ClassIDs() {
			for i := range rules {
				rule := &rules[i]
				for _, subst := range Match(g, rule.Search, id) {
					if rule.DidFire != nil && !rule.DidFire(g, id, subst) {
						continue
					}
					matches = append(matches, matchRecord[O]{rule: rule, matched: id, subst: subst})
				}
			}
		}

		if len(matches) == 0 {
			return StopSaturated
		}

		anyUnion := false
		for _, m := range matches {
			applied := Instantiate(g, m.rule.Apply, m.subst)
			if g.Union(m.matched, applied) {
				anyUnion = true
			}
		}
		g.Rebuild()

		if !anyUnion {
			return StopSaturated
		}
	}
}

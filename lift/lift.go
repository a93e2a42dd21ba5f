// Package lift implements the confluent set of library-hoisting
// rewrites that float a freshly learned "lib" binding as far toward
// the root of an expression as it can soundly go: out of a lambda, out
// of a let or another lib that encloses it on either side, and out of
// any combinator (if/cons/apply/list) that has it as one child among
// several. Every hoist is gated by a capture-freshness side condition
// computed from egraph.FreeVars, so a lift only fires when it cannot
// change which binder an identifier or de Bruijn index resolves to.
package lift

import (
	"fmt"

	"beamlearn/ast"
	"beamlearn/egraph"
)

// DefaultIterLimit bounds how many saturation rounds the lift rule set
// is run for: lifting strictly decreases nesting depth on each firing,
// so it always reaches a fixpoint quickly, but a cap keeps a malformed
// rule set from looping forever.
const DefaultIterLimit = 30

// DefaultMaxListArity bounds how many per-position hoist rules are
// generated for the variadic list combinator, since Pattern has no
// notion of a variadic match.
const DefaultMaxListArity = 8

type Config struct {
	IterLimit    int
	MaxListArity int
}

func DefaultConfig() Config {
	return Config{IterLimit: DefaultIterLimit, MaxListArity: DefaultMaxListArity}
}

// Rules builds the fixed lib-lifting rewrite set for operator alphabet
// O: the lambda/let/lib commuting rules, plus a bounded family of
// per-arity, per-position hoist rules for each combinator operator
// supplied (e.g. if/cons/apply/list).
func Rules[O ast.Op](teach ast.Teachable[O], combinators []O, maxListArity int) []egraph.Rewrite[O] {
	out := []egraph.Rewrite[O]{
		lambdaRule(teach),
		bothRule(teach, teach.MakeLet(), "lift-let-both"),
		bodyRule(teach, teach.MakeLet(), "lift-let-body"),
		bindingRule(teach, teach.MakeLet(), "lift-let-binding"),
		bothRule(teach, teach.MakeLib(), "lift-lib-both"),
		bodyRule(teach, teach.MakeLib(), "lift-lib-body"),
		bindingRule(teach, teach.MakeLib(), "lift-lib-binding"),
	}
	for _, op := range combinators {
		out = append(out, combinatorRules(teach, op, maxListArity)...)
	}
	return out
}

// Saturate runs the lib-lifting rule set to a fixpoint (or until
// cfg.IterLimit rounds have passed).
func Saturate[O ast.Op](g *egraph.Graph[O], teach ast.Teachable[O], combinators []O, cfg Config) egraph.StopReason {
	rules := Rules(teach, combinators, cfg.MaxListArity)
	return egraph.Saturate(g, rules, egraph.Limits{IterLimit: cfg.IterLimit})
}

// lambdaRule hoists a lib bound directly under a lambda's body out
// above the lambda: "(lambda (lib x v e))" => "(lib x v (lambda e))".
// Sound only when v does not refer to the lambda's own parameter (de
// Bruijn index 0) — otherwise lifting v out of the lambda's scope
// would leave that reference dangling.
func lambdaRule[O ast.Op](teach ast.Teachable[O]) egraph.Rewrite[O] {
	x, v, e := egraph.PatternHole[O](0), egraph.PatternHole[O](1), egraph.PatternHole[O](2)
	lib := teach.MakeLib()
	search := egraph.PatternNode(teach.MakeLambda(), egraph.PatternNode(lib, x, v, e))
	apply := egraph.PatternNode(lib, x, v, egraph.PatternNode(teach.MakeLambda(), e))
	return egraph.Rewrite[O]{
		Name:   "lift-lambda",
		Search: search,
		Apply:  apply,
		DidFire: func(g *egraph.Graph[O], matched ast.ClassID, subst egraph.Subst) bool {
			return !g.FreeVars(subst[1]).Indices[0]
		},
	}
}

// bothRule hoists a lib appearing in BOTH of outer's two non-ident
// value/body slots, when they are the very same lib binding:
// "(outer x1 (lib x2 v2 v1) (lib x2 v2 e))" => "(lib x2 v2 (outer x1 v1 e))".
// Instantiated with outer = let, this is lift_let_both; with outer =
// lib, lift_lib_both.
func bothRule[O ast.Op](teach ast.Teachable[O], outer O, name string) egraph.Rewrite[O] {
	x1, v1, x2, v2, e := egraph.PatternHole[O](0), egraph.PatternHole[O](1), egraph.PatternHole[O](2), egraph.PatternHole[O](3), egraph.PatternHole[O](4)
	lib := teach.MakeLib()
	search := egraph.PatternNode(outer, x1, egraph.PatternNode(lib, x2, v2, v1), egraph.PatternNode(lib, x2, v2, e))
	apply := egraph.PatternNode(lib, x2, v2, egraph.PatternNode(outer, x1, v1, e))
	return egraph.Rewrite[O]{
		Name:   name,
		Search: search,
		Apply:  apply,
		DidFire: func(g *egraph.Graph[O], matched ast.ClassID, subst egraph.Subst) bool {
			return g.NotFreeIn(subst[3], subst[0])
		},
	}
}

// bodyRule hoists a lib that appears only in outer's body:
// "(outer x1 v1 (lib x2 v2 e))" => "(lib x2 v2 (outer x1 v1 e))".
func bodyRule[O ast.Op](teach ast.Teachable[O], outer O, name string) egraph.Rewrite[O] {
	x1, v1, x2, v2, e := egraph.PatternHole[O](0), egraph.PatternHole[O](1), egraph.PatternHole[O](2), egraph.PatternHole[O](3), egraph.PatternHole[O](4)
	lib := teach.MakeLib()
	search := egraph.PatternNode(outer, x1, v1, egraph.PatternNode(lib, x2, v2, e))
	apply := egraph.PatternNode(lib, x2, v2, egraph.PatternNode(outer, x1, v1, e))
	return egraph.Rewrite[O]{
		Name:   name,
		Search: search,
		Apply:  apply,
		DidFire: func(g *egraph.Graph[O], matched ast.ClassID, subst egraph.Subst) bool {
			return g.NotFreeIn(subst[1], subst[2]) && g.NotFreeIn(subst[3], subst[0])
		},
	}
}

// bindingRule hoists a lib that appears only in outer's bound value:
// "(outer x1 (lib x2 v2 v1) e)" => "(lib x2 v2 (outer x1 v1 e))".
func bindingRule[O ast.Op](teach ast.Teachable[O], outer O, name string) egraph.Rewrite[O] {
	x1, v1, x2, v2, e := egraph.PatternHole[O](0), egraph.PatternHole[O](1), egraph.PatternHole[O](2), egraph.PatternHole[O](3), egraph.PatternHole[O](4)
	lib := teach.MakeLib()
	search := egraph.PatternNode(outer, x1, egraph.PatternNode(lib, x2, v2, v1), e)
	apply := egraph.PatternNode(lib, x2, v2, egraph.PatternNode(outer, x1, v1, e))
	return egraph.Rewrite[O]{
		Name:   name,
		Search: search,
		Apply:  apply,
		DidFire: func(g *egraph.Graph[O], matched ast.ClassID, subst egraph.Subst) bool {
			return g.NotFreeIn(subst[4], subst[2])
		},
	}
}

// combinatorRules generates, for op's full supported arity range (a
// single fixed arity for a non-variadic operator, or 1..maxListArity
// for a variadic one), one hoist rule per child position.
func combinatorRules[O ast.Op](teach ast.Teachable[O], op O, maxListArity int) []egraph.Rewrite[O] {
	lo, hi := op.MinArity(), op.MaxArity()
	if hi < 0 {
		hi = maxListArity
	}
	if lo < 1 {
		lo = 1
	}
	var out []egraph.Rewrite[O]
	for arity := lo; arity <= hi; arity++ {
		for pos := 0; pos < arity; pos++ {
			out = append(out, combinatorHoistRule(teach, op, arity, pos))
		}
	}
	return out
}

// combinatorHoistRule hoists a lib bound at child pos of an arity-arity
// op node up above it: "(op s0 .. (lib x v e) .. sN)" => "(lib x v (op
// s0 .. e .. sN))". Sound only when x is not free in any sibling sI —
// otherwise widening x's scope to cover the whole op node would shadow
// an unrelated use of the same name in a sibling.
func combinatorHoistRule[O ast.Op](teach ast.Teachable[O], op O, arity, pos int) egraph.Rewrite[O] {
	x, v, e := egraph.PatternHole[O](0), egraph.PatternHole[O](1), egraph.PatternHole[O](2)
	searchChildren := make([]egraph.Pattern[O], arity)
	applyChildren := make([]egraph.Pattern[O], arity)
	var siblings []egraph.HoleID
	next := egraph.HoleID(3)
	for i := 0; i < arity; i++ {
		if i == pos {
			searchChildren[i] = egraph.PatternNode(teach.MakeLib(), x, v, e)
			applyChildren[i] = e
			continue
		}
		h := next
		next++
		siblings = append(siblings, h)
		hp := egraph.PatternHole[O](h)
		searchChildren[i] = hp
		applyChildren[i] = hp
	}
	search := egraph.PatternNode(op, searchChildren...)
	apply := egraph.PatternNode(teach.MakeLib(), x, v, egraph.PatternNode(op, applyChildren...))
	return egraph.Rewrite[O]{
		Name:   fmt.Sprintf("lift-%s-pos%d-of%d", op.String(), pos, arity),
		Search: search,
		Apply:  apply,
		DidFire: func(g *egraph.Graph[O], matched ast.ClassID, subst egraph.Subst) bool {
			for _, h := range siblings {
				if !g.NotFreeIn(subst[h], subst[0]) {
					return false
				}
			}
			return true
		},
	}
}

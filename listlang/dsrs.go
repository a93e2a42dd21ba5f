package listlang

import (
	"beamlearn/dsr"
	"beamlearn/egraph"
)

// StandardDSRs returns a handful of illustrative domain-specific
// rewrites over the list language's boolean conditional: constant
// folding the condition of an `if` once it is known to be `true` or
// `false`, and collapsing an `if` whose two branches are the same
// e-class to that branch. These are ordinary semantic equalities a caller already
// knows to hold, not discovered by anti-unification.
func StandardDSRs() dsr.Set[Op] {
	then, els := egraph.PatternHole[Op](0), egraph.PatternHole[Op](1)

	ifTrue := dsr.Rule[Op](
		"if-true",
		egraph.PatternNode(If(), egraph.PatternNode(Bool(true)), then, els),
		then,
	)
	ifFalse := dsr.Rule[Op](
		"if-false",
		egraph.PatternNode(If(), egraph.PatternNode(Bool(false)), then, els),
		els,
	)
	ifSameBranches := dsr.Rule[Op](
		"if-same-branches",
		egraph.PatternNode(If(), egraph.PatternHole[Op](2), then, then),
		then,
	)

	return dsr.NewSet[Op](ifTrue, ifFalse, ifSameBranches)
}

package costset

// Config bounds the beam search: BeamSize is the per-e-class frontier
// cap, InterBeamSize the larger bound applied between each step of a
// k-ary cross fold, and ExtraPOR enables the optional cross-sibling
// partial-order reduction (left as a conservative no-op extension, per
// spec.md §9).
type Config struct {
	BeamSize      int
	InterBeamSize int
	ExtraPOR      bool
}

// DefaultConfig matches the typical values named in spec.md §5.
func DefaultConfig() Config {
	return Config{BeamSize: 400, InterBeamSize: 400}
}

// Analysis is the PartialLibCost e-class analysis of spec.md §4.1. It is
// deliberately egraph-library-agnostic: it operates purely on CostSets
// supplied by the caller (the egraph package's dispatch), so it has no
// dependency on the e-graph's node/id representation.
type Analysis struct {
	cfg Config
}

// New constructs a PartialLibCost analysis with the given beam
// parameters.
func New(cfg Config) Analysis { return Analysis{cfg: cfg} }

// MakeLeaf computes the datum for an arity-0 node.
func (a Analysis) MakeLeaf() CostSet { return Make() }

// MakeUnary computes the datum for a unary node from its one child's
// CostSet.
func (a Analysis) MakeUnary(child CostSet) CostSet {
	out := child.Clone()
	out.IncCost()
	return out
}

// MakeNary computes the datum for a k-ary (k>=2) node by folding Cross
// left to right over the children's CostSets, pruning to InterBeamSize
// after each cross, then unifying and pruning to BeamSize, then
// incrementing cost once for the node itself.
func (a Analysis) MakeNary(children []CostSet) CostSet {
	cur := children[0]
	for _, c := range children[1:] {
		cur = Cross(cur, c)
		cur.Prune(a.cfg.InterBeamSize)
	}
	cur.Unify()
	cur.Prune(a.cfg.BeamSize)
	cur.IncCost()
	return cur
}

// MakeLib computes the datum for a Lib{ident, value, body} binding node:
// the body's CostSet gains the library (libID, value's best-bound
// cost), then is unified and pruned.
func (a Analysis) MakeLib(libID LibID, value, body CostSet) CostSet {
	out := body.AddLib(libID, value)
	out.Unify()
	out.Prune(a.cfg.BeamSize)
	return out
}

// Merge applies the e-class analysis merge contract: combine, unify,
// prune. It always reports both the "to" and "from" side changed, since
// a cheaper candidate from either side may newly dominate or be
// dominated after unification — consumers (the e-graph's worklist) must
// re-scan unconditionally.
func (a Analysis) Merge(to *CostSet, from CostSet) (toChanged, fromChanged bool) {
	to.Combine(from)
	to.Unify()
	to.Prune(a.cfg.BeamSize)
	return true, true
}

// Package antiunify discovers candidate library patterns by anti-unifying
// (computing the least general generalization of) pairs of e-nodes drawn
// from distinct e-classes of a saturated e-graph, and turns each
// admissible pattern into a library rewrite: matching the pattern
// extracts it into a fresh "lib" binding, de-Bruijn-abstracted over the
// positions that had to be generalized.
package antiunify

import (
	"strconv"
	"strings"

	"beamlearn/ast"
	"beamlearn/costset"
	"beamlearn/egraph"
)

// Config bounds pattern admissibility.
type Config struct {
	// MaxArity caps the number of holes an admissible pattern may use.
	MaxArity int
	// LearnConstants, if false, rejects patterns with zero holes (a
	// library with no parameters is only worth learning when constant
	// folding across call sites is itself the point).
	LearnConstants bool
}

// DefaultConfig matches the typical values named in spec.md §5.
func DefaultConfig() Config { return Config{MaxArity: 3, LearnConstants: true} }

type pairKey struct{ a, b ast.ClassID }

func canonPair(a, b ast.ClassID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// LearnedLibrary is the ordered, deduplicated collection of patterns
// discovered by one anti-unification pass, stable for the lifetime of
// one round: pattern i is library id i.
type LearnedLibrary[O ast.Op] struct {
	teach    ast.Teachable[O]
	cfg      Config
	patterns []egraph.Pattern[O]
	seen     map[string]bool
}

// Learn runs anti-unification over every pair of distinct, possibly
// co-occurring e-classes in g, returning the deduplicated library
// candidates it found. co prunes class pairs that can never appear
// together under a common ancestor, per spec.md §4.3.
func Learn[O ast.Op](g *egraph.Graph[O], teach ast.Teachable[O], co *egraph.CoOccurrence[O], cfg Config) *LearnedLibrary[O] {
	ll := &LearnedLibrary[O]{teach: teach, cfg: cfg, seen: make(map[string]bool)}

	ids := g.ClassIDs()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			c1, c2 := ids[i], ids[j]
			if !co.MayCooccur(c1, c2) {
				continue
			}
			for _, n1 := range g.Nodes(c1) {
				for _, n2 := range g.Nodes(c2) {
					if n1.Op != n2.Op || len(n1.Children) != len(n2.Children) {
						continue
					}
					cand, numHoles := ll.buildCandidate(g, n1, n2)
					ll.consider(cand, numHoles)
				}
			}
		}
	}
	return ll
}

// buildCandidate anti-unifies one matched node pair's children,
// memoizing by canonical (class, class) pair within this single
// candidate's recursion so shared substructure (e.g. a common argument
// appearing at several positions) terminates and is assigned one
// consistent hole.
func (ll *LearnedLibrary[O]) buildCandidate(g *egraph.Graph[O], n1, n2 ast.Node[O]) (egraph.Pattern[O], int) {
	holes := make(map[pairKey]egraph.HoleID)
	memo := make(map[pairKey]egraph.Pattern[O])
	numHoles := 0

	var au func(a, b ast.ClassID) egraph.Pattern[O]
	au = func(a, b ast.ClassID) egraph.Pattern[O] {
		a, b = g.Find(a), g.Find(b)
		key := canonPair(a, b)
		if p, ok := memo[key]; ok {
			return p
		}

		var result egraph.Pattern[O]
		if a == b {
			result = concretize(g, a, make(map[ast.ClassID]bool))
		} else if cn1, cn2, ok := firstCommonNodePair(g, a, b); ok {
			children := make([]egraph.Pattern[O], len(cn1.Children))
			for k := range cn1.Children {
				children[k] = au(cn1.Children[k], cn2.Children[k])
			}
			result = egraph.PatternNode(cn1.Op, children...)
		} else {
			hid, ok := holes[key]
			if !ok {
				hid = egraph.HoleID(numHoles)
				numHoles++
				holes[key] = hid
			}
			result = egraph.PatternHole[O](hid)
		}

		memo[key] = result
		return result
	}

	children := make([]egraph.Pattern[O], len(n1.Children))
	for k := range n1.Children {
		children[k] = au(n1.Children[k], n2.Children[k])
	}
	return egraph.PatternNode(n1.Op, children...), numHoles
}

// firstCommonNodePair deterministically picks the first pair of e-nodes
// from a and b sharing an operator and arity, used to keep the
// generalization of a position whose two classes differ reproducible.
func firstCommonNodePair[O ast.Op](g *egraph.Graph[O], a, b ast.ClassID) (ast.Node[O], ast.Node[O], bool) {
	for _, na := range g.Nodes(a) {
		for _, nb := range g.Nodes(b) {
			if na.Op == nb.Op && len(na.Children) == len(nb.Children) {
				return na, nb, true
			}
		}
	}
	var zero ast.Node[O]
	return zero, zero, false
}

// concretize builds a hole-free pattern reproducing one representative
// e-node tree out of class id (the case where two anti-unified children
// are already in the same e-class needs no generalization). visiting
// guards against recursing through a cyclic e-graph; a cycle falls back
// to a wildcard hole rather than looping forever.
func concretize[O ast.Op](g *egraph.Graph[O], id ast.ClassID, visiting map[ast.ClassID]bool) egraph.Pattern[O] {
	id = g.Find(id)
	nodes := g.Nodes(id)
	if len(nodes) == 0 || visiting[id] {
		return egraph.PatternHole[O](cycleHole)
	}

	visiting[id] = true
	defer delete(visiting, id)

	n := nodes[0]
	children := make([]egraph.Pattern[O], len(n.Children))
	for i, c := range n.Children {
		children[i] = concretize(g, c, visiting)
	}
	return egraph.PatternNode(n.Op, children...)
}

// cycleHole is a sentinel hole id for the (rare) cyclic-e-graph fallback
// in concretize; it never participates in the normal first-use
// numbering, so it never affects a candidate's reported hole count.
const cycleHole = egraph.HoleID(-1)

// consider applies admissibility (spec.md §4.2 step 3) and, if the
// candidate survives, dedup-by-structure (step 4) before recording it.
func (ll *LearnedLibrary[O]) consider(cand egraph.Pattern[O], numHoles int) {
	if numHoles == 0 && !ll.cfg.LearnConstants {
		return
	}
	if ll.cfg.MaxArity > 0 && numHoles > ll.cfg.MaxArity {
		return
	}

	key := patternKey(cand)
	if ll.seen[key] {
		return
	}
	ll.seen[key] = true
	ll.patterns = append(ll.patterns, cand)
}

// patternKey renders a candidate's structure (operators and hole
// positions) as a string. Because buildCandidate assigns hole ids
// deterministically in first-use pre-order, two candidates that are
// equal up to hole renaming are assigned identical ids by construction,
// so a direct structural key already implements the dedup spec.md §4.2
// step 4 calls for.
func patternKey[O ast.Op](p egraph.Pattern[O]) string {
	var sb strings.Builder
	writePatternKey(&sb, p)
	return sb.String()
}

func writePatternKey[O ast.Op](sb *strings.Builder, p egraph.Pattern[O]) {
	if p.IsHole {
		sb.WriteByte('?')
		sb.WriteString(strconv.Itoa(int(p.Hole)))
		return
	}
	sb.WriteString(p.Op.String())
	sb.WriteByte('(')
	for i, c := range p.Children {
		if i > 0 {
			sb.WriteByte(',')
		}
		writePatternKey(sb, c)
	}
	sb.WriteByte(')')
}

// Len reports how many distinct candidate patterns were learned.
func (ll *LearnedLibrary[O]) Len() int { return len(ll.patterns) }

// Pattern returns the searcher pattern for library id.
func (ll *LearnedLibrary[O]) Pattern(id costset.LibID) (egraph.Pattern[O], bool) {
	if int(id) < 0 || int(id) >= len(ll.patterns) {
		return egraph.Pattern[O]{}, false
	}
	return ll.patterns[int(id)], true
}

// Rewrites builds one library rewrite per learned pattern: the searcher
// is the pattern itself; the applier rebinds the matched positions into
// a fresh "lib" form per spec.md §4.2 step 5.
func (ll *LearnedLibrary[O]) Rewrites() []egraph.Rewrite[O] {
	out := make([]egraph.Rewrite[O], len(ll.patterns))
	for i, p := range ll.patterns {
		libID := costset.LibID(i)
		out[i] = egraph.Rewrite[O]{
			Name:   egraph.LibIdentName(libID),
			Search: p,
			Apply:  ll.applierFor(libID, p),
		}
	}
	return out
}

// applierFor builds
// (lib f_id (λ…λ pattern[Var(i)]) (apply …(apply f_id h_{n-1})… h_0))
// — a fresh lib binding whose value abstracts the generalized positions
// as de Bruijn-indexed lambdas, and whose body re-applies the bound
// name to the original (hole-matched) arguments, innermost lambda bound
// to hole 0 and outermost to hole n-1 (so applying arguments hole n-1
// down to hole 0, outermost application last, reconstructs the binding
// order exactly).
func (ll *LearnedLibrary[O]) applierFor(libID costset.LibID, p egraph.Pattern[O]) egraph.Pattern[O] {
	n := p.NumHoles()
	identName := egraph.LibIdentName(libID)

	value := renumberToVars(ll.teach, p)
	for i := 0; i < n; i++ {
		value = egraph.PatternNode[O](ll.teach.MakeLambda(), value)
	}

	applyChain := egraph.PatternNode[O](ll.teach.MakeIdent(identName))
	for k := n - 1; k >= 0; k-- {
		applyChain = egraph.PatternNode(ll.teach.MakeApply(), applyChain, egraph.PatternHole[O](egraph.HoleID(k)))
	}

	ident := egraph.PatternNode[O](ll.teach.MakeIdent(identName))
	return egraph.PatternNode(ll.teach.MakeLib(), ident, value, applyChain)
}

// renumberToVars replaces every hole in a searcher pattern with a
// concrete de Bruijn index node, producing the standalone, closed
// library body.
func renumberToVars[O ast.Op](teach ast.Teachable[O], p egraph.Pattern[O]) egraph.Pattern[O] {
	if p.IsHole {
		return egraph.PatternNode[O](teach.MakeIndex(int(p.Hole)))
	}
	children := make([]egraph.Pattern[O], len(p.Children))
	for i, c := range p.Children {
		children[i] = renumberToVars(teach, c)
	}
	return egraph.PatternNode(p.Op, children...)
}

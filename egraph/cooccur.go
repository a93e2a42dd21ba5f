package egraph

import (
	"github.com/bits-and-blooms/bitset"

	"beamlearn/ast"
)

// CoOccurrence answers MayCooccur(a, b): whether e-classes a and b can
// simultaneously appear in some expression reachable from a program
// root. It is built once per round (spec.md §4.3) and consulted only to
// prune anti-unification candidates; false positives are acceptable,
// false negatives are not, so the implementation over-approximates by
// forward reachability from the roots rather than tracking exact
// co-occurrence sets.
type CoOccurrence[O ast.Op] struct {
	// reachable[c] has bit i set iff e-class with index i (via idIndex)
	// is reachable from c by following child edges — i.e. could appear
	// as a descendant of some node in c.
	reachable map[ast.ClassID]*bitset.BitSet
	// siblings[c] has bit i set iff e-class i (or a class that reaches
	// it) was observed as a child of some node alongside c (or a class
	// that reaches c) under a common parent, in a different position.
	siblings map[ast.ClassID]*bitset.BitSet
	idIndex  map[ast.ClassID]uint
	ids      []ast.ClassID
}

// BuildCoOccurrence computes the co-occurrence predicate for g, given
// the root e-classes of every input program.
func BuildCoOccurrence[O ast.Op](g *Graph[O], roots []ast.ClassID) *CoOccurrence[O] {
	ids := g.ClassIDs()
	idIndex := make(map[ast.ClassID]uint, len(ids))
	for i, id := range ids {
		idIndex[id] = uint(i)
	}

	co := &CoOccurrence[O]{
		reachable: make(map[ast.ClassID]*bitset.BitSet, len(ids)),
		siblings:  make(map[ast.ClassID]*bitset.BitSet, len(ids)),
		idIndex:   idIndex,
		ids:       ids,
	}

	for _, id := range ids {
		co.reachable[id] = bitset.New(uint(len(ids)))
		co.siblings[id] = bitset.New(uint(len(ids)))
	}

	// Forward reachability closure: repeat until fixpoint, since a
	// class's reachable set must include every class reachable from any
	// of its own children's reachable sets.
	changed := true
	for changed {
		changed = false
		for _, id := range ids {
			own := co.reachable[id]
			for _, n := range g.Nodes(id) {
				for _, c := range n.Children {
					c = g.Find(c)
					if !own.Test(idIndex[c]) {
						own.Set(idIndex[c])
						changed = true
					}
					before := own.Count()
					own.InPlaceUnion(co.reachable[c])
					if own.Count() != before {
						changed = true
					}
				}
			}
		}
	}

	// Conflict analysis: two classes directly co-occur as siblings if
	// some node has them (or anything reachable from them) as children
	// in disjoint positions.
	for _, id := range ids {
		for _, n := range g.Nodes(id) {
			for i, ci := range n.Children {
				ci = g.Find(ci)
				for j, cj := range n.Children {
					if i == j {
						continue
					}
					cj = g.Find(cj)
					under := co.reachable[cj].Clone()
					under.Set(idIndex[cj])
					co.siblings[ci].InPlaceUnion(under)
					below := co.reachable[ci]
					for d, ok := below.NextSet(0); ok; d, ok = below.NextSet(d + 1) {
						co.siblings[ids[d]].InPlaceUnion(under)
					}
				}
			}
		}
	}

	// Unreachable roots are trivially not co-occurring with anything;
	// nothing further to do — MayCooccur already over-approximates via
	// reachable+siblings below.
	_ = roots

	return co
}

// MayCooccur reports whether e-classes a and b might simultaneously
// appear under some common ancestor reachable from a root. It
// over-approximates: true whenever a is reachable from b, b is
// reachable from a, or a and b (or classes reaching them) were ever
// observed as children of one node in different positions.
func (co *CoOccurrence[O]) MayCooccur(a, b ast.ClassID) bool {
	ia, okA := co.idIndex[a]
	ib, okB := co.idIndex[b]
	if !okA || !okB {
		return true // unknown classes: do not risk a false negative
	}
	if a == b {
		return true
	}
	if ra, ok := co.reachable[a]; ok && ra.Test(ib) {
		return true
	}
	if rb, ok := co.reachable[b]; ok && rb.Test(ia) {
		return true
	}
	if sa, ok := co.siblings[a]; ok && sa.Test(ib) {
		return true
	}
	if sb, ok := co.siblings[b]; ok && sb.Test(ia) {
		return true
	}
	return false
}

// Package costset implements the beam-search e-class analysis data:
// LibSel, the bounded Pareto frontier CostSet, and the PartialLibCost
// analysis that produces and merges it during e-graph saturation.
//
// This is a close adaptation of the partial (non-ILP) extractor's cost
// bookkeeping: every LibSel pairs a set of candidate library ids with
// the AST cost of using them, and CostSet keeps the beam_size best,
// dominance-reduced, ascending by full cost.
package costset

import "sort"

// LibID names a candidate library, assigned by anti-unification as the
// position of its defining pattern in the LearnedLibrary sequence.
type LibID int

// LibCost is one (library id, body cost) pair contributing to a LibSel's
// libs set.
type LibCost struct {
	ID   LibID
	Cost int
}

// LibSel is one point on the Pareto frontier of library choices for an
// e-class: the set of libraries it would use, the cost of the
// expression using them (not counting the library bodies), and the
// combined total.
type LibSel struct {
	// Libs is kept sorted by ID so two LibSels with the same library
	// set compare structurally equal and dominance checks are simple
	// ordered-merge subset tests.
	Libs     []LibCost
	ExprCost int
	FullCost int
}

// libsCost sums each distinct library's cost once.
func libsCost(libs []LibCost) int {
	total := 0
	for _, l := range libs {
		total += l.Cost
	}
	return total
}

// unionLibs merges two sorted-by-ID library lists, charging a shared
// library id's cost once.
func unionLibs(a, b []LibCost) []LibCost {
	out := make([]LibCost, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].ID < b[j].ID:
			out = append(out, a[i])
			i++
		case a[i].ID > b[j].ID:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// isSubsetLibs reports whether self is a subset of other; both
// must be sorted by ID.
func isSubsetLibs(self, other []LibCost) bool {
	i := 0
	for _, s := range self {
		for i < len(other) && other[i].ID < s.ID {
			i++
		}
		if i >= len(other) || other[i].ID != s.ID {
			return false
		}
	}
	return true
}

// IsSubset reports whether self dominates other: self's libs are a
// subset of other's, and self's expression is at least as cheap.
func (self LibSel) IsSubset(other LibSel) bool {
	return self.ExprCost <= other.ExprCost && isSubsetLibs(self.Libs, other.Libs)
}

// Combine unions two LibSels: the union of their library sets (each
// library's cost charged once) and the sum of their expression costs.
func (self LibSel) Combine(other LibSel) LibSel {
	libs := unionLibs(self.Libs, other.Libs)
	exprCost := self.ExprCost + other.ExprCost
	return LibSel{Libs: libs, ExprCost: exprCost, FullCost: exprCost + libsCost(libs)}
}

// AddLib returns self with (id, cost) inserted into its library set,
// deduplicated: re-adding the same library id does not double-charge.
func (self LibSel) AddLib(id LibID, cost int) LibSel {
	libs := make([]LibCost, len(self.Libs))
	copy(libs, self.Libs)

	pos := sort.Search(len(libs), func(i int) bool { return libs[i].ID >= id })
	if pos < len(libs) && libs[pos].ID == id {
		return LibSel{Libs: libs, ExprCost: self.ExprCost, FullCost: self.FullCost}
	}

	libs = append(libs, LibCost{})
	copy(libs[pos+1:], libs[pos:])
	libs[pos] = LibCost{ID: id, Cost: cost}

	return LibSel{Libs: libs, ExprCost: self.ExprCost, FullCost: self.FullCost + cost}
}

// IncCost returns self with both cost fields incremented by one,
// charging the current node.
func (self LibSel) IncCost() LibSel {
	return LibSel{Libs: self.Libs, ExprCost: self.ExprCost + 1, FullCost: self.FullCost + 1}
}

// leafLibSel is the LibSel for an arity-0 node: no libraries, cost 1.
func leafLibSel() LibSel { return LibSel{ExprCost: 1, FullCost: 1} }

// CostSet is a bounded, ascending-by-FullCost, dominance-reduced list of
// LibSel candidates — the analysis datum attached to every e-class.
type CostSet struct {
	set []LibSel
}

// Make returns the singleton CostSet for an arity-0 node.
func Make() CostSet { return CostSet{set: []LibSel{leafLibSel()}} }

// Len reports the number of candidates currently kept.
func (cs CostSet) Len() int { return len(cs.set) }

// At returns the i'th candidate in ascending FullCost order.
func (cs CostSet) At(i int) LibSel { return cs.set[i] }

// Best returns the cheapest candidate. Callers must ensure Len() > 0;
// Make always yields a non-empty set, so a CostSet built entirely from
// Make/Cross/AddLib/Combine calls is never empty (see the round
// driver's "empty frontier" invariant check at the root).
func (cs CostSet) Best() LibSel { return cs.set[0] }

// insert places ls into a copy of dst at the position preserving
// ascending FullCost order, breaking ties by keeping earlier insertions
// first (stable insertion order).
func insert(dst []LibSel, ls LibSel) []LibSel {
	pos := sort.Search(len(dst), func(i int) bool { return dst[i].FullCost > ls.FullCost })
	dst = append(dst, LibSel{})
	copy(dst[pos+1:], dst[pos:])
	dst[pos] = ls
	return dst
}

// Cross cartesian-combines a with b: every pair's Combine is inserted
// into the result in ascending order. Intermediate and final callers are
// expected to Prune the result, per the k-ary fold in Analysis.MakeNary.
func Cross(a, b CostSet) CostSet {
	out := make([]LibSel, 0, len(a.set)*len(b.set))
	for _, x := range a.set {
		for _, y := range b.set {
			out = insert(out, x.Combine(y))
		}
	}
	return CostSet{set: out}
}

// Combine merges other's elements into self's list (no unification, no
// pruning — callers sequence Unify/Prune themselves, matching merge's
// combine-then-unify-then-prune contract).
func (cs *CostSet) Combine(other CostSet) {
	for _, ls := range other.set {
		cs.set = insert(cs.set, ls)
	}
}

// Unify removes every element dominated by an earlier (cheaper, since
// the list is ascending) element, in place.
func (cs *CostSet) Unify() {
	kept := cs.set[:0:0]
	for i, ls := range cs.set {
		dominated := false
		for j := 0; j < i; j++ {
			if cs.set[j].IsSubset(ls) {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, ls)
		}
	}
	cs.set = kept
}

// IncCost increments every candidate's cost fields by one.
func (cs *CostSet) IncCost() {
	for i := range cs.set {
		cs.set[i] = cs.set[i].IncCost()
	}
}

// AddLib combines self with a library binding: for every element of
// libCost (the library body's own CostSet) and every element of self,
// produce a new LibSel with that library id added. Used only for the
// BLib binding case in Analysis.MakeLib.
func (cs CostSet) AddLib(id LibID, libCost CostSet) CostSet {
	out := make([]LibSel, 0, len(cs.set)*len(libCost.set))
	for _, bodyCost := range libCost.set {
		for _, t := range cs.set {
			out = insert(out, t.AddLib(id, bodyCost.ExprCost))
		}
	}
	return CostSet{set: out}
}

// Prune truncates the set to the cheapest n elements; elements beyond
// position n all have FullCost >= every kept element's, since the list
// is kept in ascending order throughout.
func (cs *CostSet) Prune(n int) {
	if len(cs.set) > n {
		cs.set = cs.set[:n]
	}
}

// Clone returns a deep-enough copy safe to mutate independently (LibSel
// itself is immutable value data once constructed, but the backing
// slice of CostSet is not shared).
func (cs CostSet) Clone() CostSet {
	out := make([]LibSel, len(cs.set))
	copy(out, cs.set)
	return CostSet{set: out}
}

// SanityFullCost recomputes FullCost from ExprCost+libs; exported so
// tests elsewhere can assert the invariant of spec.md §8 without
// reaching into LibSel's fields directly.
func SanityFullCost(ls LibSel) int { return ls.ExprCost + libsCost(ls.Libs) }

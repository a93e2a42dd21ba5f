// Package extract implements the library-aware extractor: given a fixed
// e-graph and a set of chosen library definitions, it picks one
// representative e-node per e-class minimizing AST size under a cost
// model where a library's body is charged once no matter how many call
// sites reference it.
package extract

import (
	"beamlearn/ast"
	"beamlearn/costset"
	"beamlearn/egraph"
)

// LibDef names one chosen library: its id and the identifier its lib
// binding and apply sites use (egraph.LibIdentName of the id).
type LibDef[O ast.Op] struct {
	ID   costset.LibID
	Name string
}

// state tracks one e-class's extraction progress: in-progress classes
// are marked to detect cycles (mirroring a reachability-style visited
// map), resolved classes cache their best expression and cost.
type state[O ast.Op] struct {
	done       bool
	inProgress bool
	expr       ast.Expr[O]
	cost       int
}

// Extractor picks, for every e-class, the cheapest representative
// expression under the library-aware cost model, memoizing results so
// repeated references (including those introduced by a chosen library's
// own body) are computed once.
type Extractor[O ast.Op] struct {
	g       *egraph.Graph[O]
	teach   ast.Teachable[O]
	chosen  map[costset.LibID]bool
	libCost map[costset.LibID]int // charged once; 0 after first charge
	states  map[ast.ClassID]*state[O]
}

// New builds an extractor over g, charging each of libs' defining
// bodies exactly once across the whole extraction.
func New[O ast.Op](g *egraph.Graph[O], teach ast.Teachable[O], libs []LibDef[O]) *Extractor[O] {
	chosen := make(map[costset.LibID]bool, len(libs))
	for _, l := range libs {
		chosen[l.ID] = true
	}
	return &Extractor[O]{
		g:       g,
		teach:   teach,
		chosen:  chosen,
		libCost: make(map[costset.LibID]int),
		states:  make(map[ast.ClassID]*state[O]),
	}
}

// Extract returns the cheapest expression reachable from id and its
// library-aware AST size.
func (ex *Extractor[O]) Extract(id ast.ClassID) (ast.Expr[O], int) {
	st := ex.resolve(ex.g.Find(id))
	return st.expr, st.cost
}

// resolve computes (memoized) the best representative for a class,
// falling back to the best acyclic node if every node's extraction
// would require revisiting a class still in progress (a genuine cycle
// in the e-graph).
func (ex *Extractor[O]) resolve(id ast.ClassID) *state[O] {
	if st, ok := ex.states[id]; ok && st.done {
		return st
	}

	st := &state[O]{inProgress: true}
	ex.states[id] = st

	var bestExpr ast.Expr[O]
	bestCost := -1
	haveAcyclic := false

	for _, n := range ex.g.Nodes(id) {
		expr, cost, ok := ex.extractNode(n)
		if !ok {
			continue // every child route cycles back through an in-progress class
		}
		if !haveAcyclic || cost < bestCost {
			haveAcyclic = true
			bestExpr = expr
			bestCost = cost
		}
	}

	st.inProgress = false
	if haveAcyclic {
		st.done = true
		st.expr = bestExpr
		st.cost = bestCost
	}
	return st
}

// extractNode computes one node's library-aware cost: an ordinary node
// costs 1 plus its children's costs; a "lib" binding node charges its
// value (the library body) once per extraction, per spec.md §4.5, and
// an "apply" of a library's ident reference reuses the already-charged
// value at cost 1 for the reference itself.
func (ex *Extractor[O]) extractNode(n ast.Node[O]) (ast.Expr[O], int, bool) {
	view, args := ex.teach.AsBinding(n.Op, n.Children)
	if view == ast.BLib && ex.chosen[ex.g.LibIDOf(args.LibIdent)] {
		return ex.extractLib(n, args)
	}

	children := make([]ast.Expr[O], len(n.Children))
	total := 1
	for i, c := range n.Children {
		cst := ex.childState(c)
		if cst == nil {
			return ast.Expr[O]{}, 0, false
		}
		children[i] = cst.expr
		total += cst.cost
	}
	return ast.NewExpr(n.Op, children...), total, true
}

func (ex *Extractor[O]) extractLib(n ast.Node[O], args ast.BindingArgs) (ast.Expr[O], int, bool) {
	libID := ex.g.LibIDOf(args.LibIdent)

	identSt := ex.childState(args.LibIdent)
	valueSt := ex.childState(args.LibValue)
	bodySt := ex.childState(args.LibBody)
	if identSt == nil || valueSt == nil || bodySt == nil {
		return ast.Expr[O]{}, 0, false
	}

	valueCost := 0
	if _, alreadyCharged := ex.libCost[libID]; !alreadyCharged {
		valueCost = valueSt.cost
		ex.libCost[libID] = valueCost
	}

	total := 1 + identSt.cost + valueCost + bodySt.cost
	return ast.NewExpr(n.Op, identSt.expr, valueSt.expr, bodySt.expr), total, true
}

// UsageCounts tallies, for one already-extracted expression, how many
// apply sites reference each of libs' bound identifiers — the number
// of call sites extraction charged at cost 1 after the library's body
// was charged once. Purely informational: it does not feed back into
// any cost computation.
func UsageCounts[O ast.Op](teach ast.Teachable[O], e ast.Expr[O], libs []LibDef[O]) map[costset.LibID]int {
	names := make(map[string]costset.LibID, len(libs))
	for _, l := range libs {
		names[l.Name] = l.ID
	}

	counts := make(map[costset.LibID]int, len(libs))
	e.Walk(func(n ast.Expr[O]) {
		dummy := make([]ast.ClassID, len(n.Children))
		view, _ := teach.AsBinding(n.Op, dummy)
		if view != ast.BApply || len(n.Children) == 0 {
			return
		}
		fun := n.Children[0]
		if fview, fargs := teach.AsBinding(fun.Op, nil); fview == ast.BIdent {
			if id, ok := names[fargs.Ident]; ok {
				counts[id]++
			}
		}
	})
	return counts
}

// childState resolves a child class, refusing to recurse into a class
// still being resolved higher up the call stack (a cycle) by reporting
// nil rather than looping forever.
func (ex *Extractor[O]) childState(id ast.ClassID) *state[O] {
	id = ex.g.Find(id)
	if existing, ok := ex.states[id]; ok {
		if existing.inProgress {
			return nil
		}
		if existing.done {
			return existing
		}
	}
	st := ex.resolve(id)
	if !st.done {
		return nil
	}
	return st
}

// Package egraph implements a hash-consed e-graph parameterized over an
// operator alphabet, carrying two per-e-class analyses (PartialLibCost
// in costset.CostSet and the free-variable set in FreeVars), rule-driven
// saturation with iteration/time/node limits, and the co-occurrence
// builder used to prune anti-unification candidates.
package egraph

import (
	"strconv"
	"strings"

	"beamlearn/ast"
	"beamlearn/costset"
)

type nodeKey[O ast.Op] struct {
	op   O
	kids string
}

func makeKey[O ast.Op](op O, kids []ast.ClassID) nodeKey[O] {
	if len(kids) == 0 {
		return nodeKey[O]{op: op}
	}
	var sb strings.Builder
	for i, k := range kids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(k)))
	}
	return nodeKey[O]{op: op, kids: sb.String()}
}

// parentEdge records that node (with its children as they were at
// insertion time) lives in class owner; used during Rebuild to find and
// re-canonicalize nodes whose children have since been unioned.
type parentEdge[O ast.Op] struct {
	node  ast.Node[O]
	owner ast.ClassID
}

type eclass[O ast.Op] struct {
	nodes   []ast.Node[O]
	data    costset.CostSet
	parents []parentEdge[O]
}

// Graph is a hash-consed e-graph over operator alphabet O, carrying a
// costset.Analysis datum per e-class.
type Graph[O ast.Op] struct {
	teach    ast.Teachable[O]
	analysis costset.Analysis
	uf       *unionFind
	classes  map[ast.ClassID]*eclass[O]
	hashcons map[nodeKey[O]]ast.ClassID
	pending  []ast.ClassID
	freeData map[ast.ClassID]FreeVars
}

// New creates an empty e-graph for operator alphabet O, given its
// binding-expression view and the beam-search analysis configuration.
func New[O ast.Op](teach ast.Teachable[O], analysis costset.Analysis) *Graph[O] {
	return &Graph[O]{
		teach:    teach,
		analysis: analysis,
		uf:       newUnionFind(),
		classes:  make(map[ast.ClassID]*eclass[O]),
		hashcons: make(map[nodeKey[O]]ast.ClassID),
		freeData: make(map[ast.ClassID]FreeVars),
	}
}

// Find returns the canonical representative of id's e-class.
func (g *Graph[O]) Find(id ast.ClassID) ast.ClassID { return g.uf.find(id) }

// Data returns the current analysis datum (CostSet) of id's e-class.
func (g *Graph[O]) Data(id ast.ClassID) costset.CostSet {
	return g.classes[g.uf.find(id)].data
}

// NumClasses reports the number of live e-classes. Union deletes the
// losing side's entry from g.classes immediately, so this is exact at
// all times, not just after Rebuild.
func (g *Graph[O]) NumClasses() int { return len(g.classes) }

// NumNodes reports the total number of e-nodes across all e-classes,
// the "node limit" resource named in spec.md §5.
func (g *Graph[O]) NumNodes() int {
	total := 0
	for _, c := range g.classes {
		total += len(c.nodes)
	}
	return total
}

// AddExpr inserts a tree expression into the e-graph, returning the
// e-class id of its root.
func (g *Graph[O]) AddExpr(e ast.Expr[O]) ast.ClassID {
	children := make([]ast.ClassID, len(e.Children))
	for i, c := range e.Children {
		children[i] = g.AddExpr(c)
	}
	return g.AddNode(ast.Node[O]{Op: e.Op, Children: children})
}

// AddNode inserts a single node (whose children must already be
// e-class ids in this graph), returning the canonical e-class id that
// now contains it — either a freshly created one or a pre-existing one
// if the (op, canonical children) key was already present.
func (g *Graph[O]) AddNode(n ast.Node[O]) ast.ClassID {
	canon := make([]ast.ClassID, len(n.Children))
	for i, c := range n.Children {
		canon[i] = g.uf.find(c)
	}
	canonNode := ast.Node[O]{Op: n.Op, Children: canon}
	key := makeKey(n.Op, canon)

	if existing, ok := g.hashcons[key]; ok {
		return g.uf.find(existing)
	}

	id := g.uf.makeSet()
	data := g.makeData(canonNode)
	g.classes[id] = &eclass[O]{nodes: []ast.Node[O]{canonNode}, data: data}
	g.hashcons[key] = id
	g.freeData[id] = g.makeFreeVars(canonNode)

	for _, c := range canon {
		cls := g.classes[g.uf.find(c)]
		cls.parents = append(cls.parents, parentEdge[O]{node: canonNode, owner: id})
	}

	return id
}

// makeData dispatches to the PartialLibCost analysis per spec.md §4.1:
// the Lib binding case first, then leaf/unary/k-ary by arity.
func (g *Graph[O]) makeData(n ast.Node[O]) costset.CostSet {
	view, args := g.teach.AsBinding(n.Op, n.Children)
	if view == ast.BLib {
		libID := g.LibIDOf(args.LibIdent)
		value := g.Data(args.LibValue)
		body := g.Data(args.LibBody)
		return g.analysis.MakeLib(libID, value, body)
	}

	switch len(n.Children) {
	case 0:
		return g.analysis.MakeLeaf()
	case 1:
		return g.analysis.MakeUnary(g.Data(n.Children[0]))
	default:
		children := make([]costset.CostSet, len(n.Children))
		for i, c := range n.Children {
			children[i] = g.Data(c)
		}
		return g.analysis.MakeNary(children)
	}
}

// LibIDOf resolves the library id bound by a Lib node's identifier
// child, by convention named "f<position>" (see LibIdentName). Exported so
// the extract package can recover which library a "lib" e-node charges
// without re-deriving the BIdent/BLib decoding itself.
func (g *Graph[O]) LibIDOf(identClass ast.ClassID) costset.LibID {
	cls := g.classes[g.uf.find(identClass)]
	for _, n := range cls.nodes {
		if view, args := g.teach.AsBinding(n.Op, n.Children); view == ast.BIdent {
			if id, ok := ParseLibIdent(args.Ident); ok {
				return id
			}
		}
	}
	return -1
}

// ParseLibIdent parses the conventional library-binder name "f<N>"
// produced by anti-unification back into its LibID.
func ParseLibIdent(sym string) (costset.LibID, bool) {
	if !strings.HasPrefix(sym, "f") {
		return 0, false
	}
	n, err := strconv.Atoi(sym[1:])
	if err != nil {
		return 0, false
	}
	return costset.LibID(n), true
}

// LibIdentName is the inverse of ParseLibIdent: the conventional
// binder name for a given library id.
func LibIdentName(id costset.LibID) string {
	return "f" + strconv.Itoa(int(id))
}

// Union merges the e-classes containing a and b, running the analysis
// merge and scheduling the classes for Rebuild. Returns whether a new
// merge actually happened.
func (g *Graph[O]) Union(a, b ast.ClassID) bool {
	ra, rb := g.uf.find(a), g.uf.find(b)
	if ra == rb {
		return false
	}

	winner, merged := g.uf.union(ra, rb)
	loser := ra
	if winner == ra {
		loser = rb
	}

	winClass := g.classes[winner]
	loseClass := g.classes[loser]

	toChanged, _ := g.analysis.Merge(&winClass.data, loseClass.data)
	_ = toChanged

	winClass.nodes = append(winClass.nodes, loseClass.nodes...)
	winClass.parents = append(winClass.parents, loseClass.parents...)
	delete(g.classes, loser)

	g.freeData[winner] = unionFreeVars(g.freeData[winner], g.freeData[loser])
	delete(g.freeData, loser)

	g.pending = append(g.pending, winner)
	return merged
}

// Rebuild restores the hash-cons congruence invariant after a batch of
// Unions: for every e-class touched since the last Rebuild, its
// parents' node keys are recomputed under the current canonicalization
// and any newly-discovered congruent nodes are unioned, repeating until
// no pending classes remain.
func (g *Graph[O]) Rebuild() {
	for len(g.pending) > 0 {
		todo := g.pending
		g.pending = nil

		seen := make(map[ast.ClassID]bool)
		for _, id := range todo {
			seen[g.uf.find(id)] = true
		}

		for id := range seen {
			g.repair(id)
		}
	}
}

// canonicalizeChildren re-finds every child id under the current
// union-find state.
func (g *Graph[O]) canonicalizeChildren(kids []ast.ClassID) []ast.ClassID {
	out := make([]ast.ClassID, len(kids))
	for i, k := range kids {
		out[i] = g.uf.find(k)
	}
	return out
}

// repair re-canonicalizes id's e-class's parent edges, dropping their
// stale hash-cons entries, re-inserting the canonical ones, unioning any
// e-classes whose owning nodes now collide under canonicalization, and
// patching each owner's own stored e-node (not just the hash-cons table)
// so that g.Nodes never hands back a node with a stale, pre-union child
// id. Unions performed here enqueue their winner onto g.pending, so a
// not-yet-fully-repaired parent list is safely picked up again on the
// next outer Rebuild iteration.
func (g *Graph[O]) repair(id ast.ClassID) {
	cls, ok := g.classes[g.uf.find(id)]
	if !ok {
		return
	}

	parents := cls.parents
	cls.parents = nil

	for _, pe := range parents {
		delete(g.hashcons, makeKey(pe.node.Op, pe.node.Children))
	}

	canonParents := make([]parentEdge[O], len(parents))
	for i, pe := range parents {
		canonParents[i] = parentEdge[O]{
			node:  ast.Node[O]{Op: pe.node.Op, Children: g.canonicalizeChildren(pe.node.Children)},
			owner: g.uf.find(pe.owner),
		}
	}

	for _, pe := range canonParents {
		key := makeKey(pe.node.Op, pe.node.Children)
		ownerCanon := g.uf.find(pe.owner)
		if existing, ok := g.hashcons[key]; ok {
			if existingCanon := g.uf.find(existing); existingCanon != ownerCanon {
				g.Union(existingCanon, ownerCanon)
			}
		} else {
			g.hashcons[key] = ownerCanon
		}
	}

	// Patch each owner's own node list: the stale (pre-canonicalization)
	// node is still sitting in owner.nodes from insertion time (or from
	// a prior Union that copied it over verbatim); replace it with its
	// canonical form, then dedup in case two of an owner's nodes now
	// coincide.
	touched := make(map[ast.ClassID]bool)
	for i, pe := range parents {
		ownerCanon := g.uf.find(pe.owner)
		ownerCls := g.classes[ownerCanon]
		if ownerCls == nil {
			continue // owner itself was merged away entirely
		}
		replaceNode(ownerCls, pe.node, canonParents[i].node)
		touched[ownerCanon] = true
	}
	for ownerCanon := range touched {
		dedupNodes(g.classes[ownerCanon])
	}

	target := g.classes[g.uf.find(id)]
	if target == nil {
		return
	}

	seen := make(map[nodeKey[O]]bool, len(target.parents)+len(canonParents))
	var merged []parentEdge[O]
	addDeduped := func(pe parentEdge[O]) {
		canon := ast.Node[O]{Op: pe.node.Op, Children: g.canonicalizeChildren(pe.node.Children)}
		key := makeKey(canon.Op, canon.Children)
		if seen[key] {
			return
		}
		seen[key] = true
		merged = append(merged, parentEdge[O]{node: canon, owner: g.uf.find(pe.owner)})
	}
	for _, pe := range target.parents {
		addDeduped(pe)
	}
	for _, pe := range canonParents {
		addDeduped(pe)
	}
	target.parents = merged
}

// replaceNode swaps the first occurrence of stale in cls.nodes for
// canon (by structural equality); if stale is no longer present (e.g.
// a previous repair already patched it), canon is appended instead, so
// the canonical form is always present exactly once after this call and
// a subsequent dedupNodes pass.
func replaceNode[O ast.Op](cls *eclass[O], stale, canon ast.Node[O]) {
	for i, n := range cls.nodes {
		if nodesEqual(n, stale) {
			cls.nodes[i] = canon
			return
		}
	}
	cls.nodes = append(cls.nodes, canon)
}

func nodesEqual[O ast.Op](a, b ast.Node[O]) bool {
	if a.Op != b.Op || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if a.Children[i] != b.Children[i] {
			return false
		}
	}
	return true
}

// dedupNodes removes duplicate node entries from cls (possible once
// canonicalization makes two previously-distinct nodes identical).
func dedupNodes[O ast.Op](cls *eclass[O]) {
	seen := make(map[nodeKey[O]]bool, len(cls.nodes))
	kept := cls.nodes[:0:0]
	for _, n := range cls.nodes {
		key := makeKey(n.Op, n.Children)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, n)
	}
	cls.nodes = kept
}

// ClassIDs returns every live e-class id, in ascending order — used by
// saturation and co-occurrence analysis for deterministic iteration.
func (g *Graph[O]) ClassIDs() []ast.ClassID {
	out := make([]ast.ClassID, 0, len(g.classes))
	for id := range g.classes {
		out = append(out, id)
	}
	sortClassIDs(out)
	return out
}

// Nodes returns the e-nodes stored in id's e-class.
func (g *Graph[O]) Nodes(id ast.ClassID) []ast.Node[O] {
	return g.classes[g.uf.find(id)].nodes
}

func sortClassIDs(ids []ast.ClassID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

package egraph

import "beamlearn/ast"

// HoleID names a numbered hole in a Pattern.
type HoleID int

// Pattern is a tagged tree of operator nodes and numbered holes — an
// AST template used both as a rewrite's searcher (matched against
// e-nodes) and, instantiated, as its applier.
type Pattern[O ast.Op] struct {
	Hole     HoleID // valid only when IsHole
	IsHole   bool
	Op       O
	Children []Pattern[O]
}

// PatternHole constructs a hole pattern.
func PatternHole[O ast.Op](h HoleID) Pattern[O] {
	return Pattern[O]{Hole: h, IsHole: true}
}

// PatternNode constructs a non-hole pattern node.
func PatternNode[O ast.Op](op O, children ...Pattern[O]) Pattern[O] {
	return Pattern[O]{Op: op, Children: children}
}

// NumHoles reports one more than the highest hole id referenced by p,
// which is the number of distinct holes when ids are numbered densely
// from 0 (negative ids are not counted).
func (p Pattern[O]) NumHoles() int {
	max := -1
	p.walkHoles(func(h HoleID) {
		if int(h) > max {
			max = int(h)
		}
	})
	return max + 1
}

func (p Pattern[O]) walkHoles(fn func(HoleID)) {
	if p.IsHole {
		fn(p.Hole)
		return
	}
	for _, c := range p.Children {
		c.walkHoles(fn)
	}
}

// Subst maps hole ids to the e-class they matched.
type Subst map[HoleID]ast.ClassID

// Match finds every way p can match an e-node reachable from class id
// (directly, i.e. id's own e-nodes only — the standard e-graph pattern
// semantics where each non-hole pattern node must literally correspond
// to some e-node in the matched class). It returns one Subst per
// distinct match.
func Match[O ast.Op](g *Graph[O], p Pattern[O], id ast.ClassID) []Subst {
	if p.IsHole {
		return []Subst{{p.Hole: g.Find(id)}}
	}

	var out []Subst
	for _, n := range g.Nodes(g.Find(id)) {
		if n.Op != p.Op || len(n.Children) != len(p.Children) {
			continue
		}
		substs := []Subst{{}}
		for i, childPattern := range p.Children {
			var next []Subst
			childMatches := Match(g, childPattern, n.Children[i])
			for _, base := range substs {
				for _, m := range childMatches {
					if merged, ok := mergeSubst(base, m); ok {
						next = append(next, merged)
					}
				}
			}
			substs = next
		}
		out = append(out, substs...)
	}
	return out
}

func mergeSubst(a, b Subst) (Subst, bool) {
	out := make(Subst, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if existing, ok := out[k]; ok && existing != v {
			return nil, false
		}
		out[k] = v
	}
	return out, true
}

// Instantiate builds a concrete node tree from an applier pattern and a
// substitution, adding every node it creates to g, and returns the
// resulting e-class id.
func Instantiate[O ast.Op](g *Graph[O], p Pattern[O], subst Subst) ast.ClassID {
	if p.IsHole {
		return subst[p.Hole]
	}
	children := make([]ast.ClassID, len(p.Children))
	for i, c := range p.Children {
		children[i] = Instantiate(g, c, subst)
	}
	return g.AddNode(ast.Node[O]{Op: p.Op, Children: children})
}

// Rewrite pairs a searcher pattern with an applier pattern. Applying a
// rewrite that matches class id unions id with the instantiated
// applier, i.e. asserts pattern-matched expressions equal
// applier-instantiated ones.
type Rewrite[O ast.Op] struct {
	Name    string
	Search  Pattern[O]
	Apply   Pattern[O]
	DidFire func(g *Graph[O], matched ast.ClassID, subst Subst) bool // optional side condition
}

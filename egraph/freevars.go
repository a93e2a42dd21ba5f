package egraph

import "beamlearn/ast"

// FreeVars is the free-variable set of an e-class: the free
// identifiers and the free de Bruijn indices (counted relative to this
// subterm's own root — index i is free iff it is not captured by any
// lambda that is itself part of this subterm). It is a second,
// parallel e-class analysis alongside costset.CostSet, computed
// bottom-up the same way, consulted only by the lift package's
// capture-freshness side conditions.
type FreeVars struct {
	Idents  map[string]bool
	Indices map[int]bool
}

func emptyFreeVars() FreeVars {
	return FreeVars{Idents: map[string]bool{}, Indices: map[int]bool{}}
}

// HasIdent reports whether name is free.
func (f FreeVars) HasIdent(name string) bool { return f.Idents[name] }

func unionFreeVars(a, b FreeVars) FreeVars {
	out := FreeVars{Idents: make(map[string]bool, len(a.Idents)+len(b.Idents)), Indices: make(map[int]bool, len(a.Indices)+len(b.Indices))}
	for k := range a.Idents {
		out.Idents[k] = true
	}
	for k := range b.Idents {
		out.Idents[k] = true
	}
	for k := range a.Indices {
		out.Indices[k] = true
	}
	for k := range b.Indices {
		out.Indices[k] = true
	}
	return out
}

// shiftUnderLambda computes the free set one lambda-binder up from fv
// (fv was computed for the lambda's body): index 0 is captured and
// dropped, every other free index shifts down by one.
func shiftUnderLambda(fv FreeVars) FreeVars {
	out := FreeVars{Idents: fv.Idents, Indices: make(map[int]bool, len(fv.Indices))}
	for i := range fv.Indices {
		if i > 0 {
			out.Indices[i-1] = true
		}
	}
	return out
}

// removeIdent returns fv with name no longer considered free (the
// binding case for let/lib: the body's occurrences of the bound name
// are captured).
func removeIdent(fv FreeVars, name string) FreeVars {
	out := FreeVars{Idents: make(map[string]bool, len(fv.Idents)), Indices: fv.Indices}
	for k := range fv.Idents {
		if k != name {
			out.Idents[k] = true
		}
	}
	return out
}

// FreeVars returns the current free-variable set of id's e-class.
func (g *Graph[O]) FreeVars(id ast.ClassID) FreeVars {
	return g.freeData[g.uf.find(id)]
}

// makeFreeVars computes the free-variable datum for a freshly
// hash-consed node, dispatching on its binding view exactly like
// makeData does for cost.
func (g *Graph[O]) makeFreeVars(n ast.Node[O]) FreeVars {
	view, args := g.teach.AsBinding(n.Op, n.Children)
	switch view {
	case ast.BIdent:
		return FreeVars{Idents: map[string]bool{args.Ident: true}, Indices: map[int]bool{}}
	case ast.BIndex:
		return FreeVars{Idents: map[string]bool{}, Indices: map[int]bool{args.Index: true}}
	case ast.BLambda:
		return shiftUnderLambda(g.FreeVars(args.Body))
	case ast.BLet:
		return g.bindingFreeVars(args.LetIdent, args.LetValue, args.LetBody)
	case ast.BLib:
		return g.bindingFreeVars(args.LibIdent, args.LibValue, args.LibBody)
	default:
		if len(n.Children) == 0 {
			return emptyFreeVars()
		}
		fv := g.FreeVars(n.Children[0])
		for _, c := range n.Children[1:] {
			fv = unionFreeVars(fv, g.FreeVars(c))
		}
		return fv
	}
}

func (g *Graph[O]) bindingFreeVars(identClass, valueClass, bodyClass ast.ClassID) FreeVars {
	name := g.IdentNameOf(identClass)
	body := removeIdent(g.FreeVars(bodyClass), name)
	return unionFreeVars(body, g.FreeVars(valueClass))
}

// IdentNameOf returns the bound name carried by identClass's ident node,
// or "" if none of its e-nodes classify as BIdent (should not happen for
// well-formed let/lib bindings). Exported for the lift package's
// capture-freshness side conditions.
func (g *Graph[O]) IdentNameOf(identClass ast.ClassID) string {
	cls := g.classes[g.uf.find(identClass)]
	if cls == nil {
		return ""
	}
	for _, n := range cls.nodes {
		if view, args := g.teach.AsBinding(n.Op, n.Children); view == ast.BIdent {
			return args.Ident
		}
	}
	return ""
}

// NotFreeIn reports whether identClass's bound name does not occur free
// in valueClass — the capture-freshness side condition gating every lib-
// lifting rewrite that would hoist a binding past another one.
func (g *Graph[O]) NotFreeIn(valueClass, identClass ast.ClassID) bool {
	return !g.FreeVars(valueClass).HasIdent(g.IdentNameOf(identClass))
}

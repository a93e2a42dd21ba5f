package listlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beamlearn/ast"
	"beamlearn/costset"
	"beamlearn/egraph"
)

func newGraph() *egraph.Graph[Op] {
	return egraph.New[Op](Teachable{}, costset.New(costset.DefaultConfig()))
}

func TestArityTable(t *testing.T) {
	assert.Equal(t, 0, List().MinArity())
	assert.Equal(t, -1, List().MaxArity())
	assert.Equal(t, 1, Lambda().MinArity())
	assert.Equal(t, 1, Lambda().MaxArity())
	assert.Equal(t, 2, Cons().MinArity())
	assert.Equal(t, 2, Apply().MinArity())
	assert.Equal(t, 3, If().MinArity())
	assert.Equal(t, 3, Let().MinArity())
	assert.Equal(t, 3, Lib().MinArity())
	assert.Equal(t, 0, Bool(true).MinArity())
	assert.Equal(t, 0, Int(5).MinArity())
	assert.Equal(t, 0, Var(2).MinArity())
	assert.Equal(t, 0, Ident("x").MinArity())
}

func TestStringRendersConcreteSyntaxTokens(t *testing.T) {
	assert.Equal(t, "cons", Cons().String())
	assert.Equal(t, "if", If().String())
	assert.Equal(t, "@", Apply().String())
	assert.Equal(t, "λ", Lambda().String())
	assert.Equal(t, "let", Let().String())
	assert.Equal(t, "lib", Lib().String())
	assert.Equal(t, "list", List().String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "false", Bool(false).String())
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "$3", Var(3).String())
	assert.Equal(t, "foo", Ident("foo").String())
}

func TestAsBindingRoundTripsEveryView(t *testing.T) {
	teach := Teachable{}

	view, args := teach.AsBinding(Lambda(), []ast.ClassID{7})
	assert.Equal(t, ast.BLambda, view)
	assert.Equal(t, ast.ClassID(7), args.Body)

	view, args = teach.AsBinding(Apply(), []ast.ClassID{1, 2})
	assert.Equal(t, ast.BApply, view)
	assert.Equal(t, ast.ClassID(1), args.Fun)
	assert.Equal(t, ast.ClassID(2), args.Arg)

	view, args = teach.AsBinding(Var(3), nil)
	assert.Equal(t, ast.BIndex, view)
	assert.Equal(t, 3, args.Index)

	view, args = teach.AsBinding(Ident("x"), nil)
	assert.Equal(t, ast.BIdent, view)
	assert.Equal(t, "x", args.Ident)

	view, args = teach.AsBinding(Lib(), []ast.ClassID{1, 2, 3})
	assert.Equal(t, ast.BLib, view)
	assert.Equal(t, ast.ClassID(1), args.LibIdent)
	assert.Equal(t, ast.ClassID(2), args.LibValue)
	assert.Equal(t, ast.ClassID(3), args.LibBody)

	view, args = teach.AsBinding(Let(), []ast.ClassID{1, 2, 3})
	assert.Equal(t, ast.BLet, view)
	assert.Equal(t, ast.ClassID(1), args.LetIdent)
	assert.Equal(t, ast.ClassID(2), args.LetValue)
	assert.Equal(t, ast.ClassID(3), args.LetBody)

	view, _ = teach.AsBinding(Cons(), []ast.ClassID{1, 2})
	assert.Equal(t, ast.NotBinding, view)
}

func TestStandardDSRsFoldConstantConditionals(t *testing.T) {
	g := newGraph()
	a := g.AddNode(ast.Node[Op]{Op: Int(1)})
	b := g.AddNode(ast.Node[Op]{Op: Int(2)})
	cond := g.AddNode(ast.Node[Op]{Op: Bool(true)})
	ifNode := g.AddNode(ast.Node[Op]{Op: If(), Children: []ast.ClassID{cond, a, b}})

	set := StandardDSRs()
	require.Greater(t, set.Len(), 0)
	reason := egraph.Saturate(g, set.Rewrites(), egraph.Limits{IterLimit: 10})

	assert.Equal(t, egraph.StopSaturated, reason)
	assert.Equal(t, g.Find(a), g.Find(ifNode))
}

package dsr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beamlearn/ast"
	"beamlearn/costset"
	"beamlearn/egraph"
)

type dsrOp struct {
	tag   string
	value string
}

func (o dsrOp) String() string {
	if o.value != "" {
		return o.tag + "(" + o.value + ")"
	}
	return o.tag
}
func (o dsrOp) MinArity() int {
	switch o.tag {
	case "const", "ident", "index":
		return 0
	case "neg", "lambda":
		return 1
	case "add", "apply":
		return 2
	case "lib", "let":
		return 3
	default:
		return 0
	}
}
func (o dsrOp) MaxArity() int  { return o.MinArity() }
func (o dsrOp) IsListOp() bool { return false }

var opNeg = dsrOp{tag: "neg"}

func dsrConst(v string) dsrOp { return dsrOp{tag: "const", value: v} }

type dsrTeachable struct{}

func (dsrTeachable) AsBinding(op dsrOp, children []ast.ClassID) (ast.BindingView, ast.BindingArgs) {
	switch op.tag {
	case "lambda":
		return ast.BLambda, ast.BindingArgs{Body: children[0]}
	case "apply":
		return ast.BApply, ast.BindingArgs{Fun: children[0], Arg: children[1]}
	case "lib":
		return ast.BLib, ast.BindingArgs{LibIdent: children[0], LibValue: children[1], LibBody: children[2]}
	case "let":
		return ast.BLet, ast.BindingArgs{LetIdent: children[0], LetValue: children[1], LetBody: children[2]}
	case "ident":
		return ast.BIdent, ast.BindingArgs{Ident: op.value}
	case "index":
		return ast.BIndex, ast.BindingArgs{}
	default:
		return ast.NotBinding, ast.BindingArgs{}
	}
}

func (dsrTeachable) MakeLambda() dsrOp          { return dsrOp{tag: "lambda"} }
func (dsrTeachable) MakeApply() dsrOp           { return dsrOp{tag: "apply"} }
func (dsrTeachable) MakeIndex(n int) dsrOp      { return dsrOp{tag: "index"} }
func (dsrTeachable) MakeIdent(sym string) dsrOp { return dsrOp{tag: "ident", value: sym} }
func (dsrTeachable) MakeLib() dsrOp             { return dsrOp{tag: "lib"} }
func (dsrTeachable) MakeLet() dsrOp             { return dsrOp{tag: "let"} }

func newDSRGraph() *egraph.Graph[dsrOp] {
	return egraph.New[dsrOp](dsrTeachable{}, costset.New(costset.DefaultConfig()))
}

func TestSetAddReplacesByName(t *testing.T) {
	hole := egraph.PatternHole[dsrOp](0)
	r1 := Rule("double-neg", egraph.PatternNode(opNeg, egraph.PatternNode(opNeg, hole)), hole)
	r2 := Rule("double-neg", egraph.PatternNode(opNeg, hole), hole)

	s := NewSet[dsrOp](r1)
	require.Equal(t, 1, s.Len())
	s.Add(r2)
	assert.Equal(t, 1, s.Len(), "re-registering the same name replaces, not appends")

	got, ok := s.Lookup("double-neg")
	require.True(t, ok)
	assert.Equal(t, r2, got)
}

func TestSaturateAppliesRegisteredRewrite(t *testing.T) {
	g := newDSRGraph()
	a := g.AddNode(ast.Node[dsrOp]{Op: dsrConst("a")})
	neg := g.AddNode(ast.Node[dsrOp]{Op: opNeg, Children: []ast.ClassID{a}})
	negNeg := g.AddNode(ast.Node[dsrOp]{Op: opNeg, Children: []ast.ClassID{neg}})

	hole := egraph.PatternHole[dsrOp](0)
	rule := Rule("double-neg", egraph.PatternNode(opNeg, egraph.PatternNode(opNeg, hole)), hole)
	s := NewSet[dsrOp](rule)

	reason := Saturate(g, s, egraph.Limits{IterLimit: 10})
	assert.Equal(t, egraph.StopSaturated, reason)
	assert.Equal(t, g.Find(a), g.Find(negNeg))
}

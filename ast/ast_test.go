package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testOp struct {
	name    string
	arity   int
	variadc bool
}

func (o testOp) String() string { return o.name }
func (o testOp) MinArity() int  { return o.arity }
func (o testOp) MaxArity() int  { return -1 }
func (o testOp) IsListOp() bool { return o.variadc }

var (
	opLeaf   = testOp{name: "leaf", arity: 0}
	opUnary  = testOp{name: "unary", arity: 1}
	opBinary = testOp{name: "binary", arity: 2}
)

func TestExprSize(t *testing.T) {
	leaf := Leaf(opLeaf)
	assert.Equal(t, 1, leaf.Size())

	un := NewExpr(opUnary, leaf)
	assert.Equal(t, 2, un.Size())

	bin := NewExpr(opBinary, leaf, un)
	assert.Equal(t, 4, bin.Size())
}

func TestExprEqual(t *testing.T) {
	a := NewExpr(opBinary, Leaf(opLeaf), Leaf(opLeaf))
	b := NewExpr(opBinary, Leaf(opLeaf), Leaf(opLeaf))
	c := NewExpr(opUnary, Leaf(opLeaf))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func TestWalkVisitsPreOrder(t *testing.T) {
	tree := NewExpr(opBinary, Leaf(opLeaf), NewExpr(opUnary, Leaf(opLeaf)))

	var seen []string
	tree.Walk(func(e Expr[testOp]) { seen = append(seen, e.Op.String()) })

	assert.Equal(t, []string{"binary", "leaf", "unary", "leaf"}, seen)
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "3:4", Position{Line: 3, Column: 4}.String())
	assert.Equal(t, "a.bl:3:4", Position{Filename: "a.bl", Line: 3, Column: 4}.String())
}

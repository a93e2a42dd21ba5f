// Package listlang is the concrete operator alphabet of the list
// language: cons, if, apply (@), lambda (λ), let, lib, the variadic
// list-packaging combinator, and the three leaf forms (boolean/integer
// literals, de Bruijn-indexed variables, free identifiers). It
// implements ast.Op and ast.Teachable[Op] so the rest of the system
// (egraph, antiunify, extract, lift) can operate over it, and supplies
// a handful of illustrative domain-specific rewrites grounded on
// ordinary list/boolean algebra identities.
package listlang

import (
	"strconv"

	"beamlearn/ast"
)

type tag int

const (
	tCons tag = iota
	tIf
	tApply
	tLambda
	tLet
	tLib
	tList
	tBool
	tInt
	tVar
	tIdent
)

// Op is one node operator of the list language. It is a small
// comparable value: a tag plus whichever literal payload that tag
// carries (bool/int/index/identifier), the rest left zero.
type Op struct {
	tag     tag
	boolVal bool
	intVal  int
	index   int
	ident   string
}

func Cons() Op   { return Op{tag: tCons} }
func If() Op     { return Op{tag: tIf} }
func Apply() Op  { return Op{tag: tApply} }
func Lambda() Op { return Op{tag: tLambda} }
func Let() Op    { return Op{tag: tLet} }
func Lib() Op    { return Op{tag: tLib} }
func List() Op   { return Op{tag: tList} }

func Bool(b bool) Op        { return Op{tag: tBool, boolVal: b} }
func Int(n int) Op          { return Op{tag: tInt, intVal: n} }
func Var(index int) Op      { return Op{tag: tVar, index: index} }
func Ident(sym string) Op   { return Op{tag: tIdent, ident: sym} }
func IsIdent(o Op) bool     { return o.tag == tIdent }
func IdentName(o Op) string { return o.ident }

func (o Op) String() string {
	switch o.tag {
	case tCons:
		return "cons"
	case tIf:
		return "if"
	case tApply:
		return "@"
	case tLambda:
		return "λ"
	case tLet:
		return "let"
	case tLib:
		return "lib"
	case tList:
		return "list"
	case tBool:
		if o.boolVal {
			return "true"
		}
		return "false"
	case tInt:
		return strconv.Itoa(o.intVal)
	case tVar:
		return "$" + strconv.Itoa(o.index)
	case tIdent:
		return o.ident
	default:
		return "?"
	}
}

// MinArity and MaxArity implement ast.Op: list is variadic (MaxArity
// -1), lambda unary, cons/apply binary, if/let/lib ternary (the first
// child of let/lib is always an identifier node), everything else a
// leaf.
func (o Op) MinArity() int {
	switch o.tag {
	case tList:
		return 0
	case tLambda:
		return 1
	case tCons, tApply:
		return 2
	case tIf, tLet, tLib:
		return 3
	default:
		return 0
	}
}

func (o Op) MaxArity() int {
	if o.tag == tList {
		return -1
	}
	return o.MinArity()
}

func (o Op) IsListOp() bool { return o.tag == tList }

// Teachable implements ast.Teachable[Op].
type Teachable struct{}

func (Teachable) AsBinding(op Op, children []ast.ClassID) (ast.BindingView, ast.BindingArgs) {
	switch op.tag {
	case tLambda:
		return ast.BLambda, ast.BindingArgs{Body: children[0]}
	case tApply:
		return ast.BApply, ast.BindingArgs{Fun: children[0], Arg: children[1]}
	case tVar:
		return ast.BIndex, ast.BindingArgs{Index: op.index}
	case tIdent:
		return ast.BIdent, ast.BindingArgs{Ident: op.ident}
	case tLib:
		return ast.BLib, ast.BindingArgs{LibIdent: children[0], LibValue: children[1], LibBody: children[2]}
	case tLet:
		return ast.BLet, ast.BindingArgs{LetIdent: children[0], LetValue: children[1], LetBody: children[2]}
	default:
		return ast.NotBinding, ast.BindingArgs{}
	}
}

func (Teachable) MakeLambda() Op          { return Lambda() }
func (Teachable) MakeApply() Op           { return Apply() }
func (Teachable) MakeIndex(n int) Op      { return Var(n) }
func (Teachable) MakeIdent(sym string) Op { return Ident(sym) }
func (Teachable) MakeLib() Op             { return Lib() }
func (Teachable) MakeLet() Op             { return Let() }

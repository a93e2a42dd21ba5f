// Package ast defines the operator-parametric AST model shared by every
// other package: an e-class id type, the node and expression shapes, and
// the capability interfaces an operator alphabet must satisfy (arity,
// printability, and the binding-expression view) for anti-unification,
// cost analysis, and lib lifting to operate over it.
package ast

import "fmt"

// ClassID identifies an e-class inside an e-graph. It is also used, in a
// tree-shaped Expr, to number the (virtual) position a child occupies —
// Expr never actually stores ClassIDs, only child Exprs, but Node[Op] is
// shared between the tree and e-graph representations so the same Op
// values flow through both.
type ClassID int

// Position locates a node in a parsed source file.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Op is the finite alphabet of node operators. Implementations are
// expected to be small, comparable values (typically a struct wrapping a
// tag and, for leaf operators, a literal payload) so that they can key
// maps and be compared with ==.
type Op interface {
	comparable
	fmt.Stringer

	// MinArity and MaxArity bound the number of children a node with
	// this operator may have. MaxArity of -1 means unbounded (variadic,
	// e.g. the "list" combining operator).
	MinArity() int
	MaxArity() int

	// IsListOp reports whether this is the distinguished variadic
	// operator used to pack multiple program roots under one node.
	IsListOp() bool
}

// BindingView tags which shape of binding expression, if any, a node
// represents.
type BindingView int

const (
	// NotBinding means the node is an ordinary operator application.
	NotBinding BindingView = iota
	BLambda
	BApply
	BIndex
	BIdent
	BLib
	BLet
)

func (v BindingView) String() string {
	switch v {
	case BLambda:
		return "lambda"
	case BApply:
		return "apply"
	case BIndex:
		return "index"
	case BIdent:
		return "ident"
	case BLib:
		return "lib"
	case BLet:
		return "let"
	default:
		return "not-binding"
	}
}

// Teachable is implemented by an Op alphabet that provides the
// binding-expression view required by anti-unification and lib lifting:
// lambda abstraction, application, de Bruijn index, free identifier,
// lib (library) binding, and let binding.
type Teachable[O Op] interface {
	// AsBinding classifies a node, given its operator and children.
	// index and ident are meaningful only for BIndex/BIdent views; fun,
	// arg, libIdent, libValue, libBody are meaningful only for the views
	// that use them (see BindingArgs).
	AsBinding(op O, children []ClassID) (BindingView, BindingArgs)

	MakeLambda() O
	MakeApply() O
	MakeIndex(n int) O
	MakeIdent(sym string) O
	MakeLib() O
	MakeLet() O
}

// BindingArgs carries the decoded arguments of a classified binding node.
// Only the fields relevant to the reported BindingView are populated.
type BindingArgs struct {
	Body     ClassID // BLambda
	Fun, Arg ClassID // BApply
	Index    int     // BIndex
	Ident    string  // BIdent
	LibIdent ClassID // BLib: the fresh name bound to the library, as a child slot
	LibValue ClassID // BLib: the library's definition
	LibBody  ClassID // BLib: the body in which it is visible
	LetIdent ClassID // BLet: the bound name, as a child slot
	LetValue ClassID // BLet: the bound value
	LetBody  ClassID // BLet: the body in which it is visible
}

// Node is one AST node: an operator plus an ordered list of child ids.
// In a tree Expr, Children indexes into Expr.Children directly (not
// through an e-graph); in an e-graph, Children are e-class ids.
type Node[O Op] struct {
	Op       O
	Children []ClassID
}

func (n Node[O]) Arity() int { return len(n.Children) }

// String renders the node's operator, ignoring children (callers that
// need the full tree use Expr.String or a package-level printer).
func (n Node[O]) String() string { return n.Op.String() }

// Expr is a finite tree of operator-tagged nodes, directly recursive
// (no e-graph indirection). It is the shape produced by parsing and by
// extraction, and the shape DSRs/anti-unification patterns generalize
// over once flattened into an e-graph.
type Expr[O Op] struct {
	Op       O
	Children []Expr[O]
}

// Leaf builds a zero-arity expression node.
func Leaf[O Op](op O) Expr[O] { return Expr[O]{Op: op} }

// NewExpr builds an expression node from an operator and its children.
func NewExpr[O Op](op O, children ...Expr[O]) Expr[O] {
	return Expr[O]{Op: op, Children: children}
}

// Size returns the AST size (node count) of the expression, the cost
// metric used throughout this system.
func (e Expr[O]) Size() int {
	n := 1
	for _, c := range e.Children {
		n += c.Size()
	}
	return n
}

// Walk visits every node of e in pre-order, calling fn on each.
func (e Expr[O]) Walk(fn func(Expr[O])) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Equal performs a structural equality check (same operators, same
// shape); it does not consult any e-graph equivalence.
func Equal[O Op](a, b Expr[O]) bool {
	if a.Op != b.Op || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Package surface implements the list language's concrete syntax: a
// participle-based lexer and parser for the s-expression surface form,
// conversion into listlang's ast.Expr[listlang.Op] representation, and
// a printer back to source — grounded on the teacher's own
// lexer+participle.Build+printer trio (grammar/lexer.go,
// grammar/parser.go, grammar/printer.go), generalized from Kanso's
// module/struct/function grammar down to this language's much smaller
// s-expression shape.
package surface

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"

	"beamlearn/ast"
	"beamlearn/diag"
	"beamlearn/listlang"
)

// toDiagPosition converts a participle lexer position (source-relative,
// already carrying the filename passed to ParseString) into a diag.Position.
func toDiagPosition(p lexer.Position) diag.Position {
	return diag.Position{Filename: p.Filename, Line: p.Line, Column: p.Column}
}

func buildParser() (*participle.Parser[Expr], error) {
	return participle.Build[Expr](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
}

// Parse converts list-language source text into an ast.Expr[listlang.Op].
func Parse(sourceName, source string) (ast.Expr[listlang.Op], error) {
	parser, err := buildParser()
	if err != nil {
		return ast.Expr[listlang.Op]{}, fmt.Errorf("failed to build parser: %w", err)
	}

	tree, err := parser.ParseString(sourceName, source)
	if err != nil {
		reportParseError(source, err)
		if pe, ok := err.(participle.Error); ok {
			return ast.Expr[listlang.Op]{}, diag.At(diag.ErrParseFailure, toDiagPosition(pe.Position()), pe.Message())
		}
		return ast.Expr[listlang.Op]{}, diag.New(diag.ErrParseFailure, "surface", err.Error())
	}
	return convert(tree)
}

// ParseFile reads path and parses it as one list-language expression.
func ParseFile(path string) (ast.Expr[listlang.Op], error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return ast.Expr[listlang.Op]{}, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(path, string(source))
}

// reportParseError prints a caret-style parse error to stdout.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
}

func convert(e *Expr) (ast.Expr[listlang.Op], error) {
	pos := toDiagPosition(e.Pos)
	switch {
	case e.Call != nil:
		return convertCall(e.Call)
	case e.Dollar != nil:
		n, err := strconv.Atoi((*e.Dollar)[1:])
		if err != nil {
			return ast.Expr[listlang.Op]{}, diag.At(diag.ErrMalformedLiteral, pos, fmt.Sprintf("malformed de Bruijn index %q: %s", *e.Dollar, err))
		}
		return ast.Leaf(listlang.Var(n)), nil
	case e.Int != nil:
		n, err := strconv.Atoi(*e.Int)
		if err != nil {
			return ast.Expr[listlang.Op]{}, diag.At(diag.ErrMalformedLiteral, pos, fmt.Sprintf("malformed integer literal %q: %s", *e.Int, err))
		}
		return ast.Leaf(listlang.Int(n)), nil
	case e.True != nil:
		return ast.Leaf(listlang.Bool(true)), nil
	case e.False != nil:
		return ast.Leaf(listlang.Bool(false)), nil
	case e.Ident != nil:
		return ast.Leaf(listlang.Ident(*e.Ident)), nil
	default:
		return ast.Expr[listlang.Op]{}, diag.At(diag.ErrParseFailure, pos, "empty expression")
	}
}

func convertCall(c *Call) (ast.Expr[listlang.Op], error) {
	pos := toDiagPosition(c.Pos)

	children := make([]ast.Expr[listlang.Op], len(c.Args))
	for i, a := range c.Args {
		converted, err := convert(a)
		if err != nil {
			return ast.Expr[listlang.Op]{}, err
		}
		children[i] = converted
	}

	op, err := headOp(c.Head, pos)
	if err != nil {
		return ast.Expr[listlang.Op]{}, err
	}
	if !arityOK(op, len(children)) {
		return ast.Expr[listlang.Op]{}, diag.At(diag.ErrArityMismatch, pos, fmt.Sprintf("%q expects %s children, got %d", c.Head, arityDescription(op), len(children)))
	}
	return ast.NewExpr(op, children...), nil
}

func headOp(head string, pos diag.Position) (listlang.Op, error) {
	switch head {
	case "cons":
		return listlang.Cons(), nil
	case "if":
		return listlang.If(), nil
	case "@":
		return listlang.Apply(), nil
	case "λ", "lambda":
		return listlang.Lambda(), nil
	case "let":
		return listlang.Let(), nil
	case "lib":
		return listlang.Lib(), nil
	case "list":
		return listlang.List(), nil
	default:
		return listlang.Op{}, diag.At(diag.ErrUnknownOperator, pos, fmt.Sprintf("unknown operator %q", head))
	}
}

func arityOK(op listlang.Op, n int) bool {
	if op.MaxArity() < 0 {
		return n >= op.MinArity()
	}
	return n >= op.MinArity() && n <= op.MaxArity()
}

func arityDescription(op listlang.Op) string {
	if op.MaxArity() < 0 {
		return fmt.Sprintf("at least %d", op.MinArity())
	}
	if op.MinArity() == op.MaxArity() {
		return strconv.Itoa(op.MinArity())
	}
	return fmt.Sprintf("between %d and %d", op.MinArity(), op.MaxArity())
}

package surface

import "github.com/alecthomas/participle/v2/lexer"

// Expr is the concrete-syntax tree of one list-language expression:
// either a parenthesized prefix call or one of the four bare leaf
// tokens. Exactly one field is non-nil after a successful parse. Pos
// is populated automatically by participle (a magic field by name and
// type) and carries through to diagnostics raised during conversion,
// per the "report which expression and position" ingestion requirement.
type Expr struct {
	Pos lexer.Position

	Call  *Call   `  @@`
	Dollar *string `| @Dollar`
	Int    *string `| @Int`
	True   *string `| @"true"`
	False  *string `| @"false"`
	Ident  *string `| @Ident`
}

// Call is a parenthesized prefix application: "(" head arg* ")". Head
// accepts any identifier-shaped token plus the two symbolic heads (@,
// λ) — not just the recognized operator keywords — so that an
// unrecognized head still parses successfully and is rejected as an
// unknown operator during conversion to ast.Expr (diag.ErrUnknownOperator),
// rather than surfacing as an undifferentiated grammar-level parse
// failure. Arity is likewise validated post-parse, not in the grammar
// itself, since participle has no per-alternative arity constraint. Pos
// locates the call's opening paren, for arity- and unknown-operator
// diagnostics.
type Call struct {
	Pos lexer.Position

	Head string  `"(" @( Ident | "@" | "λ" )`
	Args []*Expr `@@* ")"`
}

package surface

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the list-language's s-expression concrete syntax:
// parens, the two symbolic operators (@ apply, λ lambda, spelled
// "lambda" also accepted), a de Bruijn variable token ($<digits>), an
// integer literal, and a catch-all identifier that also covers the
// keyword heads (cons/if/let/lib/list/true/false) — participle matches
// those as literal strings against Ident tokens, the same way kanso's
// own grammar matches "module" against an Ident-typed token.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Dollar", `\$[0-9]+`, nil},
		{"Int", `[0-9]+`, nil},
		{"Symbol", `[@λ]`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"LParen", `\(`, nil},
		{"RParen", `\)`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})

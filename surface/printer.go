package surface

import (
	"strings"

	"beamlearn/ast"
	"beamlearn/listlang"
)

// Print renders an expression back to the s-expression concrete
// syntax Parse accepts, so the two round-trip.
func Print(e ast.Expr[listlang.Op]) string {
	var b strings.Builder
	print(&b, e)
	return b.String()
}

func print(b *strings.Builder, e ast.Expr[listlang.Op]) {
	if listlang.IsIdent(e.Op) {
		b.WriteString(listlang.IdentName(e.Op))
		return
	}
	if len(e.Children) == 0 && !e.Op.IsListOp() {
		b.WriteString(e.Op.String())
		return
	}

	b.WriteByte('(')
	b.WriteString(e.Op.String())
	for _, c := range e.Children {
		b.WriteByte(' ')
		print(b, c)
	}
	b.WriteByte(')')
}

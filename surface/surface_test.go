package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beamlearn/diag"
)

func mustParse(t *testing.T, source string) string {
	t.Helper()
	e, err := Parse(t.Name(), source)
	require.NoError(t, err)
	return Print(e)
}

func TestParsePrintRoundTripsLeaves(t *testing.T) {
	assert.Equal(t, "true", mustParse(t, "true"))
	assert.Equal(t, "false", mustParse(t, "false"))
	assert.Equal(t, "42", mustParse(t, "42"))
	assert.Equal(t, "$3", mustParse(t, "$3"))
	assert.Equal(t, "foo", mustParse(t, "foo"))
}

func TestParsePrintRoundTripsCalls(t *testing.T) {
	assert.Equal(t, "(cons 1 2)", mustParse(t, "(cons 1 2)"))
	assert.Equal(t, "(if true 1 2)", mustParse(t, "(if true 1 2)"))
	assert.Equal(t, "(@ f x)", mustParse(t, "(@ f x)"))
	assert.Equal(t, "(λ $0)", mustParse(t, "(λ $0)"))
	assert.Equal(t, "(λ $0)", mustParse(t, "(lambda $0)"))
	assert.Equal(t, "(let x 1 x)", mustParse(t, "(let x 1 x)"))
	assert.Equal(t, "(lib f (λ $0) (@ f 1))", mustParse(t, "(lib f (λ $0) (@ f 1))"))
}

func TestParsePrintRoundTripsVariadicList(t *testing.T) {
	assert.Equal(t, "(list)", mustParse(t, "(list)"))
	assert.Equal(t, "(list 1 2 3)", mustParse(t, "(list 1 2 3)"))
}

func TestParseRejectsWrongArity(t *testing.T) {
	_, err := Parse(t.Name(), "(cons 1)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cons")
	de, ok := err.(*diag.Error)
	require.True(t, ok, "expected a *diag.Error, got %T", err)
	assert.Equal(t, diag.ErrArityMismatch, de.Code)
	assert.True(t, de.Position.HasPosition())
	assert.Equal(t, 1, de.Position.Line)

	_, err = Parse(t.Name(), "(if true 1)")
	require.Error(t, err)
	de, ok = err.(*diag.Error)
	require.True(t, ok, "expected a *diag.Error, got %T", err)
	assert.Equal(t, diag.ErrArityMismatch, de.Code)

	_, err = Parse(t.Name(), "(λ)")
	require.Error(t, err)
	de, ok = err.(*diag.Error)
	require.True(t, ok, "expected a *diag.Error, got %T", err)
	assert.Equal(t, diag.ErrArityMismatch, de.Code)
}

func TestParseRejectsMalformedSyntax(t *testing.T) {
	_, err := Parse(t.Name(), "(cons 1 2")
	require.Error(t, err)
	de, ok := err.(*diag.Error)
	require.True(t, ok, "expected a *diag.Error, got %T", err)
	assert.Equal(t, diag.ErrParseFailure, de.Code)
	assert.True(t, de.Position.HasPosition())

	_, err = Parse(t.Name(), "(unknown 1 2)")
	require.Error(t, err)
	de, ok = err.(*diag.Error)
	require.True(t, ok, "expected a *diag.Error, got %T", err)
	assert.Equal(t, diag.ErrUnknownOperator, de.Code)
	assert.True(t, de.Position.HasPosition())
}

func TestParseRejectsMalformedLiterals(t *testing.T) {
	// an out-of-range de Bruijn index overflows strconv.Atoi's int, the
	// one way to drive convert's malformed-literal path through the
	// lexer's own Int/Dollar token patterns (which already only match
	// digit runs).
	_, err := Parse(t.Name(), "$99999999999999999999")
	require.Error(t, err)
	de, ok := err.(*diag.Error)
	require.True(t, ok, "expected a *diag.Error, got %T", err)
	assert.Equal(t, diag.ErrMalformedLiteral, de.Code)
	assert.True(t, de.Position.HasPosition())

	_, err = Parse(t.Name(), "99999999999999999999")
	require.Error(t, err)
	de, ok = err.(*diag.Error)
	require.True(t, ok, "expected a *diag.Error, got %T", err)
	assert.Equal(t, diag.ErrMalformedLiteral, de.Code)
}

func TestParseNestedExpression(t *testing.T) {
	source := "(lib double (λ (cons $0 $0)) (@ double (list 1 2 3)))"
	assert.Equal(t, source, mustParse(t, source))
}

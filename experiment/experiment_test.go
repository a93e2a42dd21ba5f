package experiment

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/commonlog"

	"beamlearn/ast"
	"beamlearn/config"
	"beamlearn/listlang"
	"beamlearn/round"
)

func TestMain(m *testing.M) {
	commonlog.Configure(1, nil)
	os.Exit(m.Run())
}

func smallConfig() config.Beam {
	return config.Beam{
		BeamSize:       50,
		InterBeamSize:  50,
		LPS:            5,
		MaxArity:       3,
		LearnConstants: true,
		NodeLimit:      20_000,
		IterLimit:      5,
		TimeLimit:      2 * time.Second,
	}
}

func nestedConsExpr(a, b, c int) ast.Expr[listlang.Op] {
	inner := ast.NewExpr(listlang.Cons(), ast.Leaf(listlang.Int(a)), ast.Leaf(listlang.Int(b)))
	return ast.NewExpr(listlang.Cons(), inner, ast.Leaf(listlang.Int(c)))
}

func caseFor(name string, seed int) Case[listlang.Op] {
	return Case[listlang.Op]{
		Name: name,
		Input: round.Input[listlang.Op]{
			Groups: [][]ast.Expr[listlang.Op]{
				{nestedConsExpr(seed, seed+1, seed+2)},
				{nestedConsExpr(seed+3, seed+4, seed+5)},
			},
		},
		Config: smallConfig(),
		Rounds: 1,
	}
}

func TestRunBatchRunsEveryCaseAndPreservesOrder(t *testing.T) {
	cases := []Case[listlang.Op]{caseFor("a", 1), caseFor("b", 10), caseFor("c", 20)}

	results := RunBatch[listlang.Op](listlang.Teachable{}, listlang.List(), []listlang.Op{listlang.List()}, cases)

	require.Len(t, results, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, results[i].Name)
		require.NoError(t, results[i].Err)
		require.Len(t, results[i].Summaries, 1)
		assert.Greater(t, results[i].Summaries[0].FinalCost, 0)
	}
}

func TestRunBatchHandlesEmptyCaseList(t *testing.T) {
	results := RunBatch[listlang.Op](listlang.Teachable{}, listlang.List(), []listlang.Op{listlang.List()}, nil)
	assert.Empty(t, results)
}

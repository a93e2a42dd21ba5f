package round

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
)

func TestMain(m *testing.M) {
	commonlog.Configure(1, nil)
	os.Exit(m.Run())
}

func testConfig() config.Beam {
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

func newTestDriver() *Driver[listlang.Op] {
	teach := listlang.Teachable{}
	return NewDriver[listlang.Op](teach, listlang.List(), []listlang.Op{listlang.List()}, testConfig(), commonlog.GetLogger("beamlearn-test"))
}

func consExpr(a, b int) ast.Expr[listlang.Op] {
	return ast.NewExpr(listlang.Cons(), ast.Leaf(listlang.Int(a)), ast.Leaf(listlang.Int(b)))
}

func nestedConsExpr(a, b, c int) ast.Expr[listlang.Op] {
	return ast.NewExpr(listlang.Cons(), consExpr(a, b), ast.Leaf(listlang.Int(c)))
}

func TestRoundProducesSaneSummaryForSimilarExpressions(t *testing.T) {
	d := newTestDriver()
	input := Input[listlang.Op]{
		Groups: [][]ast.Expr[listlang.Op]{
			{nestedConsExpr(1, 2, 3)},
			{nestedConsExpr(4, 5, 6)},
			{nestedConsExpr(7, 8, 9)},
		},
	}

	summary, err := d.Round(input)
	require.NoError(t, err)

	assert.Greater(t, summary.InitialCost, 0)
	assert.Greater(t, summary.FinalCost, 0)
	assert.LessOrEqual(t, summary.FinalCost, summary.InitialCost)
	assert.InDelta(t, float64(summary.FinalCost)/float64(summary.InitialCost), summary.CompressionRatio, 1e-9)

	for _, lib := range summary.ChosenLibs {
		assert.GreaterOrEqual(t, lib.UsageCount, 0)
	}
}

func TestRoundRejectsEmptyInput(t *testing.T) {
	d := newTestDriver()
	_, err := d.Round(Input[listlang.Op]{})
	require.Error(t, err)
}

func TestRoundsFeedsLiftedOutputForward(t *testing.T) {
	d := newTestDriver()
	input := Input[listlang.Op]{
		Groups: [][]ast.Expr[listlang.Op]{
			{nestedConsExpr(1, 2, 3)},
			{nestedConsExpr(4, 5, 6)},
		},
	}

	summaries, err := Rounds[listlang.Op](d, 2, input)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.GreaterOrEqual(t, summaries[0].FinalCost, summaries[1].FinalCost)
}

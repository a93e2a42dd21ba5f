package costset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeLeafIsSingletonCostOne(t *testing.T) {
	cs := Make()
	require.Equal(t, 1, cs.Len())
	assert.Equal(t, LibSel{ExprCost: 1, FullCost: 1}, cs.Best())
}

func TestIncCostBumpsBothFields(t *testing.T) {
	cs := Make()
	cs.IncCost()
	assert.Equal(t, 2, cs.Best().ExprCost)
	assert.Equal(t, 2, cs.Best().FullCost)
}

func TestFullCostInvariant(t *testing.T) {
	ls := LibSel{Libs: []LibCost{{ID: 1, Cost: 3}, {ID: 2, Cost: 4}}, ExprCost: 5, FullCost: 12}
	assert.Equal(t, ls.FullCost, SanityFullCost(ls))
}

func TestCrossCombinesCostsAndUnionsLibs(t *testing.T) {
	a := CostSet{set: []LibSel{{ExprCost: 1, FullCost: 1}}}
	b := CostSet{set: []LibSel{{Libs: []LibCost{{ID: 1, Cost: 3}}, ExprCost: 2, FullCost: 5}}}

	out := Cross(a, b)
	require.Equal(t, 1, out.Len())
	got := out.Best()
	assert.Equal(t, 3, got.ExprCost)
	assert.Equal(t, []LibCost{{ID: 1, Cost: 3}}, got.Libs)
	assert.Equal(t, 6, got.FullCost)
}

func TestUnifyRemovesDominatedElements(t *testing.T) {
	// b is dominated by a: superset libs, no cheaper expr cost.
	a := LibSel{Libs: []LibCost{{ID: 1, Cost: 2}}, ExprCost: 1, FullCost: 3}
	b := LibSel{Libs: []LibCost{{ID: 1, Cost: 2}, {ID: 2, Cost: 5}}, ExprCost: 1, FullCost: 8}
	cs := CostSet{set: []LibSel{a, b}}

	cs.Unify()

	require.Equal(t, 1, cs.Len())
	assert.Equal(t, a, cs.Best())
}

func TestUnifyKeepsIncomparableElements(t *testing.T) {
	a := LibSel{Libs: []LibCost{{ID: 1, Cost: 2}}, ExprCost: 1, FullCost: 3}
	b := LibSel{Libs: []LibCost{{ID: 2, Cost: 2}}, ExprCost: 1, FullCost: 3}
	cs := CostSet{set: []LibSel{a, b}}

	cs.Unify()

	assert.Equal(t, 2, cs.Len())
}

func TestAddLibDeduplicatesSameLibrary(t *testing.T) {
	self := LibSel{ExprCost: 4, FullCost: 4}
	once := self.AddLib(LibID(1), 10)
	twice := once.AddLib(LibID(1), 10)

	assert.Equal(t, once.FullCost, twice.FullCost)
	assert.Len(t, twice.Libs, 1)
}

func TestAddLibSupersetInvariant(t *testing.T) {
	self := LibSel{Libs: []LibCost{{ID: 2, Cost: 1}}, ExprCost: 4, FullCost: 5}
	result := self.AddLib(LibID(1), 7)

	ids := map[LibID]bool{}
	for _, l := range result.Libs {
		ids[l.ID] = true
	}
	assert.True(t, ids[LibID(1)])
	assert.True(t, ids[LibID(2)])
}

func TestPruneKeepsCheapestPrefix(t *testing.T) {
	cs := CostSet{set: []LibSel{
		{ExprCost: 1, FullCost: 1},
		{ExprCost: 2, FullCost: 2},
		{ExprCost: 3, FullCost: 3},
	}}
	cs.Prune(2)

	require.Equal(t, 2, cs.Len())
	assert.Equal(t, 1, cs.At(0).FullCost)
	assert.Equal(t, 2, cs.At(1).FullCost)
}

func TestPruneHonorsBeamCapWithManyIncomparableElements(t *testing.T) {
	const beam = 5
	var set []LibSel
	for i := 0; i < beam+37; i++ {
		set = append(set, LibSel{Libs: []LibCost{{ID: LibID(i), Cost: 1}}, ExprCost: i, FullCost: i})
	}
	cs := CostSet{set: set}
	cs.Unify() // incomparable: distinct single-lib sets, none dominates another
	require.Greater(t, cs.Len(), beam)

	maxKept := cs.At(beam - 1).FullCost
	removed := cs.set[beam:]
	cs.Prune(beam)

	assert.Equal(t, beam, cs.Len())
	for _, r := range removed {
		assert.GreaterOrEqual(t, r.FullCost, maxKept)
	}
}

func TestMergeAlwaysReportsBothChanged(t *testing.T) {
	a := New(Config{BeamSize: 10, InterBeamSize: 10})
	to := Make()
	from := Make()
	toChanged, fromChanged := a.Merge(&to, from)

	assert.True(t, toChanged)
	assert.True(t, fromChanged)
}

func TestAnalysisMakeNaryIncrementsOnceForNode(t *testing.T) {
	a := New(DefaultConfig())
	leaf := Make()
	out := a.MakeNary([]CostSet{leaf, leaf})

	// cross(leaf,leaf) = exprCost 2, then +1 for the node itself = 3.
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 3, out.Best().ExprCost)
}

func TestAnalysisMakeUnaryIncrementsChildCost(t *testing.T) {
	a := New(DefaultConfig())
	out := a.MakeUnary(Make())
	assert.Equal(t, 2, out.Best().ExprCost)
}

func TestAnalysisMakeLibAddsLibraryOnce(t *testing.T) {
	a := New(DefaultConfig())
	value := Make()  // body cost 1
	value.IncCost()  // body cost 2, pretend the lib's value expr costs 2
	body := Make()

	out := a.MakeLib(LibID(7), value, body)

	require.Equal(t, 1, out.Len())
	best := out.Best()
	require.Len(t, best.Libs, 1)
	assert.Equal(t, LibID(7), best.Libs[0].ID)
	assert.Equal(t, 2, best.Libs[0].Cost)
	assert.Equal(t, best.ExprCost+2, best.FullCost)
}

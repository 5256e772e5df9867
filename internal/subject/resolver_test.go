package subject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
)

// evalFunc adapts a function to SetEvaluator.
type evalFunc func(s Subject, set *modifier.RequirementSet) bool

func (f evalFunc) EvaluateSet(_ *gamestate.Snapshot, s Subject, set *modifier.RequirementSet, _ *diag.Collector) bool {
	return f(s, set)
}

var acceptAll = evalFunc(func(Subject, *modifier.RequirementSet) bool { return true })

func testState() *gamestate.Snapshot {
	return &gamestate.Snapshot{
		Player: gamestate.Player{ID: 0},
		Map:    gamestate.Map{Width: 4, Height: 4},
		Cities: []gamestate.City{
			{ID: 1, Name: "Roma", IsCapital: true, Location: 5, PurchasedPlots: []int{5, 6}},
			{ID: 2, Name: "Ostia", IsTown: true, Location: 10, PurchasedPlots: []int{10, 99}},
		},
		Plots: []gamestate.Plot{{Index: 5}, {Index: 6}, {Index: 10}},
		Units: []gamestate.Unit{{ID: 1, Type: "UNIT_SCOUT"}, {ID: 2, Type: "UNIT_GALLEY"}},
	}
}

func mod(collection string) *modifier.Modifier {
	return &modifier.Modifier{ID: "MOD", CollectionType: collection}
}

func collector(t *testing.T) *diag.Collector {
	return diag.NewCollector(zaptest.NewLogger(t), false)
}

func TestResolve_Collections(t *testing.T) {
	state := testState()
	r := NewResolver(acceptAll)

	tests := []struct {
		collection string
		want       []string
	}{
		{CollectionPlayerCapitalCity, []string{"City(1 Roma)"}},
		{CollectionPlayerCities, []string{"City(1 Roma)", "City(2 Ostia)"}},
		{CollectionAllCities, []string{"City(1 Roma)", "City(2 Ostia)"}},
		{CollectionPlayerPlotYields, []string{"Plot(5 of city 1)", "Plot(6 of city 1)", "Plot(10 of city 2)"}},
		{CollectionOwner, []string{"Player(0)"}},
		{CollectionPlayerUnits, []string{"Unit(1 UNIT_SCOUT)", "Unit(2 UNIT_GALLEY)"}},
	}
	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			c := collector(t)
			var got []string
			for _, s := range r.Resolve(state, mod(tt.collection), EmptySubject(), c) {
				got = append(got, s.String())
			}
			assert.Equal(t, tt.want, got)
			assert.Empty(t, c.Entries())
		})
	}
}

func TestResolve_CapitalMissingIsEmptySentinel(t *testing.T) {
	state := testState()
	state.Cities[0].IsCapital = false
	got := NewResolver(acceptAll).Resolve(state, mod(CollectionPlayerCapitalCity), EmptySubject(), collector(t))
	require.Len(t, got, 1)
	assert.Equal(t, Empty, got[0].Kind)
}

func TestResolve_CityPlotYieldsUsesParent(t *testing.T) {
	state := testState()
	r := NewResolver(acceptAll)
	c := collector(t)

	got := r.Resolve(state, mod(CollectionCityPlotYields), CitySubject(&state.Cities[1]), c)
	require.Len(t, got, 1, "plots absent from the snapshot are skipped")
	assert.Equal(t, 10, got[0].Plot.Index)
	assert.Same(t, &state.Cities[1], got[0].City)

	got = r.Resolve(state, mod(CollectionCityPlotYields), EmptySubject(), c)
	assert.Empty(t, got)
	assert.True(t, c.Has(diag.KindError))
}

func TestResolve_UnsupportedAndUnknown(t *testing.T) {
	state := testState()
	r := NewResolver(acceptAll)

	c := collector(t)
	assert.Empty(t, r.Resolve(state, mod(CollectionUnitCombat), EmptySubject(), c))
	assert.True(t, c.Has(diag.KindNoOp))
	assert.False(t, c.Has(diag.KindMissing))

	c = collector(t)
	assert.Empty(t, r.Resolve(state, mod("COLLECTION_EVERYTHING"), EmptySubject(), c))
	assert.True(t, c.Has(diag.KindMissing))
}

func TestResolve_FilterIsStable(t *testing.T) {
	state := testState()
	set := &modifier.RequirementSet{ID: "SET_TOWNS"}
	var seen []*modifier.RequirementSet
	r := NewResolver(evalFunc(func(s Subject, got *modifier.RequirementSet) bool {
		seen = append(seen, got)
		return s.City.IsTown
	}))
	m := mod(CollectionPlayerCities)
	m.SubjectRequirementSet = set

	got := r.Resolve(state, m, EmptySubject(), collector(t))
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].City.ID)
	require.Len(t, seen, 2)
	assert.Same(t, set, seen[0])
}

func TestSubject_PlotIndex(t *testing.T) {
	state := testState()
	idx, ok := CitySubject(&state.Cities[0]).PlotIndex()
	assert.True(t, ok)
	assert.Equal(t, 5, idx)

	idx, ok = UnitSubject(&gamestate.Unit{Plot: 3}).PlotIndex()
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = PlayerSubject(&state.Player).PlotIndex()
	assert.False(t, ok)
	_, ok = EmptySubject().PlotIndex()
	assert.False(t, ok)
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

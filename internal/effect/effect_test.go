package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/requirement"
	"github.com/cory-johannsen/yieldpreview/internal/subject"
	"github.com/cory-johannsen/yieldpreview/internal/yields"
)

func baseTables() *gameinfo.Tables {
	return &gameinfo.Tables{
		TypeTags: []gameinfo.TypeTag{
			{Type: "UNIT_WARRIOR", Tag: "UNIT_CLASS_MELEE"},
			{Type: "BUILDING_MARKET", Tag: "ECONOMIC"},
		},
		Units: []gameinfo.Unit{
			{UnitType: "UNIT_WARRIOR", Domain: "DOMAIN_LAND"},
			{UnitType: "UNIT_GALLEY", Domain: "DOMAIN_SEA"},
		},
		Constructibles: []gameinfo.Constructible{
			{ConstructibleType: "BUILDING_MARKET", ConstructibleClass: "BUILDING"},
			{ConstructibleType: "BUILDING_GRANARY", ConstructibleClass: "BUILDING"},
		},
		AdjacencyYieldChanges: []gameinfo.AdjacencyYieldChange{
			{ID: "ADJ_FOREST", YieldType: "YIELD_PRODUCTION", YieldChange: 2, TilesRequired: 3, AdjacentFeature: "FEATURE_FOREST"},
		},
		ConstructibleAdjacencies: []gameinfo.ConstructibleAdjacency{
			{ConstructibleType: "BUILDING_MARKET", YieldChangeID: "ADJ_FOREST", RequiresActivation: true},
		},
		WarehouseYieldChanges: []gameinfo.WarehouseYieldChange{
			{ID: "WH_GRANARY", YieldType: "YIELD_FOOD", YieldChange: 1.5, ConstructibleInCity: "BUILDING_GRANARY"},
		},
	}
}

// testState places the capital on plot 12 of a 5x5 map; its neighbours are
// 6, 7, 11, 13, 16 and 17.
func testState() *gamestate.Snapshot {
	return &gamestate.Snapshot{
		Player: gamestate.Player{
			ID:                   0,
			ActiveTraditions:     []string{"T1", "T2", "T3"},
			SpentAttributePoints: map[string]int{"ATTRIBUTE_ECONOMIC": 4},
			Relationships: []gamestate.Relationship{
				{PlayerID: 1, Allied: true},
				{PlayerID: 2, IsSuzerain: true},
				{PlayerID: 3, IsSuzerain: true},
			},
		},
		Map: gamestate.Map{Width: 5, Height: 5},
		Cities: []gamestate.City{
			{
				ID: 1, IsCapital: true, Location: 12, Population: 9, Urban: 5, Rural: 2,
				PurchasedPlots: []int{12, 13}, GreatWorks: 2, Resources: []string{"RESOURCE_SALT"},
				Yields: map[string]gamestate.YieldTrace{"YIELD_FOOD": trace(20, 0)},
			},
			{ID: 2, IsTown: true, Location: 0, Population: 3, PurchasedPlots: []int{0}, Resources: []string{"RESOURCE_WINE", "RESOURCE_FISH"}},
		},
		Plots: []gamestate.Plot{
			{Index: 12, Constructibles: []string{"BUILDING_MARKET", "BUILDING_GRANARY"}},
			{Index: 13, Constructibles: []string{"BUILDING_GRANARY"}},
			{Index: 6, Feature: "FEATURE_FOREST"},
			{Index: 7, Feature: "FEATURE_FOREST"},
			{Index: 11, Feature: "FEATURE_FOREST"},
			{Index: 16},
			{Index: 17},
			{Index: 0},
		},
		Units: []gamestate.Unit{
			{ID: 1, Type: "UNIT_WARRIOR", Plot: 12, Maintenance: 1},
			{ID: 2, Type: "UNIT_WARRIOR", Plot: 13, Maintenance: 1},
			{ID: 3, Type: "UNIT_GALLEY", Plot: 0, Maintenance: 3},
			{ID: 4, Type: "UNIT_ARMY_COMMANDER", Plot: 12, IsCommander: true, Level: 3},
		},
	}
}

func trace(base, percent float64) gamestate.YieldTrace {
	return gamestate.YieldTrace{Base: &gamestate.YieldTrace{Steps: []gamestate.YieldTrace{{
		Base:     &gamestate.YieldTrace{Value: base},
		Modifier: &gamestate.YieldTrace{Value: percent},
	}}}}
}

func newContext(t *testing.T, tables *gameinfo.Tables, state *gamestate.Snapshot) *Context {
	t.Helper()
	db := gameinfo.NewDB(tables)
	logger := zaptest.NewLogger(t)
	eval := requirement.NewEvaluator(db)
	baselines := yields.NewBaselineCache()
	baselines.Update(gamestate.NewStaticProvider(state))
	return &Context{
		State:          state,
		DB:             db,
		Delta:          yields.NewDelta(),
		Baselines:      baselines,
		Collector:      diag.NewCollector(logger, false),
		Modifiers:      modifier.NewResolver(db, modifier.NewSetCache(), logger),
		Subjects:       subject.NewResolver(eval),
		Requirements:   eval,
		MaxAttachDepth: 4,
	}
}

func mod(effect string, args map[string]string) *modifier.Modifier {
	a := make(modifier.Arguments, len(args))
	for k, v := range args {
		a[k] = modifier.Argument{Value: v}
	}
	return &modifier.Modifier{ID: "MOD_TEST", EffectType: effect, Arguments: a}
}

func apply(t *testing.T, ctx *Context, s subject.Subject, m *modifier.Modifier) {
	t.Helper()
	require.NoError(t, NewDispatcher().Apply(ctx, s, m))
}

func TestAdjacencyYield_Threshold(t *testing.T) {
	state := testState()
	db := gameinfo.NewDB(baseTables())
	centre, _ := state.Plot(12)
	row, ok := db.AdjacencyYieldChange("ADJ_FOREST")
	require.True(t, ok)

	assert.Equal(t, 6.0, AdjacencyYield(db, state, centre, row), "3 qualifying neighbours * 2")

	state.Plots[4].Feature = ""
	assert.Equal(t, 0.0, AdjacencyYield(db, state, centre, row), "2 of 3 required neighbours contributes nothing")

	row.TilesRequired = 0
	assert.Equal(t, 4.0, AdjacencyYield(db, state, centre, row), "TilesRequired defaults to 1")
}

func TestAdjacencyYield_NarrowWrappedMapCountsNeighbourOnce(t *testing.T) {
	state := &gamestate.Snapshot{
		Map:   gamestate.Map{Width: 2, Height: 1, WrapX: true},
		Plots: []gamestate.Plot{{Index: 0}, {Index: 1, Feature: "FEATURE_FOREST"}},
	}
	db := gameinfo.NewDB(baseTables())
	row, ok := db.AdjacencyYieldChange("ADJ_FOREST")
	require.True(t, ok)
	row.TilesRequired = 1

	centre, _ := state.Plot(0)
	assert.Equal(t, 2.0, AdjacencyYield(db, state, centre, row))
}

func TestAdjacencyYield_SelfAndPredicatelessRowsExcluded(t *testing.T) {
	state := testState()
	db := gameinfo.NewDB(baseTables())
	forest, _ := state.Plot(6)
	row := gameinfo.AdjacencyYieldChange{ID: "ADJ", YieldChange: 1, AdjacentFeature: "FEATURE_FOREST"}
	// 6 is at (1,1); of its neighbours only 7 and 11 are forests.
	assert.Equal(t, 2.0, AdjacencyYield(db, state, forest, row))

	assert.Equal(t, 0.0, AdjacencyYield(db, state, forest, gameinfo.AdjacencyYieldChange{ID: "EMPTY", YieldChange: 1}))
}

func TestMaintenanceReduction(t *testing.T) {
	pct := func(v string) modifier.Arguments { return modifier.Arguments{"Percent": {Value: v}} }

	r, err := MaintenanceReduction(pct("20"), 1, 100)
	require.NoError(t, err)
	assert.InDelta(t, 16.67, r, 0.01)

	r, err = MaintenanceReduction(pct("-20"), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, -20.0, r)

	r, err = MaintenanceReduction(modifier.Arguments{"Amount": {Value: "2"}}, 3, 100)
	require.NoError(t, err)
	assert.Equal(t, 6.0, r)

	_, err = MaintenanceReduction(modifier.Arguments{}, 1, 100)
	assert.ErrorIs(t, err, diag.ErrMissingArgument)
}

func TestApply_CommaSeparatedYieldTypes(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	apply(t, ctx, subject.PlayerSubject(&ctx.State.Player), mod("EFFECT_PLAYER_ADJUST_YIELD",
		map[string]string{"Amount": "5", "YieldType": "YIELD_FOOD, YIELD_PRODUCTION"}))

	assert.Equal(t, map[string]float64{"YIELD_FOOD": 5, "YIELD_PRODUCTION": 5}, ctx.Delta.Amount)
	assert.Empty(t, ctx.Delta.Percent)
	assert.Empty(t, ctx.Delta.AmountNoMultiplier)
}

func TestApply_NewOnlyNeverMutates(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	m := mod("EFFECT_PLAYER_ADJUST_YIELD", map[string]string{"Amount": "5", "YieldType": "YIELD_GOLD"})
	m.NewOnly = true
	apply(t, ctx, subject.PlayerSubject(&ctx.State.Player), m)
	assert.True(t, ctx.Delta.IsZero())
	assert.Empty(t, ctx.Collector.Entries())
}

func TestApply_EmptySubjectNeverMutates(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	apply(t, ctx, subject.EmptySubject(), mod("EFFECT_CITY_ADJUST_YIELD", map[string]string{"Amount": "5", "YieldType": "YIELD_GOLD"}))
	assert.True(t, ctx.Delta.IsZero())
}

func TestApply_UnknownAndNoOpAreDistinguishable(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	player := subject.PlayerSubject(&ctx.State.Player)

	apply(t, ctx, player, mod("EFFECT_UNIT_ADJUST_MOVEMENT", nil))
	apply(t, ctx, player, mod("EFFECT_PLAYER_SUMMON_DRAGON", nil))

	assert.True(t, ctx.Delta.IsZero())
	assert.Equal(t, []string{"effect has no yield contribution: EFFECT_UNIT_ADJUST_MOVEMENT"}, ctx.Collector.Messages(diag.KindNoOp))
	assert.Equal(t, []string{"unhandled effect type EFFECT_PLAYER_SUMMON_DRAGON"}, ctx.Collector.Messages(diag.KindMissing))
	assert.Equal(t, "MOD_TEST", ctx.Collector.Entries()[0].Modifier)
}

func TestApply_MissingYieldTypeIsReported(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	apply(t, ctx, subject.PlayerSubject(&ctx.State.Player), mod("EFFECT_PLAYER_ADJUST_YIELD", map[string]string{"Amount": "5"}))
	assert.True(t, ctx.Delta.IsZero())
	require.True(t, ctx.Collector.Has(diag.KindError))
	assert.Contains(t, ctx.Collector.Messages(diag.KindError)[0], "missing argument: YieldType")
}

func TestApply_KindMismatchIsReported(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	apply(t, ctx, subject.PlayerSubject(&ctx.State.Player), mod("EFFECT_CITY_ADJUST_WORKER_YIELD", map[string]string{"Amount": "1", "YieldType": "YIELD_SCIENCE"}))
	assert.True(t, ctx.Delta.IsZero())
	assert.Contains(t, ctx.Collector.Messages(diag.KindError)[0], "subject kind mismatch")
}

func TestApply_PercentMultiplierRoutesAmount(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	apply(t, ctx, subject.PlayerSubject(&ctx.State.Player), mod("EFFECT_PLAYER_ADJUST_YIELD",
		map[string]string{"Amount": "2", "YieldType": "YIELD_GOLD", "PercentMultiplier": "true"}))
	assert.Equal(t, 2.0, ctx.Delta.AmountNoMultiplier["YIELD_GOLD"])
	assert.Empty(t, ctx.Delta.Amount)
}

func TestApply_PlayerHandlers(t *testing.T) {
	tests := []struct {
		effect string
		args   map[string]string
		want   float64
	}{
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_ACTIVE_TRADITION", nil, 3},
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_NUM_CITIES", nil, 2},
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_NUM_CITIES", map[string]string{"Towns": "true"}, 1},
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_RESOURCE", nil, 3},
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_SUZERAIN", nil, 2},
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_ALLIANCE", nil, 1},
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_CONSTRUCTIBLE", map[string]string{"ConstructibleType": "BUILDING_GRANARY"}, 2},
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_CONSTRUCTIBLE", map[string]string{"Tag": "ECONOMIC"}, 1},
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_GREAT_WORK", nil, 2},
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_COMMANDER_LEVEL", nil, 3},
		{"EFFECT_PLAYER_ADJUST_YIELD_PER_ATTRIBUTE", map[string]string{"AttributeType": "ATTRIBUTE_ECONOMIC"}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.effect, func(t *testing.T) {
			ctx := newContext(t, baseTables(), testState())
			args := map[string]string{"Amount": "1", "YieldType": "YIELD_CULTURE"}
			for k, v := range tt.args {
				args[k] = v
			}
			apply(t, ctx, subject.PlayerSubject(&ctx.State.Player), mod(tt.effect, args))
			assert.Equal(t, tt.want, ctx.Delta.Amount["YIELD_CULTURE"])
			assert.Empty(t, ctx.Collector.Entries())
		})
	}
}

func TestApply_PlayerPercent(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	apply(t, ctx, subject.PlayerSubject(&ctx.State.Player), mod("EFFECT_PLAYER_ADJUST_YIELD", map[string]string{"Percent": "10", "YieldType": "YIELD_GOLD"}))
	assert.Equal(t, 10.0, ctx.Delta.Percent["YIELD_GOLD"])
	assert.Empty(t, ctx.Delta.Amount)
}

func TestApply_PlayerMaintenanceFiltersUnitTypes(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	player := subject.PlayerSubject(&ctx.State.Player)

	apply(t, ctx, player, mod("EFFECT_PLAYER_ADJUST_UNIT_MAINTENANCE_EFFICIENCY", map[string]string{"Amount": "1", "UnitTag": "UNIT_CLASS_RECON, UNIT_CLASS_MELEE"}))
	assert.Equal(t, 2.0, ctx.Delta.AmountNoMultiplier[DefaultMaintenanceYield])

	apply(t, ctx, player, mod("EFFECT_PLAYER_ADJUST_UNIT_MAINTENANCE_EFFICIENCY", map[string]string{"Percent": "-50", "UnitDomain": "DOMAIN_SEA"}))
	assert.Equal(t, 0.5, ctx.Delta.AmountNoMultiplier[DefaultMaintenanceYield])
	assert.Empty(t, ctx.Delta.Amount)
}

func TestIsUnitTypeTarget(t *testing.T) {
	db := gameinfo.NewDB(baseTables())
	assert.True(t, IsUnitTypeTarget(db, "UNIT_WARRIOR", modifier.Arguments{}))
	assert.True(t, IsUnitTypeTarget(db, "UNIT_WARRIOR", modifier.Arguments{"UnitClass": {Value: "UNIT_CLASS_MELEE"}, "UnitDomain": {Value: "DOMAIN_LAND"}}))
	assert.False(t, IsUnitTypeTarget(db, "UNIT_WARRIOR", modifier.Arguments{"UnitDomain": {Value: "DOMAIN_SEA"}}))
	assert.False(t, IsUnitTypeTarget(db, "UNIT_GALLEY", modifier.Arguments{"UnitTag": {Value: "UNIT_CLASS_MELEE"}}))
}

func TestApply_CityHandlers(t *testing.T) {
	tests := []struct {
		effect string
		args   map[string]string
		want   float64
	}{
		{"EFFECT_CITY_ADJUST_YIELD", map[string]string{"Amount": "2"}, 2},
		{"EFFECT_CITY_ADJUST_YIELD", map[string]string{"Percent": "10"}, 2},
		{"EFFECT_CITY_ADJUST_WORKER_YIELD", map[string]string{"Amount": "1"}, 2},
		{"EFFECT_CITY_ADJUST_YIELD_PER_POPULATION", map[string]string{"Amount": "1"}, 9},
		{"EFFECT_CITY_ADJUST_YIELD_PER_POPULATION", map[string]string{"Amount": "1", "Urban": "true", "Divisor": "2"}, 2},
		{"EFFECT_CITY_ADJUST_YIELD_PER_POPULATION", map[string]string{"Amount": "0.5", "Rural": "true"}, 1},
		{"EFFECT_CITY_ADJUST_YIELD_PER_RESOURCE", map[string]string{"Amount": "3"}, 3},
		{"EFFECT_CITY_ADJUST_YIELD_PER_GREAT_WORK", map[string]string{"Amount": "2"}, 4},
		{"EFFECT_CITY_ADJUST_YIELD_PER_ATTRIBUTE", map[string]string{"Amount": "1", "AttributeType": "ATTRIBUTE_MILITARISTIC"}, 0},
		{"EFFECT_CITY_ADJUST_CONSTRUCTIBLE_YIELD", map[string]string{"Amount": "1", "ConstructibleType": "BUILDING_GRANARY"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.effect, func(t *testing.T) {
			ctx := newContext(t, baseTables(), testState())
			args := map[string]string{"YieldType": "YIELD_FOOD"}
			for k, v := range tt.args {
				args[k] = v
			}
			apply(t, ctx, subject.CitySubject(&ctx.State.Cities[0]), mod(tt.effect, args))
			assert.Equal(t, tt.want, ctx.Delta.Amount["YIELD_FOOD"])
			assert.Empty(t, ctx.Collector.Entries())
		})
	}
}

func TestApply_CityPopulationRejectsZeroDivisor(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	apply(t, ctx, subject.CitySubject(&ctx.State.Cities[0]), mod("EFFECT_CITY_ADJUST_YIELD_PER_POPULATION",
		map[string]string{"Amount": "1", "YieldType": "YIELD_FOOD", "Divisor": "0"}))
	assert.True(t, ctx.Delta.IsZero())
	assert.Contains(t, ctx.Collector.Messages(diag.KindError)[0], "invalid argument")
}

func TestApply_WarehouseYield(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	capital := subject.CitySubject(&ctx.State.Cities[0])
	apply(t, ctx, capital, mod("EFFECT_CITY_ACTIVATE_CONSTRUCTIBLE_WAREHOUSE_YIELD", map[string]string{"ConstructibleWarehouseYield": "WH_GRANARY"}))
	assert.Equal(t, 3.0, ctx.Delta.Amount["YIELD_FOOD"])

	apply(t, ctx, capital, mod("EFFECT_CITY_ACTIVATE_CONSTRUCTIBLE_WAREHOUSE_YIELD", map[string]string{"ConstructibleWarehouseYield": "WH_NONE"}))
	assert.True(t, ctx.Collector.Has(diag.KindMissing))
	assert.False(t, ctx.Collector.Has(diag.KindError))
}

func TestApply_ActivateAdjacency(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	apply(t, ctx, subject.CitySubject(&ctx.State.Cities[0]), mod("EFFECT_CITY_ACTIVATE_CONSTRUCTIBLE_ADJACENCY", map[string]string{"ConstructibleAdjacency": "ADJ_FOREST"}))
	assert.Equal(t, 6.0, ctx.Delta.Amount["YIELD_PRODUCTION"], "only the market on plot 12 carries the adjacency")

	ctx = newContext(t, baseTables(), testState())
	plot, _ := ctx.State.Plot(13)
	apply(t, ctx, subject.PlotSubject(&ctx.State.Cities[0], plot), mod("EFFECT_PLOT_ACTIVATE_CONSTRUCTIBLE_ADJACENCY", map[string]string{"ConstructibleAdjacency": "ADJ_FOREST"}))
	assert.True(t, ctx.Delta.IsZero())
}

func TestApply_UnitHandlers(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	apply(t, ctx, subject.UnitSubject(&ctx.State.Units[2]), mod("EFFECT_UNIT_ADJUST_MAINTENANCE_EFFICIENCY", map[string]string{"Percent": "50"}))
	assert.InDelta(t, 1.0, ctx.Delta.AmountNoMultiplier[DefaultMaintenanceYield], 1e-9)

	apply(t, ctx, subject.UnitSubject(&ctx.State.Units[3]), mod("EFFECT_UNIT_ADJUST_YIELD_PER_COMMANDER_LEVEL", map[string]string{"Amount": "1", "YieldType": "YIELD_SCIENCE"}))
	apply(t, ctx, subject.UnitSubject(&ctx.State.Units[0]), mod("EFFECT_UNIT_ADJUST_YIELD_PER_COMMANDER_LEVEL", map[string]string{"Amount": "1", "YieldType": "YIELD_SCIENCE"}))
	assert.Equal(t, 3.0, ctx.Delta.Amount["YIELD_SCIENCE"])
}

func TestApply_PlotAdjustYield(t *testing.T) {
	ctx := newContext(t, baseTables(), testState())
	plot, _ := ctx.State.Plot(13)
	apply(t, ctx, subject.PlotSubject(&ctx.State.Cities[0], plot), mod("EFFECT_PLOT_ADJUST_YIELD", map[string]string{"Amount": "1", "YieldType": "YIELD_FOOD"}))
	apply(t, ctx, subject.CitySubject(&ctx.State.Cities[0]), mod("EFFECT_PLOT_ADJUST_YIELD", map[string]string{"Amount": "1", "YieldType": "YIELD_FOOD"}))
	assert.Equal(t, 2.0, ctx.Delta.Amount["YIELD_FOOD"])
}

func attachTables() *gameinfo.Tables {
	t := baseTables()
	t.Modifiers = []gameinfo.Modifier{
		{ModifierID: "MOD_ATTACH", ModifierType: "MT_ATTACH_TO_CITIES"},
		{ModifierID: "MOD_PLOT_FOOD", ModifierType: "MT_CITY_PLOT_YIELD"},
		{ModifierID: "MOD_LOOP_A", ModifierType: "MT_ATTACH_TO_CITIES"},
		{ModifierID: "MOD_LOOP_B", ModifierType: "MT_ATTACH_TO_CITIES"},
	}
	t.DynamicModifiers = []gameinfo.DynamicModifier{
		{ModifierType: "MT_ATTACH_TO_CITIES", CollectionType: subject.CollectionPlayerCities, EffectType: EffectAttachModifiers},
		{ModifierType: "MT_CITY_PLOT_YIELD", CollectionType: subject.CollectionCityPlotYields, EffectType: "EFFECT_PLOT_ADJUST_YIELD"},
	}
	t.ModifierArguments = []gameinfo.ModifierArgument{
		{ModifierID: "MOD_ATTACH", Name: "ModifierId", Value: "MOD_PLOT_FOOD"},
		{ModifierID: "MOD_PLOT_FOOD", Name: "Amount", Value: "1"},
		{ModifierID: "MOD_PLOT_FOOD", Name: "YieldType", Value: "YIELD_FOOD"},
		{ModifierID: "MOD_LOOP_A", Name: "ModifierId", Value: "MOD_LOOP_B"},
		{ModifierID: "MOD_LOOP_B", Name: "ModifierId", Value: "MOD_LOOP_A"},
	}
	return t
}

func TestApply_AttachModifiersUsesParentCity(t *testing.T) {
	ctx := newContext(t, attachTables(), testState())
	m, err := ctx.Modifiers.Resolve("MOD_ATTACH")
	require.NoError(t, err)

	capital := subject.CitySubject(&ctx.State.Cities[0])
	apply(t, ctx, capital, m)
	assert.Equal(t, 2.0, ctx.Delta.Amount["YIELD_FOOD"], "one per purchased plot of the parent city")
	assert.Empty(t, ctx.Collector.Entries())
}

func TestApply_AttachCycleFailsLoudly(t *testing.T) {
	ctx := newContext(t, attachTables(), testState())
	m, err := ctx.Modifiers.Resolve("MOD_LOOP_A")
	require.NoError(t, err)

	err = NewDispatcher().Apply(ctx, subject.CitySubject(&ctx.State.Cities[0]), m)
	assert.ErrorIs(t, err, ErrAttachCycle)
	assert.Len(t, ctx.Collector.Messages(diag.KindError), 1, "reported once, where detected")
	assert.True(t, ctx.Delta.IsZero())
}

func TestApply_AttachMissingModifierIsMissing(t *testing.T) {
	ctx := newContext(t, attachTables(), testState())
	apply(t, ctx, subject.CitySubject(&ctx.State.Cities[0]), mod(EffectAttachModifiers, map[string]string{"ModifierId": "MOD_GONE"}))
	assert.True(t, ctx.Collector.Has(diag.KindMissing))
	assert.False(t, ctx.Collector.Has(diag.KindError))
}

func TestDispatcher_Register(t *testing.T) {
	d := NewDispatcher()
	assert.Error(t, d.Register("EFFECT_CITY_ADJUST_YIELD", nil))
	assert.Error(t, d.RegisterNoOp("EFFECT_UNIT_ADJUST_MOVEMENT"))
	require.NoError(t, d.RegisterNoOp("EFFECT_PLAYER_ADJUST_SPY_COUNT"))
	require.NoError(t, d.Register("EFFECT_PLAYER_GRANT_FLAT_GOLD", func(ctx *Context, _ subject.Subject, _ *modifier.Modifier) error {
		ctx.Delta.AddAmount("YIELD_GOLD", 1)
		ctx.Diag().NoOp("granted")
		return nil
	}))

	ctx := newContext(t, baseTables(), testState())
	require.NoError(t, d.Apply(ctx, subject.PlayerSubject(&ctx.State.Player), mod("EFFECT_PLAYER_GRANT_FLAT_GOLD", nil)))
	assert.Equal(t, 1.0, ctx.Delta.Amount["YIELD_GOLD"])
	assert.Equal(t, []diag.Entry{{Kind: diag.KindNoOp, Modifier: "MOD_TEST", Message: "granted"}}, ctx.Collector.Entries())
}

func TestApplyAll_StrictFailureDropsOnlyThatModifier(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register("EFFECT_TEST_HALF_APPLIED", func(ctx *Context, s subject.Subject, _ *modifier.Modifier) error {
		ctx.Delta.AddAmount("YIELD_GOLD", 10)
		if s.Kind == subject.City && s.City.IsTown {
			ctx.Diag().Error("town has no treasury")
		}
		return nil
	}))

	ctx := newContext(t, baseTables(), testState())
	ctx.Collector = diag.NewCollector(zaptest.NewLogger(t, zaptest.WrapOptions(zap.Development())), true)
	cities := []subject.Subject{subject.CitySubject(&ctx.State.Cities[0]), subject.CitySubject(&ctx.State.Cities[1])}

	require.NotPanics(t, func() {
		require.NoError(t, d.ApplyAll(ctx, mod("EFFECT_TEST_HALF_APPLIED", nil), cities))
	})
	assert.Zero(t, ctx.Delta.Amount["YIELD_GOLD"], "partial contribution discarded")
	assert.Equal(t, []string{"town has no treasury"}, ctx.Collector.Messages(diag.KindError))

	require.NoError(t, d.ApplyAll(ctx, mod("EFFECT_PLAYER_ADJUST_YIELD", map[string]string{"Amount": "2", "YieldType": "YIELD_GOLD"}),
		[]subject.Subject{subject.PlayerSubject(&ctx.State.Player)}))
	assert.Equal(t, 2.0, ctx.Delta.Amount["YIELD_GOLD"])
}

func TestApplyAll_UnexpectedPanicPropagates(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register("EFFECT_TEST_BUG", func(*Context, subject.Subject, *modifier.Modifier) error {
		panic("index out of range")
	}))
	ctx := newContext(t, baseTables(), testState())
	assert.PanicsWithValue(t, "index out of range", func() {
		_ = d.Apply(ctx, subject.PlayerSubject(&ctx.State.Player), mod("EFFECT_TEST_BUG", nil))
	})
}

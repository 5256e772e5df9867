package subject

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/observability"
)

// Collection types.
const (
	CollectionPlayerCapitalCity       = "COLLECTION_PLAYER_CAPITAL_CITY"
	CollectionPlayerCities            = "COLLECTION_PLAYER_CITIES"
	CollectionAllCities               = "COLLECTION_ALL_CITIES"
	CollectionPlayerPlotYields        = "COLLECTION_PLAYER_PLOT_YIELDS"
	CollectionOwner                   = "COLLECTION_OWNER"
	CollectionCityPlotYields          = "COLLECTION_CITY_PLOT_YIELDS"
	CollectionPlayerUnits             = "COLLECTION_PLAYER_UNITS"
	CollectionAllUnits                = "COLLECTION_ALL_UNITS"
	CollectionPlayerCombat            = "COLLECTION_PLAYER_COMBAT"
	CollectionUnitCombat              = "COLLECTION_UNIT_COMBAT"
	CollectionCitiesFollowingReligion = "COLLECTION_CITIES_FOLLOWING_OWNER_RELIGION"
)

// unsupported collections are recognised but never yield subjects: their
// effects are combat-time or outside the local player's economy.
var unsupported = map[string]struct{}{
	CollectionAllUnits:                {},
	CollectionPlayerCombat:            {},
	CollectionUnitCombat:              {},
	CollectionCitiesFollowingReligion: {},
}

// SetEvaluator decides whether a subject satisfies a requirement set.
type SetEvaluator interface {
	EvaluateSet(state *gamestate.Snapshot, s Subject, set *modifier.RequirementSet, c *diag.Collector) bool
}

// Resolver expands collections and filters by subject requirements.
type Resolver struct {
	eval SetEvaluator
}

// NewResolver creates a Resolver.
//
// Precondition: eval must not be nil.
func NewResolver(eval SetEvaluator) *Resolver {
	return &Resolver{eval: eval}
}

// Resolve returns the subjects m applies to, in collection order. parent is
// the subject matched by an attaching modifier, or EmptySubject.
func (r *Resolver) Resolve(state *gamestate.Snapshot, m *modifier.Modifier, parent Subject, c *diag.Collector) []Subject {
	base := r.base(state, m.CollectionType, parent, c)
	out := base[:0:0]
	for _, s := range base {
		if r.eval.EvaluateSet(state, s, m.SubjectRequirementSet, c) {
			out = append(out, s)
		}
	}
	return out
}

func (r *Resolver) base(state *gamestate.Snapshot, collection string, parent Subject, c *diag.Collector) []Subject {
	switch collection {
	case CollectionPlayerCapitalCity:
		if capital, ok := state.Capital(); ok {
			return []Subject{CitySubject(capital)}
		}
		return []Subject{EmptySubject()}

	case CollectionPlayerCities, CollectionAllCities:
		out := make([]Subject, 0, len(state.Cities))
		for i := range state.Cities {
			out = append(out, CitySubject(&state.Cities[i]))
		}
		return out

	case CollectionPlayerPlotYields:
		var out []Subject
		for i := range state.Cities {
			out = append(out, cityPlots(state, &state.Cities[i])...)
		}
		return out

	case CollectionOwner:
		return []Subject{PlayerSubject(&state.Player)}

	case CollectionCityPlotYields:
		switch parent.Kind {
		case City, Plot:
			return cityPlots(state, parent.City)
		default:
			c.Error("COLLECTION_CITY_PLOT_YIELDS requires a parent city",
				zap.String(observability.FieldCollection, collection), zap.Stringer("parent", parent))
			return nil
		}

	case CollectionPlayerUnits:
		out := make([]Subject, 0, len(state.Units))
		for i := range state.Units {
			out = append(out, UnitSubject(&state.Units[i]))
		}
		return out
	}

	if _, ok := unsupported[collection]; ok {
		c.NoOp("collection not previewed", zap.String(observability.FieldCollection, collection))
		return nil
	}
	c.Missing("unhandled collection type "+collection, zap.String(observability.FieldCollection, collection))
	return nil
}

func cityPlots(state *gamestate.Snapshot, city *gamestate.City) []Subject {
	out := make([]Subject, 0, len(city.PurchasedPlots))
	for _, idx := range city.PurchasedPlots {
		if p, ok := state.Plot(idx); ok {
			out = append(out, PlotSubject(city, p))
		}
	}
	return out
}

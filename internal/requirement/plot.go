package requirement

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
)

// ConstructibleClassBuilding is the class whose constructibles form quarters.
const ConstructibleClassBuilding = "BUILDING"

func plotPredicates() map[string]entry {
	plot := func(fn Predicate) entry { return entry{scope: ScopePlot, fn: fn} }
	return map[string]entry{
		"REQUIREMENT_PLOT_DISTRICT_CLASS": plot(plotDistrictClass),
		"REQUIREMENT_PLOT_RESOURCE_VISIBLE": plot(func(q Query, _ modifier.Arguments) (bool, error) {
			return q.Plot.Resource != "" && q.Plot.Revealed, nil
		}),
		"REQUIREMENT_PLOT_IS_COASTAL_LAND": plot(func(q Query, _ modifier.Arguments) (bool, error) {
			return q.Plot.CoastalLand, nil
		}),
		"REQUIREMENT_PLOT_ADJACENT_TO_COAST": plot(func(q Query, _ modifier.Arguments) (bool, error) {
			if q.Plot.CoastalLand {
				return true, nil
			}
			for _, n := range q.State.Neighbours(q.Plot.Index) {
				if n.CoastalLand {
					return true, nil
				}
			}
			return false, nil
		}),
		"REQUIREMENT_PLOT_HAS_CONSTRUCTIBLE": plot(plotHasConstructible),
		"REQUIREMENT_PLOT_HAS_NUM_CONSTRUCTIBLES": plot(func(q Query, args modifier.Arguments) (bool, error) {
			n, err := threshold(args)
			if err != nil {
				return false, err
			}
			return len(q.Plot.Constructibles) >= n, nil
		}),
		"REQUIREMENT_PLOT_IS_QUARTER": plot(func(q Query, _ modifier.Arguments) (bool, error) {
			return IsQuarter(q.DB, q.Plot.Constructibles), nil
		}),
		"REQUIREMENT_PLOT_TERRAIN_TYPE_MATCHES": plot(func(q Query, args modifier.Arguments) (bool, error) {
			return matchesList(args, "TerrainType", q.Plot.Terrain)
		}),
		"REQUIREMENT_PLOT_BIOME_TYPE_MATCHES": plot(func(q Query, args modifier.Arguments) (bool, error) {
			return matchesList(args, "BiomeType", q.Plot.Biome)
		}),
		"REQUIREMENT_PLOT_FEATURE_TYPE_MATCHES": plot(func(q Query, args modifier.Arguments) (bool, error) {
			return matchesList(args, "FeatureType", q.Plot.Feature)
		}),
		"REQUIREMENT_PLOT_ADJACENT_TO_RIVER": plot(func(q Query, _ modifier.Arguments) (bool, error) {
			return q.Plot.River, nil
		}),
		"REQUIREMENT_PLOT_IS_HILLS": plot(func(q Query, _ modifier.Arguments) (bool, error) {
			t, ok := q.DB.Terrain(q.Plot.Terrain)
			return ok && t.Hills, nil
		}),
		"REQUIREMENT_PLOT_IS_MOUNTAIN": plot(func(q Query, _ modifier.Arguments) (bool, error) {
			t, ok := q.DB.Terrain(q.Plot.Terrain)
			return ok && t.Mountain, nil
		}),
		"REQUIREMENT_PLOT_IS_WATER": plot(func(q Query, _ modifier.Arguments) (bool, error) {
			t, ok := q.DB.Terrain(q.Plot.Terrain)
			return ok && t.Water, nil
		}),
	}
}

// plotDistrictClass holds when the plot's district class is in the
// comma-separated DistrictClass argument.
func plotDistrictClass(q Query, args modifier.Arguments) (bool, error) {
	classes := args.List("DistrictClass")
	if len(classes) == 0 {
		return false, fmt.Errorf("%w: DistrictClass", diag.ErrMissingArgument)
	}
	if q.Plot.District == "" {
		return false, nil
	}
	d, ok := q.DB.District(q.Plot.District)
	if !ok {
		return false, nil
	}
	return slices.Contains(classes, d.DistrictClass), nil
}

func plotHasConstructible(q Query, args modifier.Arguments) (bool, error) {
	switch {
	case args.Has("ConstructibleType"):
		return slices.Contains(q.Plot.Constructibles, args.String("ConstructibleType")), nil
	case args.Has("Tag"):
		tag := args.String("Tag")
		return slices.ContainsFunc(q.Plot.Constructibles, func(c string) bool { return q.DB.HasTypeTag(c, tag) }), nil
	}
	return false, fmt.Errorf("%w: ConstructibleType or Tag", diag.ErrMissingArgument)
}

func matchesList(args modifier.Arguments, name, value string) (bool, error) {
	want := args.List(name)
	if len(want) == 0 {
		return false, fmt.Errorf("%w: %s", diag.ErrMissingArgument, name)
	}
	return slices.Contains(want, value), nil
}

// IsQuarter reports whether at least two of constructibles are buildings.
func IsQuarter(db *gameinfo.DB, constructibles []string) bool {
	n := 0
	for _, c := range constructibles {
		if row, ok := db.Constructible(c); ok && row.ConstructibleClass == ConstructibleClassBuilding {
			n++
		}
	}
	return n >= 2
}

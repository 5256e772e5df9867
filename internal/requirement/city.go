package requirement

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
)

func cityPredicates() map[string]entry {
	city := func(fn Predicate) entry { return entry{scope: ScopeCity, fn: fn} }
	return map[string]entry{
		"REQUIREMENT_CITY_IS_CAPITAL": city(func(q Query, _ modifier.Arguments) (bool, error) {
			return q.City.IsCapital, nil
		}),
		"REQUIREMENT_CITY_IS_CITY": city(func(q Query, _ modifier.Arguments) (bool, error) {
			return !q.City.IsTown, nil
		}),
		"REQUIREMENT_CITY_IS_TOWN": city(func(q Query, _ modifier.Arguments) (bool, error) {
			return q.City.IsTown, nil
		}),
		"REQUIREMENT_CITY_IS_ORIGINAL_OWNER": city(func(q Query, _ modifier.Arguments) (bool, error) {
			return q.City.OriginalOwner == q.Player.ID, nil
		}),
		"REQUIREMENT_CITY_IS_DISTANT_LANDS": city(func(q Query, _ modifier.Arguments) (bool, error) {
			return q.City.IsDistantLands, nil
		}),
		"REQUIREMENT_CITY_HAS_BUILDING":     city(cityHasBuilding),
		"REQUIREMENT_CITY_HAS_PROJECT":      city(cityHasProject),
		"REQUIREMENT_CITY_HAS_TERRAIN":      city(cityHasTerrain),
		"REQUIREMENT_CITY_POPULATION":       city(cityPopulation),
		"REQUIREMENT_CITY_FOLLOWS_RELIGION": city(cityFollowsReligion),
		"REQUIREMENT_CITY_HAS_RESOURCE":     city(cityHasResource),
		"REQUIREMENT_CITY_HAS_SPECIALISTS": city(func(q Query, args modifier.Arguments) (bool, error) {
			n, err := threshold(args)
			if err != nil {
				return false, err
			}
			return q.City.Specialists() >= n, nil
		}),
	}
}

// cityHasBuilding matches BuildingType exactly, or any building carrying Tag.
func cityHasBuilding(q Query, args modifier.Arguments) (bool, error) {
	built := q.State.Constructibles(q.City)
	if args.Has("BuildingType") {
		return slices.Contains(built, args.String("BuildingType")), nil
	}
	if args.Has("Tag") {
		tag := args.String("Tag")
		return slices.ContainsFunc(built, func(c string) bool { return q.DB.HasTypeTag(c, tag) }), nil
	}
	return false, fmt.Errorf("%w: BuildingType or Tag", diag.ErrMissingArgument)
}

func cityHasProject(q Query, args modifier.Arguments) (bool, error) {
	if args.Bool("HasAnyProject") {
		return q.City.Project != "", nil
	}
	want, err := required(args, "ProjectType")
	if err != nil {
		return false, err
	}
	return q.City.Project == want, nil
}

// cityHasTerrain counts purchased plots of TerrainType against Amount.
func cityHasTerrain(q Query, args modifier.Arguments) (bool, error) {
	terrain, err := required(args, "TerrainType")
	if err != nil {
		return false, err
	}
	n, err := threshold(args)
	if err != nil {
		return false, err
	}
	count := 0
	for _, idx := range q.City.PurchasedPlots {
		if p, ok := q.State.Plot(idx); ok && p.Terrain == terrain {
			count++
		}
	}
	return count >= n, nil
}

func cityPopulation(q Query, args modifier.Arguments) (bool, error) {
	switch {
	case args.Has("MinUrbanPopulation"):
		return minimum(args, "MinUrbanPopulation", q.City.Urban)
	case args.Has("MinRuralPopulation"):
		return minimum(args, "MinRuralPopulation", q.City.Rural)
	case args.Has("MinPopulation"):
		return minimum(args, "MinPopulation", q.City.Population)
	}
	return false, fmt.Errorf("%w: MinUrbanPopulation, MinRuralPopulation or MinPopulation", diag.ErrMissingArgument)
}

// cityFollowsReligion holds when the city's majority religion is the
// player's. hasReligion fails players without one; cityReligion fails cities
// without one.
func cityFollowsReligion(q Query, args modifier.Arguments) (bool, error) {
	if q.Player.Religion == "" && args.Bool("hasReligion") {
		return false, nil
	}
	if q.City.MajorityReligion == "" && args.Bool("cityReligion") {
		return false, nil
	}
	return q.City.MajorityReligion == q.Player.Religion, nil
}

// cityHasResource counts the city's resources, optionally of ResourceType.
func cityHasResource(q Query, args modifier.Arguments) (bool, error) {
	n, err := threshold(args)
	if err != nil {
		return false, err
	}
	count := len(q.City.Resources)
	if args.Has("ResourceType") {
		count = 0
		for _, r := range q.City.Resources {
			if r == args.String("ResourceType") {
				count++
			}
		}
	}
	return count >= n, nil
}

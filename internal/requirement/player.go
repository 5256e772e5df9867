package requirement

import (
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
)

func playerPredicates() map[string]entry {
	player := func(fn Predicate) entry { return entry{scope: ScopePlayer, fn: fn} }
	return map[string]entry{
		"REQUIREMENT_PLAYER_IS_AT_PEACE_WITH_ALL_MAJORS": player(func(q Query, _ modifier.Arguments) (bool, error) {
			for _, r := range q.Player.Relationships {
				if r.IsMajor && r.AtWar {
					return false, nil
				}
			}
			return true, nil
		}),
		"REQUIREMENT_PLAYER_HAS_NUM_ALLIANCES": player(func(q Query, args modifier.Arguments) (bool, error) {
			return countRelationships(q.Player, args, func(r gamestate.Relationship) bool { return r.Allied })
		}),
		"REQUIREMENT_PLAYER_HAS_NUM_SUZERAINS": player(func(q Query, args modifier.Arguments) (bool, error) {
			return countRelationships(q.Player, args, func(r gamestate.Relationship) bool { return r.IsSuzerain })
		}),
		"REQUIREMENT_PLAYER_HAS_CIVILIZATION_OR_LEADER_TRAIT": player(func(q Query, args modifier.Arguments) (bool, error) {
			trait, err := required(args, "TraitType")
			if err != nil {
				return false, err
			}
			return q.DB.LeaderHasTrait(q.Player.LeaderType, trait) ||
				q.DB.CivilizationHasTrait(q.Player.CivilizationType, trait), nil
		}),
		"REQUIREMENT_PLAYER_HAS_NUM_CITIES": player(func(q Query, args modifier.Arguments) (bool, error) {
			n, err := threshold(args)
			if err != nil {
				return false, err
			}
			cities, towns := CityKinds(args)
			return q.State.NumCities(cities, towns) >= n, nil
		}),
	}
}

// CityKinds reads the Cities and Towns flags. Neither set counts both.
func CityKinds(args modifier.Arguments) (cities, towns bool) {
	cities, towns = args.Bool("Cities"), args.Bool("Towns")
	if !cities && !towns {
		return true, true
	}
	return cities, towns
}

func countRelationships(p *gamestate.Player, args modifier.Arguments, match func(gamestate.Relationship) bool) (bool, error) {
	n, err := threshold(args)
	if err != nil {
		return false, err
	}
	count := 0
	for _, r := range p.Relationships {
		if match(r) {
			count++
		}
	}
	return count >= n, nil
}

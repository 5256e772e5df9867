package effect

import (
	"fmt"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/requirement"
	"github.com/cory-johannsen/yieldpreview/internal/subject"
)

// Player effects read the owning player whatever the subject.
func playerHandlers() map[string]Handler {
	return map[string]Handler{
		"EFFECT_PLAYER_ADJUST_YIELD": func(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
			switch {
			case m.Arguments.Has("Percent"):
				p, err := m.Arguments.Float("Percent")
				if err != nil {
					return err
				}
				return addPercent(ctx, m, p)
			case m.Arguments.Has("Amount"):
				return perCount(ctx, m, 1)
			}
			return fmt.Errorf("%w: Amount or Percent", diag.ErrMissingArgument)
		},
		"EFFECT_PLAYER_ADJUST_YIELD_PER_ACTIVE_TRADITION": func(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
			return perCount(ctx, m, len(ctx.State.Player.ActiveTraditions))
		},
		"EFFECT_PLAYER_ADJUST_YIELD_PER_NUM_CITIES": func(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
			cities, towns := requirement.CityKinds(m.Arguments)
			return perCount(ctx, m, ctx.State.NumCities(cities, towns))
		},
		"EFFECT_PLAYER_ADJUST_YIELD_PER_RESOURCE": func(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
			n := 0
			for _, c := range ctx.State.Cities {
				n += len(c.Resources)
			}
			return perCount(ctx, m, n)
		},
		"EFFECT_PLAYER_ADJUST_YIELD_PER_SUZERAIN": func(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
			return perCount(ctx, m, countRelationships(&ctx.State.Player, func(r gamestate.Relationship) bool { return r.IsSuzerain }))
		},
		"EFFECT_PLAYER_ADJUST_YIELD_PER_ALLIANCE": func(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
			return perCount(ctx, m, countRelationships(&ctx.State.Player, func(r gamestate.Relationship) bool { return r.Allied }))
		},
		"EFFECT_PLAYER_ADJUST_YIELD_PER_CONSTRUCTIBLE": func(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
			n := 0
			for i := range ctx.State.Cities {
				k, err := countConstructibles(ctx.DB, m.Arguments, ctx.State.Constructibles(&ctx.State.Cities[i]))
				if err != nil {
					return err
				}
				n += k
			}
			return perCount(ctx, m, n)
		},
		"EFFECT_PLAYER_ADJUST_YIELD_PER_GREAT_WORK": func(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
			n := 0
			for _, c := range ctx.State.Cities {
				n += c.GreatWorks
			}
			return perCount(ctx, m, n)
		},
		"EFFECT_PLAYER_ADJUST_YIELD_PER_COMMANDER_LEVEL": func(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
			n := 0
			for _, u := range ctx.State.Units {
				if u.IsCommander {
					n += u.Level
				}
			}
			return perCount(ctx, m, n)
		},
		"EFFECT_PLAYER_ADJUST_YIELD_PER_ATTRIBUTE": perAttribute,
		"EFFECT_PLAYER_ADJUST_UNIT_MAINTENANCE_EFFICIENCY": func(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
			total := 0.0
			for _, ut := range ctx.State.UnitTypes() {
				if !IsUnitTypeTarget(ctx.DB, ut.Type, m.Arguments) {
					continue
				}
				r, err := MaintenanceReduction(m.Arguments, ut.Count, ut.Maintenance)
				if err != nil {
					return err
				}
				total += r
			}
			addMaintenance(ctx, m, total)
			return nil
		},
	}
}

// perAttribute adds Amount per attribute point the player spent in AttributeType.
func perAttribute(ctx *Context, _ subject.Subject, m *modifier.Modifier) error {
	attr, err := requiredArg(m, "AttributeType")
	if err != nil {
		return err
	}
	return perCount(ctx, m, ctx.State.Player.SpentAttributePoints[attr])
}

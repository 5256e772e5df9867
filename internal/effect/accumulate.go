package effect

import (
	"fmt"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/subject"
	"github.com/cory-johannsen/yieldpreview/internal/yields"
)

// DefaultMaintenanceYield receives maintenance reductions when the modifier
// names no YieldType.
const DefaultMaintenanceYield = "YIELD_GOLD"

func yieldTypes(m *modifier.Modifier) ([]string, error) {
	types := yields.ParseYieldTypes(m.Arguments.String("YieldType"))
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: YieldType", diag.ErrMissingArgument)
	}
	return types, nil
}

// addAmount adds amount to every yield type of m. PercentMultiplier routes
// it past the player's percent bonuses.
func addAmount(ctx *Context, m *modifier.Modifier, amount float64) error {
	types, err := yieldTypes(m)
	if err != nil {
		return err
	}
	noMultiplier := m.Arguments.Bool("PercentMultiplier")
	for _, t := range types {
		if noMultiplier {
			ctx.Delta.AddAmountNoMultiplier(t, amount)
		} else {
			ctx.Delta.AddAmount(t, amount)
		}
	}
	return nil
}

func addPercent(ctx *Context, m *modifier.Modifier, percent float64) error {
	types, err := yieldTypes(m)
	if err != nil {
		return err
	}
	for _, t := range types {
		ctx.Delta.AddPercent(t, percent)
	}
	return nil
}

// addCityPercent converts percent of the city's own baseline into a flat
// amount.
func addCityPercent(ctx *Context, m *modifier.Modifier, city *gamestate.City, percent float64) error {
	types, err := yieldTypes(m)
	if err != nil {
		return err
	}
	baseline := ctx.Baselines.City(city.ID)
	for _, t := range types {
		ctx.Delta.AddAmount(t, baseline[t].BaseAmount*percent/100)
	}
	return nil
}

// perCount adds Amount * count.
func perCount(ctx *Context, m *modifier.Modifier, count int) error {
	amount, err := m.Arguments.Float("Amount")
	if err != nil {
		return err
	}
	return addAmount(ctx, m, amount*float64(count))
}

// MaintenanceReduction converts a maintenance efficiency into the gold saved
// on count units costing cost in total. A flat Amount saves Amount per unit.
// A positive Percent is a yield increase, so it saves cost - cost/(1+p/100);
// a negative Percent scales the cost directly.
func MaintenanceReduction(args modifier.Arguments, count int, cost float64) (float64, error) {
	if args.Has("Amount") {
		a, err := args.Float("Amount")
		if err != nil {
			return 0, err
		}
		return a * float64(count), nil
	}
	if args.Has("Percent") {
		p, err := args.Float("Percent")
		if err != nil {
			return 0, err
		}
		p /= 100
		if p > 0 {
			return cost - cost/(1+p), nil
		}
		return cost * p, nil
	}
	return 0, fmt.Errorf("%w: Amount or Percent", diag.ErrMissingArgument)
}

func addMaintenance(ctx *Context, m *modifier.Modifier, reduction float64) {
	types := yields.ParseYieldTypes(m.Arguments.String("YieldType"))
	if len(types) == 0 {
		types = []string{DefaultMaintenanceYield}
	}
	for _, t := range types {
		ctx.Delta.AddAmountNoMultiplier(t, reduction)
	}
}

// matchesConstructible tests c against the ConstructibleType or Tag argument.
func matchesConstructible(db *gameinfo.DB, args modifier.Arguments, c string) (bool, error) {
	switch {
	case args.Has("ConstructibleType"):
		return c == args.String("ConstructibleType"), nil
	case args.Has("Tag"):
		return db.HasTypeTag(c, args.String("Tag")), nil
	}
	return false, fmt.Errorf("%w: ConstructibleType or Tag", diag.ErrMissingArgument)
}

func countConstructibles(db *gameinfo.DB, args modifier.Arguments, constructibles []string) (int, error) {
	n := 0
	for _, c := range constructibles {
		ok, err := matchesConstructible(db, args, c)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// IsUnitTypeTarget applies the UnitTag (comma list, any), UnitClass and
// UnitDomain filters of args to a unit type.
func IsUnitTypeTarget(db *gameinfo.DB, unitType string, args modifier.Arguments) bool {
	if tags := args.List("UnitTag"); len(tags) > 0 && !db.HasAnyTypeTag(unitType, tags) {
		return false
	}
	if args.Has("UnitClass") && !db.HasTypeTag(unitType, args.String("UnitClass")) {
		return false
	}
	if args.Has("UnitDomain") {
		row, ok := db.Unit(unitType)
		if !ok || row.Domain != args.String("UnitDomain") {
			return false
		}
	}
	return true
}

func citySubject(s subject.Subject) (*gamestate.City, error) {
	if s.Kind != subject.City {
		return nil, fmt.Errorf("%w: want City, got %s", subject.ErrKindMismatch, s.Kind)
	}
	return s.City, nil
}

func unitSubject(s subject.Subject) (*gamestate.Unit, error) {
	if s.Kind != subject.Unit {
		return nil, fmt.Errorf("%w: want Unit, got %s", subject.ErrKindMismatch, s.Kind)
	}
	return s.Unit, nil
}

func plotSubject(ctx *Context, s subject.Subject) (*gamestate.Plot, error) {
	idx, ok := s.PlotIndex()
	if !ok {
		return nil, fmt.Errorf("%w: want Plot, got %s", subject.ErrKindMismatch, s.Kind)
	}
	p, ok := ctx.State.Plot(idx)
	if !ok {
		return nil, fmt.Errorf("%w: plot %d", ErrUnknownRow, idx)
	}
	return p, nil
}

func requiredArg(m *modifier.Modifier, name string) (string, error) {
	v := m.Arguments.String(name)
	if v == "" {
		return "", fmt.Errorf("%w: %s", diag.ErrMissingArgument, name)
	}
	return v, nil
}

func countRelationships(p *gamestate.Player, match func(gamestate.Relationship) bool) int {
	n := 0
	for _, r := range p.Relationships {
		if match(r) {
			n++
		}
	}
	return n
}

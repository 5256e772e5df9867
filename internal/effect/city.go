package effect

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/subject"
	"github.com/cory-johannsen/yieldpreview/internal/yields"
)

func cityHandlers() map[string]Handler {
	return map[string]Handler{
		"EFFECT_CITY_ADJUST_YIELD": func(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
			city, err := citySubject(s)
			if err != nil {
				return err
			}
			switch {
			case m.Arguments.Has("Percent"):
				p, err := m.Arguments.Float("Percent")
				if err != nil {
					return err
				}
				return addCityPercent(ctx, m, city, p)
			case m.Arguments.Has("Amount"):
				return perCount(ctx, m, 1)
			}
			return fmt.Errorf("%w: Amount or Percent", diag.ErrMissingArgument)
		},
		"EFFECT_CITY_ADJUST_YIELD_PER_ATTRIBUTE": perAttribute,
		"EFFECT_CITY_ADJUST_WORKER_YIELD": func(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
			city, err := citySubject(s)
			if err != nil {
				return err
			}
			return perCount(ctx, m, city.Specialists())
		},
		"EFFECT_CITY_ADJUST_YIELD_PER_POPULATION": cityPerPopulation,
		"EFFECT_CITY_ADJUST_YIELD_PER_RESOURCE": func(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
			city, err := citySubject(s)
			if err != nil {
				return err
			}
			return perCount(ctx, m, len(city.Resources))
		},
		"EFFECT_CITY_ADJUST_YIELD_PER_GREAT_WORK": func(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
			city, err := citySubject(s)
			if err != nil {
				return err
			}
			return perCount(ctx, m, city.GreatWorks)
		},
		"EFFECT_CITY_ADJUST_CONSTRUCTIBLE_YIELD": func(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
			city, err := citySubject(s)
			if err != nil {
				return err
			}
			n, err := countConstructibles(ctx.DB, m.Arguments, ctx.State.Constructibles(city))
			if err != nil {
				return err
			}
			return perCount(ctx, m, n)
		},
		"EFFECT_CITY_ACTIVATE_CONSTRUCTIBLE_ADJACENCY": func(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
			city, err := citySubject(s)
			if err != nil {
				return err
			}
			row, err := adjacencyArg(ctx, m)
			if err != nil {
				return err
			}
			for _, p := range ctx.State.CityPlots(city) {
				activateAdjacency(ctx, p, row)
			}
			return nil
		},
		"EFFECT_CITY_ACTIVATE_CONSTRUCTIBLE_WAREHOUSE_YIELD": cityWarehouseYield,
	}
}

// cityPerPopulation adds Amount per Divisor residents. Urban and Rural select
// which population counts; neither or both count the whole city.
func cityPerPopulation(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
	city, err := citySubject(s)
	if err != nil {
		return err
	}
	count := city.Population
	urban, rural := m.Arguments.Bool("Urban"), m.Arguments.Bool("Rural")
	switch {
	case urban && !rural:
		count = city.Urban
	case rural && !urban:
		count = city.Rural
	}

	divisor := 1.0
	if m.Arguments.Has("Divisor") {
		if divisor, err = m.Arguments.Float("Divisor"); err != nil {
			return err
		}
		if divisor <= 0 {
			return fmt.Errorf("%w: Divisor=%v", diag.ErrInvalidArgument, divisor)
		}
	}
	return perCount(ctx, m, int(math.Floor(float64(count)/divisor)))
}

// cityWarehouseYield adds the warehouse row's YieldChange per matching
// constructible in the city.
func cityWarehouseYield(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
	city, err := citySubject(s)
	if err != nil {
		return err
	}
	id, err := requiredArg(m, "ConstructibleWarehouseYield")
	if err != nil {
		return err
	}
	row, ok := ctx.DB.WarehouseYieldChange(id)
	if !ok {
		return fmt.Errorf("%w: Warehouse_YieldChanges %s", ErrUnknownRow, id)
	}
	n := 0
	for _, c := range ctx.State.Constructibles(city) {
		if c == row.ConstructibleInCity {
			n++
		}
	}
	for _, t := range yields.ParseYieldTypes(row.YieldType) {
		ctx.Delta.AddAmount(t, row.YieldChange*float64(n))
	}
	return nil
}

package effect

import (
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/subject"
)

// Plot effects accept Plot subjects, a City's centre plot and a Unit's plot.
func plotHandlers() map[string]Handler {
	return map[string]Handler{
		"EFFECT_PLOT_ADJUST_YIELD": func(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
			if _, err := plotSubject(ctx, s); err != nil {
				return err
			}
			return perCount(ctx, m, 1)
		},
		"EFFECT_PLOT_ACTIVATE_CONSTRUCTIBLE_ADJACENCY": func(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
			p, err := plotSubject(ctx, s)
			if err != nil {
				return err
			}
			row, err := adjacencyArg(ctx, m)
			if err != nil {
				return err
			}
			activateAdjacency(ctx, p, row)
			return nil
		},
	}
}

package effect

import (
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/subject"
)

func unitHandlers() map[string]Handler {
	return map[string]Handler{
		"EFFECT_UNIT_ADJUST_MAINTENANCE_EFFICIENCY": func(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
			u, err := unitSubject(s)
			if err != nil {
				return err
			}
			r, err := MaintenanceReduction(m.Arguments, 1, u.Maintenance)
			if err != nil {
				return err
			}
			addMaintenance(ctx, m, r)
			return nil
		},
		"EFFECT_UNIT_ADJUST_YIELD_PER_COMMANDER_LEVEL": func(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
			u, err := unitSubject(s)
			if err != nil {
				return err
			}
			if !u.IsCommander {
				return nil
			}
			return perCount(ctx, m, u.Level)
		},
	}
}

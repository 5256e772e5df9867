package requirement

import (
	"fmt"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
)

func unitPredicates() map[string]entry {
	unit := func(fn Predicate) entry { return entry{scope: ScopeUnit, fn: fn} }
	return map[string]entry{
		"REQUIREMENT_UNIT_DOMAIN_MATCHES": unit(func(q Query, args modifier.Arguments) (bool, error) {
			domain, err := required(args, "UnitDomain")
			if err != nil {
				return false, err
			}
			row, ok := q.DB.Unit(q.Unit.Type)
			return ok && row.Domain == domain, nil
		}),
		"REQUIREMENT_UNIT_TAG_MATCHES": unit(func(q Query, args modifier.Arguments) (bool, error) {
			tags := args.List("Tag")
			if len(tags) == 0 {
				return false, fmt.Errorf("%w: Tag", diag.ErrMissingArgument)
			}
			return q.DB.HasAnyTypeTag(q.Unit.Type, tags), nil
		}),
		"REQUIREMENT_UNIT_IS_COMMANDER": unit(func(q Query, _ modifier.Arguments) (bool, error) {
			return q.Unit.IsCommander, nil
		}),
	}
}

package effect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/subject"
)

// EffectAttachModifiers applies the modifier named by ModifierId to the
// attaching modifier's subject.
const EffectAttachModifiers = "EFFECT_ATTACH_MODIFIERS"

// DefaultMaxAttachDepth applies when Context.MaxAttachDepth is unset.
const DefaultMaxAttachDepth = 8

// OwnerAllows evaluates m's owner requirement set against the player.
func (ctx *Context) OwnerAllows(m *modifier.Modifier) bool {
	return ctx.Requirements.EvaluateSet(ctx.State, subject.PlayerSubject(&ctx.State.Player), m.OwnerRequirementSet, ctx.Collector.ForModifier(m.ID))
}

// attachModifiers resolves the nested modifier's subjects with s as parent
// and applies it to them.
func attachModifiers(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
	id, err := requiredArg(m, "ModifierId")
	if err != nil {
		return err
	}

	stack := append(slices.Clone(ctx.attachStack), m.ID)
	if slices.Contains(stack, id) {
		return fmt.Errorf("%w: %s -> %s", ErrAttachCycle, strings.Join(stack, " -> "), id)
	}
	depth := ctx.MaxAttachDepth
	if depth < 1 {
		depth = DefaultMaxAttachDepth
	}
	if len(stack) > depth {
		return fmt.Errorf("%w: %s exceeds depth %d", ErrAttachCycle, strings.Join(stack, " -> "), depth)
	}

	nested, err := ctx.Modifiers.Resolve(id)
	if err != nil {
		return fmt.Errorf("attaching %s: %w", id, err)
	}

	child := *ctx
	child.attachStack = stack
	if !child.OwnerAllows(nested) {
		return nil
	}
	subjects := ctx.Subjects.Resolve(ctx.State, nested, s, ctx.Collector.ForModifier(nested.ID))
	if err := ctx.dispatcher.ApplyAll(&child, nested, subjects); err != nil {
		return fmt.Errorf("attaching %s: %w", id, err)
	}
	return nil
}

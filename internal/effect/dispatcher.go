// Package effect applies resolved modifiers to their subjects, accumulating
// each effect's yield contribution into a preview's delta.
package effect

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/observability"
	"github.com/cory-johannsen/yieldpreview/internal/requirement"
	"github.com/cory-johannsen/yieldpreview/internal/subject"
	"github.com/cory-johannsen/yieldpreview/internal/yields"
)

var (
	// ErrAttachCycle is returned when EFFECT_ATTACH_MODIFIERS revisits a
	// modifier already on the attach stack or nests deeper than allowed.
	ErrAttachCycle = errors.New("modifier attach cycle")
	// ErrUnknownRow is returned when an argument names a rule row that does
	// not exist. It is reported as missing data, not as a malformed rule.
	ErrUnknownRow = errors.New("rule row not found")
)

// NoOpEffects lists effect types recognised as having no standing yield
// contribution: combat, movement, sight, experience, production and one-off
// grants.
var NoOpEffects = []string{
	"EFFECT_ADJUST_UNIT_COMBAT_STRENGTH",
	"EFFECT_UNIT_ADJUST_COMBAT_STRENGTH",
	"EFFECT_ADJUST_UNIT_MOVEMENT",
	"EFFECT_UNIT_ADJUST_MOVEMENT",
	"EFFECT_UNIT_ADJUST_SIGHT",
	"EFFECT_UNIT_ADJUST_HEAL_PER_TURN",
	"EFFECT_UNIT_ADJUST_EXPERIENCE_MODIFIER",
	"EFFECT_PLAYER_ADJUST_UNIT_EXPERIENCE",
	"EFFECT_PLAYER_ADJUST_COMMANDER_EXPERIENCE",
	"EFFECT_CITY_ADJUST_UNIT_PRODUCTION",
	"EFFECT_CITY_ADJUST_CONSTRUCTIBLE_PRODUCTION",
	"EFFECT_PLAYER_ADJUST_CONSTRUCTIBLE_PRODUCTION",
	"EFFECT_CITY_ADJUST_PROJECT_PRODUCTION",
	"EFFECT_CITY_ADJUST_GROWTH",
	"EFFECT_CITY_ADJUST_HAPPINESS_PER_SPECIALIST",
	"EFFECT_PLAYER_ADJUST_SETTLEMENT_CAP",
	"EFFECT_PLAYER_GRANT_UNIT",
	"EFFECT_CITY_GRANT_UNIT",
	"EFFECT_PLAYER_GRANT_YIELD",
	"EFFECT_PLAYER_ADJUST_INFLUENCE_COST",
	"EFFECT_PLAYER_ADJUST_CONSTRUCTIBLE_PURCHASE_EFFICIENCY",
	"EFFECT_CITY_ADJUST_UNIT_PURCHASE_EFFICIENCY",
	"EFFECT_ADJUST_PLAYER_UNITS_COMBAT_STRENGTH",
	"EFFECT_PLAYER_ADJUST_DIPLOMATIC_ACTION_SUPPORT",
}

// Handler applies one effect type to one subject.
type Handler func(ctx *Context, s subject.Subject, m *modifier.Modifier) error

// Context is the execution context of one preview. It is not safe for
// concurrent use.
type Context struct {
	State        *gamestate.Snapshot
	DB           *gameinfo.DB
	Delta        *yields.Delta
	Baselines    *yields.BaselineCache
	Collector    *diag.Collector
	Modifiers    *modifier.Resolver
	Subjects     *subject.Resolver
	Requirements *requirement.Evaluator
	// MaxAttachDepth bounds EFFECT_ATTACH_MODIFIERS nesting.
	MaxAttachDepth int

	dispatcher  *Dispatcher
	scoped      *diag.Collector
	attachStack []string
}

// Diag returns the collector scoped to the modifier being applied.
func (ctx *Context) Diag() *diag.Collector {
	if ctx.scoped != nil {
		return ctx.scoped
	}
	return ctx.Collector
}

// Dispatcher is a registry of handlers keyed by effect type.
//
// Invariant: each effect type is registered at most once, either as a
// handler or as a no-op.
type Dispatcher struct {
	handlers map[string]Handler
	noop     map[string]struct{}
}

// NewDispatcher returns a Dispatcher with every built-in handler and no-op
// registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: make(map[string]Handler), noop: make(map[string]struct{})}
	for _, group := range []map[string]Handler{playerHandlers(), cityHandlers(), plotHandlers(), unitHandlers()} {
		for typ, h := range group {
			d.handlers[typ] = h
		}
	}
	d.handlers[EffectAttachModifiers] = attachModifiers
	for _, typ := range NoOpEffects {
		d.noop[typ] = struct{}{}
	}
	return d
}

// Register adds h for effectType.
//
// Postcondition: returns error when effectType is already a handler or no-op.
func (d *Dispatcher) Register(effectType string, h Handler) error {
	if !d.free(effectType) {
		return fmt.Errorf("effect.Dispatcher: %q already registered", effectType)
	}
	d.handlers[effectType] = h
	return nil
}

// RegisterNoOp marks effectType as recognised with no yield contribution.
//
// Postcondition: returns error when effectType is already a handler or no-op.
func (d *Dispatcher) RegisterNoOp(effectType string) error {
	if !d.free(effectType) {
		return fmt.Errorf("effect.Dispatcher: %q already registered", effectType)
	}
	d.noop[effectType] = struct{}{}
	return nil
}

func (d *Dispatcher) free(effectType string) bool {
	_, h := d.handlers[effectType]
	_, n := d.noop[effectType]
	return !h && !n
}

// Apply applies m to a single subject.
func (d *Dispatcher) Apply(ctx *Context, s subject.Subject, m *modifier.Modifier) error {
	return d.ApplyAll(ctx, m, []subject.Subject{s})
}

// ApplyAll applies m to every subject in order. NewOnly modifiers and Empty
// subjects never touch the delta. Unknown and no-op effect types are
// reported once per call. A handler failure skips that subject's
// contribution and is reported; an attach cycle also aborts the remaining
// subjects and is returned, reported only by the call that detected it.
// A strict failure raised while applying m drops m's whole contribution and
// leaves the rest of the preview intact.
//
// Precondition: ctx.Delta, ctx.State and ctx.Collector must not be nil.
func (d *Dispatcher) ApplyAll(ctx *Context, m *modifier.Modifier, subjects []subject.Subject) error {
	mctx := *ctx
	mctx.dispatcher = d
	mctx.scoped = ctx.Collector.ForModifier(m.ID)
	c := mctx.scoped

	if m.NewOnly {
		c.Logger().Debug("skipping NewOnly modifier")
		return nil
	}
	h, ok := d.handlers[m.EffectType]
	if !ok {
		if _, noop := d.noop[m.EffectType]; noop {
			c.NoOp("effect has no yield contribution: "+m.EffectType, zap.String(observability.FieldEffect, m.EffectType))
		} else {
			c.Missing("unhandled effect type "+m.EffectType, zap.String(observability.FieldEffect, m.EffectType))
		}
		return nil
	}

	scratch := yields.NewDelta()
	mctx.Delta = scratch
	failed := false
	defer func() {
		if !failed {
			ctx.Delta.Merge(scratch)
		}
	}()
	defer diag.RecoverStrict(func(f *diag.StrictFailure) {
		failed = true
		c.Logger().Warn("dropping modifier contribution", zap.String("failure", f.Message))
	})

	for _, s := range subjects {
		if s.Kind == subject.Empty {
			continue
		}
		err := h(&mctx, s, m)
		var reported *reportedError
		switch {
		case err == nil:
		case errors.As(err, &reported):
			return err
		case errors.Is(err, ErrAttachCycle):
			c.Error(err.Error(), zap.String(observability.FieldEffect, m.EffectType), zap.Error(err))
			return &reportedError{err: err}
		case errors.Is(err, ErrUnknownRow), errors.Is(err, modifier.ErrModifierNotFound):
			c.Missing(err.Error(), zap.String(observability.FieldEffect, m.EffectType), zap.Stringer("subject", s))
		default:
			c.Error(fmt.Sprintf("%s on %s: %v", m.EffectType, s, err),
				zap.String(observability.FieldEffect, m.EffectType), zap.Error(err))
		}
	}
	return nil
}

// reportedError marks an error already recorded on the collector.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

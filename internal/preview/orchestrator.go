// Package preview computes the yield change a policy card or a list of
// modifiers would give the local player, without touching game state.
package preview

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/yieldpreview/internal/config"
	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/effect"
	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/observability"
	"github.com/cory-johannsen/yieldpreview/internal/requirement"
	"github.com/cory-johannsen/yieldpreview/internal/subject"
	"github.com/cory-johannsen/yieldpreview/internal/yields"
)

// Result is the outcome of one preview.
type Result struct {
	ID uuid.UUID `yaml:"id"`
	// Yields maps yield type to the rounded change. Empty when the preview
	// failed unexpectedly.
	Yields      map[string]int       `yaml:"yields"`
	Modifiers   []*modifier.Modifier `yaml:"modifiers"`
	Diagnostics []diag.Entry         `yaml:"diagnostics,omitempty"`
}

// Orchestrator runs previews against the snapshot its provider returns.
// Previews may run concurrently; each owns its delta and diagnostics.
type Orchestrator struct {
	cfg        config.PreviewConfig
	logger     *zap.Logger
	provider   gamestate.Provider
	db         *gameinfo.DB
	sets       *modifier.SetCache
	modifiers  *modifier.Resolver
	evaluator  *requirement.Evaluator
	subjects   *subject.Resolver
	dispatcher *effect.Dispatcher
	baselines  *yields.BaselineCache
	finalizer  yields.Finalizer
}

// New wires an Orchestrator and takes the first baseline from provider.
//
// Precondition: logger, provider and db must not be nil; provider must
// return a non-nil snapshot.
// Postcondition: Returns an Orchestrator ready to preview.
func New(cfg config.PreviewConfig, logger *zap.Logger, provider gamestate.Provider, db *gameinfo.DB) *Orchestrator {
	sets := modifier.NewSetCache()
	evaluator := requirement.NewEvaluator(db)
	o := &Orchestrator{
		cfg:        cfg,
		logger:     logger,
		provider:   provider,
		db:         db,
		sets:       sets,
		modifiers:  modifier.NewResolver(db, sets, logger),
		evaluator:  evaluator,
		subjects:   subject.NewResolver(evaluator),
		dispatcher: effect.NewDispatcher(),
		baselines:  yields.NewBaselineCache(),
		finalizer: yields.Finalizer{
			YieldTypes:           cfg.YieldTypes,
			ApplyBaselinePercent: cfg.ApplyBaselinePercent,
		},
	}
	o.baselines.Update(provider)
	return o
}

// Dispatcher exposes the effect registry so hosts can register extra effect
// types before the first preview.
func (o *Orchestrator) Dispatcher() *effect.Dispatcher {
	return o.dispatcher
}

// Evaluator exposes the requirement registry so hosts can register extra
// predicates before the first preview.
func (o *Orchestrator) Evaluator() *requirement.Evaluator {
	return o.evaluator
}

// PreviewTradition previews every modifier of traditionType.
//
// Postcondition: Result.Yields holds every configured yield type unless the
// preview panicked.
func (o *Orchestrator) PreviewTradition(traditionType string) Result {
	id := uuid.New()
	logger := observability.ForPreview(o.logger, id.String()).With(zap.String(observability.FieldTradition, traditionType))
	c := diag.NewCollector(logger, o.cfg.Strict)
	if _, ok := o.db.Tradition(traditionType); !ok {
		c.Missing("unknown tradition " + traditionType)
	}
	return o.run(id, logger, c, func() []*modifier.Modifier {
		return o.modifiers.ResolveTradition(traditionType, c)
	})
}

// PreviewModifiers previews the modifiers named by ids, in order.
func (o *Orchestrator) PreviewModifiers(ids []string) Result {
	id := uuid.New()
	logger := observability.ForPreview(o.logger, id.String())
	c := diag.NewCollector(logger, o.cfg.Strict)
	return o.run(id, logger, c, func() []*modifier.Modifier {
		return o.modifiers.ResolveAll(ids, c)
	})
}

func (o *Orchestrator) run(id uuid.UUID, logger *zap.Logger, c *diag.Collector, gather func() []*modifier.Modifier) (res Result) {
	res = Result{ID: id}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("preview failed", zap.Any("panic", r), zap.Stack("stack"))
			res.Yields = map[string]int{}
			res.Diagnostics = c.Entries()
		}
	}()

	state := o.provider.Snapshot()
	res.Modifiers = gather()

	ctx := &effect.Context{
		State:          state,
		DB:             o.db,
		Delta:          yields.NewDelta(),
		Baselines:      o.baselines,
		Collector:      c,
		Modifiers:      o.modifiers,
		Subjects:       o.subjects,
		Requirements:   o.evaluator,
		MaxAttachDepth: o.cfg.MaxAttachDepth,
	}
	for _, m := range res.Modifiers {
		o.apply(ctx, m, logger)
	}

	res.Yields = o.finalizer.Finalize(ctx.Delta, o.baselines.Get())
	res.Diagnostics = c.Entries()
	logger.Debug("preview complete", zap.Int("modifiers", len(res.Modifiers)), zap.Int("diagnostics", len(res.Diagnostics)))
	return res
}

// apply gates m on its owner requirements, resolves its subjects and
// dispatches it. A strict failure skips m alone.
func (o *Orchestrator) apply(ctx *effect.Context, m *modifier.Modifier, logger *zap.Logger) {
	defer diag.RecoverStrict(func(f *diag.StrictFailure) {
		logger.Warn("modifier skipped", zap.String(observability.FieldModifier, m.ID), zap.String("failure", f.Message))
	})
	if !ctx.OwnerAllows(m) {
		logger.Debug("owner requirements not met", zap.String(observability.FieldModifier, m.ID))
		return
	}
	subjects := o.subjects.Resolve(ctx.State, m, subject.EmptySubject(), ctx.Collector.ForModifier(m.ID))
	// Failures are already recorded on the collector.
	_ = o.dispatcher.ApplyAll(ctx, m, subjects)
}

// UpdateBaseline re-reads the player's and cities' standing yields.
func (o *Orchestrator) UpdateBaseline() {
	o.baselines.Update(o.provider)
}

// Reload swaps the rule tables, drops every rule cache and refreshes the
// baseline. Requirement sets an in-flight preview resolved from the old
// tables are not cached.
//
// Precondition: tables must not be nil.
func (o *Orchestrator) Reload(tables *gameinfo.Tables) {
	o.db.Reload(tables)
	o.Invalidate()
	o.logger.Info("rule database reloaded", zap.Int("modifiers", len(tables.Modifiers)))
}

// Invalidate drops every cache and refreshes the baseline.
func (o *Orchestrator) Invalidate() {
	o.db.Invalidate()
	o.sets.Invalidate()
	o.baselines.Invalidate()
	o.baselines.Update(o.provider)
}

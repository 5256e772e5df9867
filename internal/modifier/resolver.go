package modifier

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
)

// SetCache memoises resolved requirement sets by id. Each Invalidate starts
// a new generation; a Put carrying an older generation is discarded, so a set
// resolved from tables that have since been reloaded never enters the cache.
type SetCache struct {
	mu   sync.RWMutex
	sets map[string]*RequirementSet
	gen  uint64
}

// NewSetCache returns an empty SetCache.
func NewSetCache() *SetCache {
	return &SetCache{sets: make(map[string]*RequirementSet)}
}

// Get returns the cached set for id.
func (c *SetCache) Get(id string) (*RequirementSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sets[id]
	return s, ok
}

// Generation returns the current generation. Read it before reading the
// tables a set is resolved from.
func (c *SetCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Put stores set under id when gen is still current.
//
// Postcondition: returns false, storing nothing, when the cache was
// invalidated after gen was read.
func (c *SetCache) Put(id string, set *RequirementSet, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.sets[id] = set
	return true
}

// Len returns the number of cached sets.
func (c *SetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sets)
}

// Invalidate drops every cached set and starts a new generation.
func (c *SetCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = make(map[string]*RequirementSet)
	c.gen++
}

// Resolver joins modifier rows with their dynamic modifier, arguments and
// requirement sets.
type Resolver struct {
	db     *gameinfo.DB
	sets   *SetCache
	logger *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: db, sets and logger must not be nil.
func NewResolver(db *gameinfo.DB, sets *SetCache, logger *zap.Logger) *Resolver {
	return &Resolver{db: db, sets: sets, logger: logger}
}

// Resolve builds the resolved view of modifier id.
//
// Postcondition: Returns ErrModifierNotFound (wrapped) when the modifier or
// its dynamic modifier row is absent, ErrRequirementSetCycle (wrapped) when
// either requirement set nests itself.
func (r *Resolver) Resolve(id string) (*Modifier, error) {
	row, ok := r.db.Modifier(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModifierNotFound, id)
	}
	dyn, ok := r.db.DynamicModifier(row.ModifierType)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no dynamic modifier %s", ErrModifierNotFound, id, row.ModifierType)
	}

	args := make(Arguments)
	for _, a := range r.db.ModifierArguments(id) {
		args[a.Name] = Argument{Value: a.Value, Extra: a.Extra, SecondExtra: a.SecondExtra, Type: a.Type}
	}

	subjectSet, err := r.ResolveRequirementSet(row.SubjectRequirementSetID)
	if err != nil {
		return nil, fmt.Errorf("modifier %s subject requirements: %w", id, err)
	}
	ownerSet, err := r.ResolveRequirementSet(row.OwnerRequirementSetID)
	if err != nil {
		return nil, fmt.Errorf("modifier %s owner requirements: %w", id, err)
	}

	return &Modifier{
		ID:                    row.ModifierID,
		ModifierType:          row.ModifierType,
		EffectType:            dyn.EffectType,
		CollectionType:        dyn.CollectionType,
		Arguments:             args,
		SubjectRequirementSet: subjectSet,
		OwnerRequirementSet:   ownerSet,
		Permanent:             row.Permanent,
		RunOnce:               row.RunOnce,
		NewOnly:               row.NewOnly,
	}, nil
}

// ResolveAll resolves ids in order, skipping ids that fail. Absent ids are
// recorded as missing and cycles as errors on c; a strict failure skips
// only the id that raised it.
func (r *Resolver) ResolveAll(ids []string, c *diag.Collector) []*Modifier {
	out := make([]*Modifier, 0, len(ids))
	for _, id := range ids {
		if m := r.resolveReported(id, c); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (r *Resolver) resolveReported(id string, c *diag.Collector) (m *Modifier) {
	defer diag.RecoverStrict(func(*diag.StrictFailure) { m = nil })
	m, err := r.Resolve(id)
	switch {
	case err == nil:
		return m
	case errors.Is(err, ErrModifierNotFound):
		c.ForModifier(id).Missing(err.Error())
	default:
		c.ForModifier(id).Error(err.Error(), zap.Error(err))
	}
	return nil
}

// ResolveTradition resolves every modifier linked to traditionType in table order.
func (r *Resolver) ResolveTradition(traditionType string, c *diag.Collector) []*Modifier {
	return r.ResolveAll(r.db.TraditionModifiers(traditionType), c)
}

// ResolveRequirementSet resolves id into a tree, following nested sets.
// An empty id resolves to nil, which every subject satisfies.
func (r *Resolver) ResolveRequirementSet(id string) (*RequirementSet, error) {
	if id == "" {
		return nil, nil
	}
	return r.resolveSet(id, nil, r.sets.Generation())
}

func (r *Resolver) resolveSet(id string, stack []string, gen uint64) (*RequirementSet, error) {
	if s, ok := r.sets.Get(id); ok {
		return s, nil
	}
	if slices.Contains(stack, id) {
		return nil, fmt.Errorf("%w: %s", ErrRequirementSetCycle, strings.Join(append(stack, id), " -> "))
	}
	stack = append(stack, id)

	set := &RequirementSet{ID: id, Operator: OperatorAll}
	if row, ok := r.db.RequirementSet(id); ok {
		set.Operator = row.RequirementSetType
	} else {
		r.logger.Warn("requirement set not found, treating as empty", zap.String("requirement_set", id))
	}

	for _, reqID := range r.db.RequirementSetRequirements(id) {
		row, ok := r.db.Requirement(reqID)
		if !ok {
			r.logger.Warn("requirement not found, skipping",
				zap.String("requirement_set", id), zap.String("requirement", reqID))
			continue
		}
		req := &Requirement{
			ID:        row.RequirementID,
			Type:      row.RequirementType,
			Inverse:   row.Inverse,
			Arguments: make(Arguments),
		}
		for _, a := range r.db.RequirementArguments(reqID) {
			req.Arguments[a.Name] = Argument{Value: a.Value, Extra: a.Extra, SecondExtra: a.SecondExtra, Type: a.Type}
		}
		if req.Type == RequirementSetIsMet {
			if nestedID := req.Arguments.String("RequirementSetId"); nestedID != "" {
				nested, err := r.resolveSet(nestedID, stack, gen)
				if err != nil {
					return nil, err
				}
				req.Nested = nested
			}
		}
		set.Requirements = append(set.Requirements, req)
	}

	r.sets.Put(id, set, gen)
	return set, nil
}

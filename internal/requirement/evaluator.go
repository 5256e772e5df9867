// Package requirement evaluates resolved requirement sets against subjects.
package requirement

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/observability"
	"github.com/cory-johannsen/yieldpreview/internal/subject"
)

// Scope names the subject kinds a predicate reads.
type Scope int

const (
	// ScopeCity predicates read a City subject.
	ScopeCity Scope = iota
	// ScopePlot predicates read a Plot subject, a City's centre plot, or a
	// Unit's plot.
	ScopePlot
	// ScopePlayer predicates read the owning player whatever the subject.
	ScopePlayer
	// ScopeUnit predicates read a Unit subject.
	ScopeUnit
)

// Query is what a predicate sees. Only the fields its Scope binds are set;
// Player and State are always set.
type Query struct {
	DB      *gameinfo.DB
	State   *gamestate.Snapshot
	Subject subject.Subject
	Player  *gamestate.Player
	City    *gamestate.City
	Plot    *gamestate.Plot
	Unit    *gamestate.Unit
}

// Predicate tests one requirement type.
type Predicate func(q Query, args modifier.Arguments) (bool, error)

type entry struct {
	scope Scope
	fn    Predicate
}

// Evaluator is a registry of predicates keyed by requirement type.
//
// Invariant: each requirement type is registered at most once.
type Evaluator struct {
	db         *gameinfo.DB
	predicates map[string]entry
}

// NewEvaluator returns an Evaluator with every built-in predicate registered.
//
// Precondition: db must not be nil.
func NewEvaluator(db *gameinfo.DB) *Evaluator {
	e := &Evaluator{db: db, predicates: make(map[string]entry)}
	for _, group := range []map[string]entry{cityPredicates(), plotPredicates(), playerPredicates(), unitPredicates()} {
		for typ, en := range group {
			e.predicates[typ] = en
		}
	}
	return e
}

// Register adds a predicate for requirementType.
//
// Postcondition: returns error on requirement type collision.
func (e *Evaluator) Register(requirementType string, scope Scope, fn Predicate) error {
	if _, exists := e.predicates[requirementType]; exists {
		return fmt.Errorf("requirement.Evaluator: %q already registered", requirementType)
	}
	e.predicates[requirementType] = entry{scope: scope, fn: fn}
	return nil
}

// Supports reports whether requirementType has a predicate.
func (e *Evaluator) Supports(requirementType string) bool {
	if requirementType == modifier.RequirementSetIsMet {
		return true
	}
	_, ok := e.predicates[requirementType]
	return ok
}

// EvaluateSet folds set over s. A nil set is satisfied; an empty ALL set is
// satisfied and an empty ANY set is not. Unknown operators fold as ALL and
// are reported on c.
func (e *Evaluator) EvaluateSet(state *gamestate.Snapshot, s subject.Subject, set *modifier.RequirementSet, c *diag.Collector) bool {
	if set == nil {
		return true
	}
	anyOf := false
	switch set.Operator {
	case modifier.OperatorAll:
	case modifier.OperatorAny:
		anyOf = true
	default:
		c.Error(fmt.Sprintf("unknown requirement set operator %q in %s, treating as ALL", set.Operator, set.ID),
			zap.String("requirement_set", set.ID))
	}

	for _, req := range set.Requirements {
		ok := e.IsSatisfied(state, s, req, c) != req.Inverse
		if anyOf && ok {
			return true
		}
		if !anyOf && !ok {
			return false
		}
	}
	return !anyOf
}

// IsSatisfied tests req against s without applying req.Inverse; EvaluateSet
// negates each child as it folds. A requirement that cannot be evaluated is
// false. Unknown types and malformed rules are also reported on c; an Empty
// subject or an absent plot is not.
func (e *Evaluator) IsSatisfied(state *gamestate.Snapshot, s subject.Subject, req *modifier.Requirement, c *diag.Collector) bool {
	if req.Type == modifier.RequirementSetIsMet {
		if req.Nested == nil {
			c.Error(fmt.Sprintf("requirement %s: %v: RequirementSetId", req.ID, diag.ErrMissingArgument),
				zap.String(observability.FieldRequirement, req.ID))
			return false
		}
		return e.EvaluateSet(state, s, req.Nested, c)
	}

	en, ok := e.predicates[req.Type]
	if !ok {
		c.Missing("unhandled requirement type "+req.Type,
			zap.String(observability.FieldRequirement, req.ID), zap.String("requirement_type", req.Type))
		return false
	}

	q, bound, err := e.bind(state, s, en.scope)
	if err != nil {
		c.Error(fmt.Sprintf("requirement %s (%s): %v: got %s", req.ID, req.Type, err, s.Kind),
			zap.String(observability.FieldRequirement, req.ID))
		return false
	}
	if !bound {
		return false
	}

	result, err := en.fn(q, req.Arguments)
	if err != nil {
		c.Error(fmt.Sprintf("requirement %s (%s): %v", req.ID, req.Type, err),
			zap.String(observability.FieldRequirement, req.ID), zap.Error(err))
		return false
	}
	return result
}

// bind builds the Query for scope. bound is false when the subject is the
// Empty sentinel or its plot is absent from the snapshot.
func (e *Evaluator) bind(state *gamestate.Snapshot, s subject.Subject, scope Scope) (q Query, bound bool, err error) {
	q = Query{DB: e.db, State: state, Subject: s, Player: &state.Player}
	if scope == ScopePlayer {
		return q, true, nil
	}
	if s.Kind == subject.Empty {
		return q, false, nil
	}

	switch scope {
	case ScopeCity:
		if s.Kind != subject.City {
			return q, false, fmt.Errorf("%w: want City", subject.ErrKindMismatch)
		}
		q.City = s.City
	case ScopeUnit:
		if s.Kind != subject.Unit {
			return q, false, fmt.Errorf("%w: want Unit", subject.ErrKindMismatch)
		}
		q.Unit = s.Unit
	case ScopePlot:
		idx, ok := s.PlotIndex()
		if !ok {
			return q, false, fmt.Errorf("%w: want Plot, City or Unit", subject.ErrKindMismatch)
		}
		p, ok := state.Plot(idx)
		if !ok {
			return q, false, nil
		}
		q.Plot = p
		q.City = s.City
		q.Unit = s.Unit
	}
	return q, true, nil
}

// threshold reads the Amount argument, defaulting to 1.
func threshold(args modifier.Arguments) (int, error) {
	v := strings.TrimSpace(args.String("Amount"))
	if v == "" {
		return 1, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: Amount=%q", diag.ErrInvalidArgument, v)
	}
	return int(f), nil
}

// required returns the value of name or diag.ErrMissingArgument.
func required(args modifier.Arguments, name string) (string, error) {
	v := strings.TrimSpace(args.String(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", diag.ErrMissingArgument, name)
	}
	return v, nil
}

// minimum compares n against an integer argument.
func minimum(args modifier.Arguments, name string, n int) (bool, error) {
	f, err := args.Float(name)
	if err != nil {
		return false, err
	}
	return float64(n) >= f, nil
}

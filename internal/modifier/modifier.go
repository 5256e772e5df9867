// Package modifier resolves modifier rows into self-contained values: the
// effect and collection they bind to, their arguments, and their requirement
// set trees.
package modifier

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/yieldpreview/internal/diag"
)

// Requirement set operators.
const (
	OperatorAll = "REQUIREMENTSET_TEST_ALL"
	OperatorAny = "REQUIREMENTSET_TEST_ANY"
)

// RequirementSetIsMet is the requirement type that nests another set.
const RequirementSetIsMet = "REQUIREMENT_REQUIREMENTSET_IS_MET"

var (
	// ErrModifierNotFound is returned when a modifier id or its dynamic
	// modifier row is absent. Callers treat it as "no effect".
	ErrModifierNotFound = errors.New("modifier not found")
	// ErrRequirementSetCycle is returned when a set nests itself.
	ErrRequirementSetCycle = errors.New("requirement set cycle")
)

// Argument is one named argument.
type Argument struct {
	Value       string `yaml:"value"`
	Extra       string `yaml:"extra,omitempty"`
	SecondExtra string `yaml:"second_extra,omitempty"`
	Type        string `yaml:"type,omitempty"`
}

// Arguments maps argument name to Argument.
type Arguments map[string]Argument

// Has reports whether name is present with a non-empty value.
func (a Arguments) Has(name string) bool {
	return a[name].Value != ""
}

// String returns the value of name, empty when absent.
func (a Arguments) String(name string) string {
	return a[name].Value
}

// Bool reports whether name is "true" or "1".
func (a Arguments) Bool(name string) bool {
	v := strings.TrimSpace(a[name].Value)
	return v == "true" || v == "1"
}

// Float parses name as a number.
//
// Postcondition: Returns diag.ErrMissingArgument when absent and
// diag.ErrInvalidArgument when unparsable.
func (a Arguments) Float(name string) (float64, error) {
	v := strings.TrimSpace(a[name].Value)
	if v == "" {
		return 0, fmt.Errorf("%w: %s", diag.ErrMissingArgument, name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", diag.ErrInvalidArgument, name, v)
	}
	return f, nil
}

// FloatOr parses name, returning def when absent or unparsable.
func (a Arguments) FloatOr(name string, def float64) float64 {
	f, err := a.Float(name)
	if err != nil {
		return def
	}
	return f
}

// List splits a comma-separated argument, trimming each entry.
func (a Arguments) List(name string) []string {
	v := a[name].Value
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Requirement is a resolved leaf or, when Type is RequirementSetIsMet, a
// reference to the nested set in Nested.
type Requirement struct {
	ID        string
	Type      string
	Inverse   bool
	Arguments Arguments
	Nested    *RequirementSet
}

// RequirementSet is a resolved tree of requirements.
type RequirementSet struct {
	ID           string
	Operator     string
	Requirements []*Requirement
}

// Modifier is a resolved modifier.
type Modifier struct {
	ID                    string          `yaml:"id"`
	ModifierType          string          `yaml:"modifier_type"`
	EffectType            string          `yaml:"effect_type"`
	CollectionType        string          `yaml:"collection_type"`
	Arguments             Arguments       `yaml:"arguments"`
	SubjectRequirementSet *RequirementSet `yaml:"-"`
	OwnerRequirementSet   *RequirementSet `yaml:"-"`
	Permanent             bool            `yaml:"permanent,omitempty"`
	RunOnce               bool            `yaml:"run_once,omitempty"`
	NewOnly               bool            `yaml:"new_only,omitempty"`
}

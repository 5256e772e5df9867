// Package diag collects the diagnostics produced while a preview runs:
// malformed rules, recognised-but-unhandled rule types, and rule types the
// engine deliberately ignores.
package diag

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/yieldpreview/internal/observability"
)

// ErrMissingArgument is returned when a modifier or requirement lacks an
// argument its handler cannot do without.
var ErrMissingArgument = errors.New("missing argument")

// ErrInvalidArgument is returned when an argument cannot be parsed.
var ErrInvalidArgument = errors.New("invalid argument")

// StrictFailure is the panic value a strict Collector raises once its logger
// has panicked on an error entry.
type StrictFailure struct {
	Modifier string
	Message  string
}

// Error implements error.
func (f *StrictFailure) Error() string {
	if f.Modifier == "" {
		return f.Message
	}
	return f.Modifier + ": " + f.Message
}

// RecoverStrict must be deferred directly. It stops a *StrictFailure panic
// and hands it to onFailure; any other panic keeps unwinding.
func RecoverStrict(onFailure func(*StrictFailure)) {
	r := recover()
	if r == nil {
		return
	}
	f, ok := r.(*StrictFailure)
	if !ok {
		panic(r)
	}
	onFailure(f)
}

// Kind classifies a diagnostic.
type Kind int

const (
	// KindError marks malformed rules or subject mismatches.
	KindError Kind = iota
	// KindMissing marks rule types the engine has no handler for.
	KindMissing
	// KindNoOp marks rule types recognised as having no yield effect.
	KindNoOp
)

// String returns the lower-case name of k.
func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindMissing:
		return "missing"
	case KindNoOp:
		return "noop"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalYAML renders k by name.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Entry is one diagnostic.
type Entry struct {
	Kind     Kind   `yaml:"kind"`
	Modifier string `yaml:"modifier,omitempty"`
	Message  string `yaml:"message"`
}

// Collector records entries and mirrors each one to the logger: no-ops at
// debug, missing handlers at warn, and errors at error (or DPanic when strict).
// Under a development logger a strict error panics with a *StrictFailure.
// A Collector is not safe for concurrent use; each preview owns one.
type Collector struct {
	logger   *zap.Logger
	strict   bool
	entries  *[]Entry
	modifier string
}

// NewCollector creates an empty Collector.
//
// Precondition: logger must not be nil.
func NewCollector(logger *zap.Logger, strict bool) *Collector {
	return &Collector{logger: logger, strict: strict, entries: &[]Entry{}}
}

// ForModifier returns a Collector sharing c's entries that tags every entry
// and log line with modifierID.
func (c *Collector) ForModifier(modifierID string) *Collector {
	return &Collector{
		logger:   c.logger.With(zap.String(observability.FieldModifier, modifierID)),
		strict:   c.strict,
		entries:  c.entries,
		modifier: modifierID,
	}
}

// Logger returns the collector's logger.
func (c *Collector) Logger() *zap.Logger {
	return c.logger
}

// Error records a malformed rule.
func (c *Collector) Error(msg string, fields ...zap.Field) {
	c.add(KindError, msg)
	if c.strict {
		c.dpanic(msg, fields...)
		return
	}
	c.logger.Error(msg, fields...)
}

// dpanic logs at DPanic and, when the logger panics, re-raises as a
// *StrictFailure.
func (c *Collector) dpanic(msg string, fields ...zap.Field) {
	defer func() {
		if r := recover(); r != nil {
			panic(&StrictFailure{Modifier: c.modifier, Message: msg})
		}
	}()
	c.logger.DPanic(msg, fields...)
}

// Missing records a rule type with no handler.
func (c *Collector) Missing(msg string, fields ...zap.Field) {
	c.add(KindMissing, msg)
	c.logger.Warn(msg, fields...)
}

// NoOp records a rule type recognised as having no yield effect.
func (c *Collector) NoOp(msg string, fields ...zap.Field) {
	c.add(KindNoOp, msg)
	c.logger.Debug(msg, fields...)
}

func (c *Collector) add(k Kind, msg string) {
	*c.entries = append(*c.entries, Entry{Kind: k, Modifier: c.modifier, Message: msg})
}

// Entries returns a copy of every entry in record order.
func (c *Collector) Entries() []Entry {
	out := make([]Entry, len(*c.entries))
	copy(out, *c.entries)
	return out
}

// Messages returns the messages of every entry of kind k.
func (c *Collector) Messages(k Kind) []string {
	var out []string
	for _, e := range *c.entries {
		if e.Kind == k {
			out = append(out, e.Message)
		}
	}
	return out
}

// Has reports whether any entry of kind k was recorded.
func (c *Collector) Has(k Kind) bool {
	for _, e := range *c.entries {
		if e.Kind == k {
			return true
		}
	}
	return false
}

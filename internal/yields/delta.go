// Package yields accumulates per-yield-type deltas and folds them, together
// with the player's baseline yields, into the integers shown to the player.
package yields

import (
	"strings"
)

// Delta accumulates a preview's contribution in three independent channels.
// Flat amounts are scaled by percent bonuses at finalisation; Percent holds
// percentage points; AmountNoMultiplier is added last, unscaled.
type Delta struct {
	Amount             map[string]float64 `yaml:"amount"`
	Percent            map[string]float64 `yaml:"percent"`
	AmountNoMultiplier map[string]float64 `yaml:"amount_no_multiplier"`
}

// NewDelta returns an empty Delta.
func NewDelta() *Delta {
	return &Delta{
		Amount:             make(map[string]float64),
		Percent:            make(map[string]float64),
		AmountNoMultiplier: make(map[string]float64),
	}
}

// AddAmount adds v to the flat channel of yieldType.
func (d *Delta) AddAmount(yieldType string, v float64) {
	d.Amount[yieldType] += v
}

// AddAmountNoMultiplier adds v to the unscaled channel of yieldType.
func (d *Delta) AddAmountNoMultiplier(yieldType string, v float64) {
	d.AmountNoMultiplier[yieldType] += v
}

// AddPercent adds v percentage points to yieldType.
func (d *Delta) AddPercent(yieldType string, v float64) {
	d.Percent[yieldType] += v
}

// Merge adds every channel of other into d.
func (d *Delta) Merge(other *Delta) {
	for t, v := range other.Amount {
		d.Amount[t] += v
	}
	for t, v := range other.Percent {
		d.Percent[t] += v
	}
	for t, v := range other.AmountNoMultiplier {
		d.AmountNoMultiplier[t] += v
	}
}

// IsZero reports whether nothing has been accumulated.
func (d *Delta) IsZero() bool {
	return len(d.Amount) == 0 && len(d.Percent) == 0 && len(d.AmountNoMultiplier) == 0
}

// ParseYieldTypes splits a comma-separated YieldType argument, trimming
// whitespace and dropping empty entries.
func ParseYieldTypes(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package yields

import (
	"math"
	"sort"
)

// Finalizer folds a Delta into the per-type integers shown to the player.
type Finalizer struct {
	// YieldTypes are always present in the result, zero when untouched.
	YieldTypes []string
	// ApplyBaselinePercent scales flat amounts by the player's standing
	// percent bonus for the type.
	ApplyBaselinePercent bool
}

// Finalize computes, for every configured type and every type the delta
// touches:
//
//	Amount[t] (× (1 + baseline[t].Percent/100) when ApplyBaselinePercent)
//	+ (baseline[t].BaseAmount + Amount[t]) × Percent[t]/100
//	+ AmountNoMultiplier[t]
//
// rounded half-up.
//
// Postcondition: The result has an entry for every type in f.YieldTypes.
func (f Finalizer) Finalize(d *Delta, baseline Baseline) map[string]int {
	out := make(map[string]int)
	for _, t := range f.types(d) {
		v := d.Amount[t]
		if f.ApplyBaselinePercent {
			v *= 1 + baseline[t].Percent/100
		}
		if p, ok := d.Percent[t]; ok {
			v += (baseline[t].BaseAmount + d.Amount[t]) * p / 100
		}
		v += d.AmountNoMultiplier[t]
		out[t] = Round(v)
	}
	return out
}

func (f Finalizer) types(d *Delta) []string {
	seen := make(map[string]struct{}, len(f.YieldTypes))
	var out []string
	add := func(t string) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	for _, t := range f.YieldTypes {
		add(t)
	}
	for _, m := range []map[string]float64{d.Amount, d.Percent, d.AmountNoMultiplier} {
		keys := make([]string, 0, len(m))
		for t := range m {
			keys = append(keys, t)
		}
		sort.Strings(keys)
		for _, t := range keys {
			add(t)
		}
	}
	return out
}

// Round rounds half-up: 2.5 → 3, -2.5 → -2.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

package yields

import (
	"sync"

	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
)

// Unwrapped is a yield's base amount and standing percent bonus.
type Unwrapped struct {
	BaseAmount float64 `yaml:"base_amount"`
	Percent    float64 `yaml:"percent"`
}

// Baseline maps yield type to its unwrapped values.
type Baseline map[string]Unwrapped

// UnwrapTrace reads the base amount and percent from the first step of the
// trace's base breakdown. Any missing node yields zeros.
func UnwrapTrace(trace gamestate.YieldTrace) Unwrapped {
	if trace.Base == nil || len(trace.Base.Steps) == 0 {
		return Unwrapped{}
	}
	step := trace.Base.Steps[0]
	var u Unwrapped
	if step.Base != nil {
		u.BaseAmount = step.Base.Value
	}
	if step.Modifier != nil {
		u.Percent = step.Modifier.Value
	}
	return u
}

// UnwrapAll unwraps every trace in traces.
func UnwrapAll(traces map[string]gamestate.YieldTrace) Baseline {
	out := make(Baseline, len(traces))
	for t, tr := range traces {
		out[t] = UnwrapTrace(tr)
	}
	return out
}

// BaselineCache holds the player's and each city's unwrapped yields. Values
// change only on Update, so a burst of previews shares one unwrap.
type BaselineCache struct {
	mu     sync.RWMutex
	player Baseline
	cities map[int]Baseline
}

// NewBaselineCache returns an empty cache; Get returns an empty Baseline
// until Update is called.
func NewBaselineCache() *BaselineCache {
	return &BaselineCache{player: Baseline{}, cities: map[int]Baseline{}}
}

// Update refreshes every baseline from the provider's current snapshot.
//
// Precondition: p must return a non-nil snapshot.
func (c *BaselineCache) Update(p gamestate.Provider) {
	snap := p.Snapshot()
	player := UnwrapAll(snap.Player.Yields)
	cities := make(map[int]Baseline, len(snap.Cities))
	for i := range snap.Cities {
		cities[snap.Cities[i].ID] = UnwrapAll(snap.Cities[i].Yields)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = player
	c.cities = cities
}

// Get returns the player's baseline.
func (c *BaselineCache) Get() Baseline {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.player
}

// City returns the baseline of city id, empty when unknown.
func (c *BaselineCache) City(id int) Baseline {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if b, ok := c.cities[id]; ok {
		return b
	}
	return Baseline{}
}

// Invalidate drops every cached baseline.
func (c *BaselineCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = Baseline{}
	c.cities = map[int]Baseline{}
}

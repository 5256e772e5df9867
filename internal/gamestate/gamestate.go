// Package gamestate is the read-only query surface over the live game that a
// preview runs against: the local player, their cities, plots and units, and
// the yield-computation traces the host reports.
package gamestate

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// YieldTrace is one node of the host's yield-computation breakdown.
type YieldTrace struct {
	Description string       `yaml:"description,omitempty"`
	Value       float64      `yaml:"value"`
	Base        *YieldTrace  `yaml:"base,omitempty"`
	Modifier    *YieldTrace  `yaml:"modifier,omitempty"`
	Steps       []YieldTrace `yaml:"steps,omitempty"`
}

// Relationship describes the local player's standing with another player.
type Relationship struct {
	PlayerID   int  `yaml:"player_id"`
	IsMajor    bool `yaml:"is_major"`
	AtWar      bool `yaml:"at_war"`
	Allied     bool `yaml:"allied"`
	IsSuzerain bool `yaml:"is_suzerain"`
}

// Player is the local player.
type Player struct {
	ID                   int                   `yaml:"id"`
	LeaderType           string                `yaml:"leader_type"`
	CivilizationType     string                `yaml:"civilization_type"`
	ActiveTraditions     []string              `yaml:"active_traditions"`
	SpentAttributePoints map[string]int        `yaml:"spent_attribute_points"`
	Religion             string                `yaml:"religion"`
	Relationships        []Relationship        `yaml:"relationships"`
	Yields               map[string]YieldTrace `yaml:"yields"`
}

// City is a settlement owned by the local player. Towns are cities with IsTown set.
type City struct {
	ID               int                   `yaml:"id"`
	Name             string                `yaml:"name"`
	Owner            int                   `yaml:"owner"`
	OriginalOwner    int                   `yaml:"original_owner"`
	IsCapital        bool                  `yaml:"is_capital"`
	IsTown           bool                  `yaml:"is_town"`
	IsDistantLands   bool                  `yaml:"is_distant_lands"`
	Location         int                   `yaml:"location"`
	Population       int                   `yaml:"population"`
	Urban            int                   `yaml:"urban"`
	Rural            int                   `yaml:"rural"`
	PurchasedPlots   []int                 `yaml:"purchased_plots"`
	Project          string                `yaml:"project"`
	MajorityReligion string                `yaml:"majority_religion"`
	GreatWorks       int                   `yaml:"great_works"`
	Resources        []string              `yaml:"resources"`
	Yields           map[string]YieldTrace `yaml:"yields"`
}

// Specialists is the population neither urban nor rural.
func (c *City) Specialists() int {
	return c.Population - c.Urban - c.Rural
}

// Plot is one map tile.
type Plot struct {
	Index          int      `yaml:"index"`
	Terrain        string   `yaml:"terrain"`
	Biome          string   `yaml:"biome"`
	Feature        string   `yaml:"feature"`
	Resource       string   `yaml:"resource"`
	Revealed       bool     `yaml:"revealed"`
	District       string   `yaml:"district"`
	Constructibles []string `yaml:"constructibles"`
	CoastalLand    bool     `yaml:"coastal_land"`
	River          bool     `yaml:"river"`
}

// Unit is a unit owned by the local player.
type Unit struct {
	ID          int     `yaml:"id"`
	Type        string  `yaml:"type"`
	Plot        int     `yaml:"plot"`
	IsCommander bool    `yaml:"is_commander"`
	Level       int     `yaml:"level"`
	Maintenance float64 `yaml:"maintenance"`
}

// Snapshot is a consistent view of the game at preview time.
// It must not be mutated after the first lookup.
type Snapshot struct {
	Player Player `yaml:"player"`
	Map    Map    `yaml:"map"`
	Cities []City `yaml:"cities"`
	Plots  []Plot `yaml:"plots"`
	Units  []Unit `yaml:"units"`

	once       sync.Once
	cityByID   map[int]*City
	plotByIdx  map[int]*Plot
	cityAtPlot map[int]*City
}

func (s *Snapshot) index() {
	s.once.Do(func() {
		s.cityByID = make(map[int]*City, len(s.Cities))
		s.plotByIdx = make(map[int]*Plot, len(s.Plots))
		s.cityAtPlot = make(map[int]*City)
		for i := range s.Cities {
			c := &s.Cities[i]
			s.cityByID[c.ID] = c
			s.cityAtPlot[c.Location] = c
			for _, p := range c.PurchasedPlots {
				if _, ok := s.cityAtPlot[p]; !ok {
					s.cityAtPlot[p] = c
				}
			}
		}
		for i := range s.Plots {
			s.plotByIdx[s.Plots[i].Index] = &s.Plots[i]
		}
	})
}

// City looks up a city by id.
func (s *Snapshot) City(id int) (*City, bool) {
	s.index()
	c, ok := s.cityByID[id]
	return c, ok
}

// Plot looks up a plot by index.
func (s *Snapshot) Plot(index int) (*Plot, bool) {
	s.index()
	p, ok := s.plotByIdx[index]
	return p, ok
}

// CityAt returns the city whose centre or purchased plots include index.
func (s *Snapshot) CityAt(index int) (*City, bool) {
	s.index()
	c, ok := s.cityAtPlot[index]
	return c, ok
}

// Capital returns the player's capital, if any.
func (s *Snapshot) Capital() (*City, bool) {
	for i := range s.Cities {
		if s.Cities[i].IsCapital {
			return &s.Cities[i], true
		}
	}
	return nil, false
}

// Neighbours returns the plots adjacent to index that exist in the snapshot.
func (s *Snapshot) Neighbours(index int) []*Plot {
	var out []*Plot
	for _, n := range s.Map.Neighbours(index) {
		if p, ok := s.Plot(n); ok {
			out = append(out, p)
		}
	}
	return out
}

// NumCities counts settlements; towns and cities select which kinds count.
func (s *Snapshot) NumCities(cities, towns bool) int {
	n := 0
	for _, c := range s.Cities {
		if (c.IsTown && towns) || (!c.IsTown && cities) {
			n++
		}
	}
	return n
}

// CityPlots returns the plots of c that exist in the snapshot: its centre first,
// then its purchased plots, each once.
func (s *Snapshot) CityPlots(c *City) []*Plot {
	seen := make(map[int]bool, len(c.PurchasedPlots)+1)
	var out []*Plot
	for _, idx := range append([]int{c.Location}, c.PurchasedPlots...) {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		if p, ok := s.Plot(idx); ok {
			out = append(out, p)
		}
	}
	return out
}

// Constructibles returns every constructible type standing on c's plots.
func (s *Snapshot) Constructibles(c *City) []string {
	var out []string
	for _, p := range s.CityPlots(c) {
		out = append(out, p.Constructibles...)
	}
	return out
}

// UnitTypeInfo aggregates the player's units of one type.
type UnitTypeInfo struct {
	Type        string
	Count       int
	Maintenance float64
}

// UnitTypes groups the player's units by type in first-seen order.
func (s *Snapshot) UnitTypes() []UnitTypeInfo {
	pos := make(map[string]int)
	var out []UnitTypeInfo
	for _, u := range s.Units {
		i, ok := pos[u.Type]
		if !ok {
			i = len(out)
			pos[u.Type] = i
			out = append(out, UnitTypeInfo{Type: u.Type})
		}
		out[i].Count++
		out[i].Maintenance += u.Maintenance
	}
	return out
}

// Provider supplies the snapshot a preview runs against.
type Provider interface {
	Snapshot() *Snapshot
}

// StaticProvider always returns the same snapshot.
type StaticProvider struct {
	snap *Snapshot
}

// NewStaticProvider wraps snap.
func NewStaticProvider(snap *Snapshot) *StaticProvider {
	return &StaticProvider{snap: snap}
}

// Snapshot returns the wrapped snapshot.
func (p *StaticProvider) Snapshot() *Snapshot {
	return p.snap
}

// LoadSnapshot reads a YAML snapshot from path.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns a Snapshot or an error; unknown fields are errors.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %q: %w", path, err)
	}
	var s Snapshot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing snapshot %q: %w", path, err)
	}
	if err := s.Map.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", path, err)
	}
	return &s, nil
}

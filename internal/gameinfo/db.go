package gameinfo

import (
	"strings"
	"sync"
)

type index struct {
	modifiers          map[string]Modifier
	dynamicModifiers   map[string]DynamicModifier
	modifierArgs       map[string][]ModifierArgument
	requirementSets    map[string]RequirementSet
	setRequirements    map[string][]string
	requirements       map[string]Requirement
	requirementArgs    map[string][]RequirementArgument
	traditions         map[string]Tradition
	traditionModifiers map[string][]string
	terrains           map[string]Terrain
	districts          map[string]District
	constructibles     map[string]Constructible
	units              map[string]Unit
	adjacencies        map[string]AdjacencyYieldChange
	constructibleAdj   map[string][]ConstructibleAdjacency
	warehouses         map[string]WarehouseYieldChange
}

func buildIndex(t *Tables) *index {
	idx := &index{
		modifiers:          make(map[string]Modifier, len(t.Modifiers)),
		dynamicModifiers:   make(map[string]DynamicModifier, len(t.DynamicModifiers)),
		modifierArgs:       make(map[string][]ModifierArgument),
		requirementSets:    make(map[string]RequirementSet, len(t.RequirementSets)),
		setRequirements:    make(map[string][]string),
		requirements:       make(map[string]Requirement, len(t.Requirements)),
		requirementArgs:    make(map[string][]RequirementArgument),
		traditions:         make(map[string]Tradition, len(t.Traditions)),
		traditionModifiers: make(map[string][]string),
		terrains:           make(map[string]Terrain, len(t.Terrains)),
		districts:          make(map[string]District, len(t.Districts)),
		constructibles:     make(map[string]Constructible, len(t.Constructibles)),
		units:              make(map[string]Unit, len(t.Units)),
		adjacencies:        make(map[string]AdjacencyYieldChange, len(t.AdjacencyYieldChanges)),
		constructibleAdj:   make(map[string][]ConstructibleAdjacency),
		warehouses:         make(map[string]WarehouseYieldChange, len(t.WarehouseYieldChanges)),
	}
	for _, r := range t.Modifiers {
		idx.modifiers[r.ModifierID] = r
	}
	for _, r := range t.DynamicModifiers {
		idx.dynamicModifiers[r.ModifierType] = r
	}
	for _, r := range t.ModifierArguments {
		idx.modifierArgs[r.ModifierID] = append(idx.modifierArgs[r.ModifierID], r)
	}
	for _, r := range t.RequirementSets {
		idx.requirementSets[r.RequirementSetID] = r
	}
	for _, r := range t.RequirementSetRequirements {
		idx.setRequirements[r.RequirementSetID] = append(idx.setRequirements[r.RequirementSetID], r.RequirementID)
	}
	for _, r := range t.Requirements {
		idx.requirements[r.RequirementID] = r
	}
	for _, r := range t.RequirementArguments {
		idx.requirementArgs[r.RequirementID] = append(idx.requirementArgs[r.RequirementID], r)
	}
	for _, r := range t.Traditions {
		idx.traditions[r.TraditionType] = r
	}
	for _, r := range t.TraditionModifiers {
		idx.traditionModifiers[r.TraditionType] = append(idx.traditionModifiers[r.TraditionType], r.ModifierID)
	}
	for _, r := range t.Terrains {
		idx.terrains[r.TerrainType] = r
	}
	for _, r := range t.Districts {
		idx.districts[r.DistrictType] = r
	}
	for _, r := range t.Constructibles {
		idx.constructibles[r.ConstructibleType] = r
	}
	for _, r := range t.Units {
		idx.units[r.UnitType] = r
	}
	for _, r := range t.AdjacencyYieldChanges {
		idx.adjacencies[r.ID] = r
	}
	for _, r := range t.ConstructibleAdjacencies {
		idx.constructibleAdj[r.ConstructibleType] = append(idx.constructibleAdj[r.ConstructibleType], r)
	}
	for _, r := range t.WarehouseYieldChanges {
		idx.warehouses[r.ID] = r
	}
	return idx
}

type tagSet map[string]struct{}

// DB serves keyed lookups over a Tables snapshot. Indexes are built on first
// use; tag and trait sets are memoised per type on first query. All caches
// are dropped by Reload and Invalidate. DB is safe for concurrent use.
type DB struct {
	mu           sync.RWMutex
	tables       *Tables
	idx          *index
	typeTags     map[string]tagSet
	leaderTraits map[string]tagSet
	civTraits    map[string]tagSet
}

// NewDB wraps tables.
//
// Precondition: tables must not be nil and must not be mutated afterwards.
func NewDB(tables *Tables) *DB {
	d := &DB{tables: tables}
	d.resetLocked()
	return d
}

// Reload swaps the underlying tables and drops every cache.
func (d *DB) Reload(tables *Tables) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables = tables
	d.resetLocked()
}

// Invalidate drops every cache without changing the tables.
func (d *DB) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

// Tables returns the current snapshot.
func (d *DB) Tables() *Tables {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tables
}

func (d *DB) resetLocked() {
	d.idx = nil
	d.typeTags = make(map[string]tagSet)
	d.leaderTraits = make(map[string]tagSet)
	d.civTraits = make(map[string]tagSet)
}

func (d *DB) index() *index {
	d.mu.RLock()
	idx := d.idx
	d.mu.RUnlock()
	if idx != nil {
		return idx
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.idx == nil {
		d.idx = buildIndex(d.tables)
	}
	return d.idx
}

// Modifier looks up a Modifiers row.
func (d *DB) Modifier(id string) (Modifier, bool) {
	r, ok := d.index().modifiers[id]
	return r, ok
}

// DynamicModifier looks up the collection and effect bound to modifierType.
func (d *DB) DynamicModifier(modifierType string) (DynamicModifier, bool) {
	r, ok := d.index().dynamicModifiers[modifierType]
	return r, ok
}

// ModifierArguments returns the arguments of modifier id in table order.
func (d *DB) ModifierArguments(id string) []ModifierArgument {
	return d.index().modifierArgs[id]
}

// RequirementSet looks up a RequirementSets row.
func (d *DB) RequirementSet(id string) (RequirementSet, bool) {
	r, ok := d.index().requirementSets[id]
	return r, ok
}

// RequirementSetRequirements returns the requirement ids of set id in table order.
func (d *DB) RequirementSetRequirements(id string) []string {
	return d.index().setRequirements[id]
}

// Requirement looks up a Requirements row.
func (d *DB) Requirement(id string) (Requirement, bool) {
	r, ok := d.index().requirements[id]
	return r, ok
}

// RequirementArguments returns the arguments of requirement id in table order.
func (d *DB) RequirementArguments(id string) []RequirementArgument {
	return d.index().requirementArgs[id]
}

// Tradition looks up a Traditions row.
func (d *DB) Tradition(id string) (Tradition, bool) {
	r, ok := d.index().traditions[id]
	return r, ok
}

// TraditionModifiers returns the modifier ids of a tradition in table order.
func (d *DB) TraditionModifiers(traditionType string) []string {
	return d.index().traditionModifiers[traditionType]
}

// Terrain looks up a Terrains row.
func (d *DB) Terrain(terrainType string) (Terrain, bool) {
	r, ok := d.index().terrains[terrainType]
	return r, ok
}

// District looks up a Districts row.
func (d *DB) District(districtType string) (District, bool) {
	r, ok := d.index().districts[districtType]
	return r, ok
}

// Constructible looks up a Constructibles row.
func (d *DB) Constructible(constructibleType string) (Constructible, bool) {
	r, ok := d.index().constructibles[constructibleType]
	return r, ok
}

// Unit looks up a Units row.
func (d *DB) Unit(unitType string) (Unit, bool) {
	r, ok := d.index().units[unitType]
	return r, ok
}

// AdjacencyYieldChange looks up an Adjacency_YieldChanges row.
func (d *DB) AdjacencyYieldChange(id string) (AdjacencyYieldChange, bool) {
	r, ok := d.index().adjacencies[id]
	return r, ok
}

// ConstructibleAdjacencies returns the adjacencies attached to constructibleType.
func (d *DB) ConstructibleAdjacencies(constructibleType string) []ConstructibleAdjacency {
	return d.index().constructibleAdj[constructibleType]
}

// WarehouseYieldChange looks up a Warehouse_YieldChanges row.
func (d *DB) WarehouseYieldChange(id string) (WarehouseYieldChange, bool) {
	r, ok := d.index().warehouses[id]
	return r, ok
}

// YieldTypes lists the Yields table in order.
func (d *DB) YieldTypes() []string {
	t := d.Tables()
	out := make([]string, 0, len(t.Yields))
	for _, y := range t.Yields {
		out = append(out, y.YieldType)
	}
	return out
}

// HasTypeTag reports whether typ carries tag.
func (d *DB) HasTypeTag(typ, tag string) bool {
	_, ok := d.memo(&d.typeTags, typ, func(t *Tables) tagSet {
		s := tagSet{}
		for _, r := range t.TypeTags {
			if r.Type == typ {
				s[r.Tag] = struct{}{}
			}
		}
		return s
	})[tag]
	return ok
}

// HasAnyTypeTag reports whether typ carries at least one of tags.
func (d *DB) HasAnyTypeTag(typ string, tags []string) bool {
	for _, tag := range tags {
		if d.HasTypeTag(typ, strings.TrimSpace(tag)) {
			return true
		}
	}
	return false
}

// LeaderHasTrait reports whether leaderType carries traitType.
func (d *DB) LeaderHasTrait(leaderType, traitType string) bool {
	_, ok := d.memo(&d.leaderTraits, leaderType, func(t *Tables) tagSet {
		s := tagSet{}
		for _, r := range t.LeaderTraits {
			if r.LeaderType == leaderType {
				s[r.TraitType] = struct{}{}
			}
		}
		return s
	})[traitType]
	return ok
}

// CivilizationHasTrait reports whether civilizationType carries traitType.
func (d *DB) CivilizationHasTrait(civilizationType, traitType string) bool {
	_, ok := d.memo(&d.civTraits, civilizationType, func(t *Tables) tagSet {
		s := tagSet{}
		for _, r := range t.CivilizationTraits {
			if r.CivilizationType == civilizationType {
				s[r.TraitType] = struct{}{}
			}
		}
		return s
	})[traitType]
	return ok
}

func (d *DB) memo(cache *map[string]tagSet, key string, build func(*Tables) tagSet) tagSet {
	d.mu.RLock()
	s, ok := (*cache)[key]
	d.mu.RUnlock()
	if ok {
		return s
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := (*cache)[key]; ok {
		return s
	}
	s = build(d.tables)
	(*cache)[key] = s
	return s
}

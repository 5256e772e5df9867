// Package gameinfo is the read-only adapter over the game's rule database:
// modifiers, requirements, tags, traditions and the yield-change tables the
// preview engine reads. Rows mirror the game's own table and column names.
package gameinfo

// Modifier is a row of the Modifiers table.
type Modifier struct {
	ModifierID              string `yaml:"ModifierId"`
	ModifierType            string `yaml:"ModifierType"`
	OwnerRequirementSetID   string `yaml:"OwnerRequirementSetId"`
	SubjectRequirementSetID string `yaml:"SubjectRequirementSetId"`
	Permanent               bool   `yaml:"Permanent"`
	RunOnce                 bool   `yaml:"RunOnce"`
	NewOnly                 bool   `yaml:"NewOnly"`
}

// DynamicModifier binds a ModifierType to its collection and effect.
type DynamicModifier struct {
	ModifierType   string `yaml:"ModifierType"`
	CollectionType string `yaml:"CollectionType"`
	EffectType     string `yaml:"EffectType"`
}

// ModifierArgument is one named argument of a modifier.
type ModifierArgument struct {
	ModifierID  string `yaml:"ModifierId"`
	Name        string `yaml:"Name"`
	Value       string `yaml:"Value"`
	Extra       string `yaml:"Extra"`
	SecondExtra string `yaml:"SecondExtra"`
	Type        string `yaml:"Type"`
}

// RequirementSet is a row of the RequirementSets table.
type RequirementSet struct {
	RequirementSetID   string `yaml:"RequirementSetId"`
	RequirementSetType string `yaml:"RequirementSetType"`
}

// RequirementSetRequirement links a requirement to a set, in table order.
type RequirementSetRequirement struct {
	RequirementSetID string `yaml:"RequirementSetId"`
	RequirementID    string `yaml:"RequirementId"`
}

// Requirement is a row of the Requirements table.
type Requirement struct {
	RequirementID   string `yaml:"RequirementId"`
	RequirementType string `yaml:"RequirementType"`
	Inverse         bool   `yaml:"Inverse"`
}

// RequirementArgument is one named argument of a requirement.
type RequirementArgument struct {
	RequirementID string `yaml:"RequirementId"`
	Name          string `yaml:"Name"`
	Value         string `yaml:"Value"`
	Extra         string `yaml:"Extra"`
	SecondExtra   string `yaml:"SecondExtra"`
	Type          string `yaml:"Type"`
}

// TypeTag assigns Tag to Type.
type TypeTag struct {
	Type string `yaml:"Type"`
	Tag  string `yaml:"Tag"`
}

// Tradition is a policy card.
type Tradition struct {
	TraditionType string `yaml:"TraditionType"`
	Name          string `yaml:"Name"`
	AgeType       string `yaml:"AgeType"`
	IsCrisis      bool   `yaml:"IsCrisis"`
}

// TraditionModifier links a tradition to one of its modifiers.
type TraditionModifier struct {
	TraditionType string `yaml:"TraditionType"`
	ModifierID    string `yaml:"ModifierId"`
}

// Terrain is a row of the Terrains table.
type Terrain struct {
	TerrainType string `yaml:"TerrainType"`
	Name        string `yaml:"Name"`
	Hills       bool   `yaml:"Hills"`
	Mountain    bool   `yaml:"Mountain"`
	Water       bool   `yaml:"Water"`
	Impassable  bool   `yaml:"Impassable"`
}

// District is a row of the Districts table.
type District struct {
	DistrictType  string `yaml:"DistrictType"`
	DistrictClass string `yaml:"DistrictClass"`
}

// Constructible is a row of the Constructibles table.
type Constructible struct {
	ConstructibleType  string `yaml:"ConstructibleType"`
	ConstructibleClass string `yaml:"ConstructibleClass"`
}

// Unit is a row of the Units table.
type Unit struct {
	UnitType  string `yaml:"UnitType"`
	Domain    string `yaml:"Domain"`
	CoreClass string `yaml:"CoreClass"`
}

// Yield is a row of the Yields table.
type Yield struct {
	YieldType string `yaml:"YieldType"`
	Name      string `yaml:"Name"`
}

// AdjacencyYieldChange describes a yield granted per qualifying neighbour plot.
// Every non-empty Adjacent* predicate must hold for a neighbour to qualify.
type AdjacencyYieldChange struct {
	ID                       string  `yaml:"ID"`
	YieldType                string  `yaml:"YieldType"`
	YieldChange              float64 `yaml:"YieldChange"`
	TilesRequired            int     `yaml:"TilesRequired"`
	AdjacentTerrain          string  `yaml:"AdjacentTerrain"`
	AdjacentBiome            string  `yaml:"AdjacentBiome"`
	AdjacentFeature          string  `yaml:"AdjacentFeature"`
	AdjacentConstructible    string  `yaml:"AdjacentConstructible"`
	AdjacentConstructibleTag string  `yaml:"AdjacentConstructibleTag"`
	AdjacentDistrict         string  `yaml:"AdjacentDistrict"`
	AdjacentResource         bool    `yaml:"AdjacentResource"`
	AdjacentRiver            bool    `yaml:"AdjacentRiver"`
	AdjacentQuarter          bool    `yaml:"AdjacentQuarter"`
	Age                      string  `yaml:"Age"`
	ProjectMaxYield          bool    `yaml:"ProjectMaxYield"`
}

// ConstructibleAdjacency attaches an adjacency to a constructible type.
type ConstructibleAdjacency struct {
	ConstructibleType  string `yaml:"ConstructibleType"`
	YieldChangeID      string `yaml:"YieldChangeId"`
	RequiresActivation bool   `yaml:"RequiresActivation"`
}

// WarehouseYieldChange grants YieldChange per matching constructible in a city.
type WarehouseYieldChange struct {
	ID                  string  `yaml:"ID"`
	YieldType           string  `yaml:"YieldType"`
	YieldChange         float64 `yaml:"YieldChange"`
	ConstructibleInCity string  `yaml:"ConstructibleInCity"`
	Age                 string  `yaml:"Age"`
}

// LeaderTrait assigns a trait to a leader.
type LeaderTrait struct {
	LeaderType string `yaml:"LeaderType"`
	TraitType  string `yaml:"TraitType"`
}

// CivilizationTrait assigns a trait to a civilization.
type CivilizationTrait struct {
	CivilizationType string `yaml:"CivilizationType"`
	TraitType        string `yaml:"TraitType"`
}

// Tables is an in-memory snapshot of every rule table the engine reads.
// Row order is preserved from the source.
type Tables struct {
	Modifiers                  []Modifier                  `yaml:"Modifiers"`
	DynamicModifiers           []DynamicModifier           `yaml:"DynamicModifiers"`
	ModifierArguments          []ModifierArgument          `yaml:"ModifierArguments"`
	RequirementSets            []RequirementSet            `yaml:"RequirementSets"`
	RequirementSetRequirements []RequirementSetRequirement `yaml:"RequirementSetRequirements"`
	Requirements               []Requirement               `yaml:"Requirements"`
	RequirementArguments       []RequirementArgument       `yaml:"RequirementArguments"`
	TypeTags                   []TypeTag                   `yaml:"TypeTags"`
	Traditions                 []Tradition                 `yaml:"Traditions"`
	TraditionModifiers         []TraditionModifier         `yaml:"TraditionModifiers"`
	Terrains                   []Terrain                   `yaml:"Terrains"`
	Districts                  []District                  `yaml:"Districts"`
	Constructibles             []Constructible             `yaml:"Constructibles"`
	Units                      []Unit                      `yaml:"Units"`
	Yields                     []Yield                     `yaml:"Yields"`
	AdjacencyYieldChanges      []AdjacencyYieldChange      `yaml:"Adjacency_YieldChanges"`
	ConstructibleAdjacencies   []ConstructibleAdjacency    `yaml:"Constructible_Adjacencies"`
	WarehouseYieldChanges      []WarehouseYieldChange      `yaml:"Warehouse_YieldChanges"`
	LeaderTraits               []LeaderTrait               `yaml:"LeaderTraits"`
	CivilizationTraits         []CivilizationTrait         `yaml:"CivilizationTraits"`
}

// Merge appends every row of other onto t.
func (t *Tables) Merge(other *Tables) {
	t.Modifiers = append(t.Modifiers, other.Modifiers...)
	t.DynamicModifiers = append(t.DynamicModifiers, other.DynamicModifiers...)
	t.ModifierArguments = append(t.ModifierArguments, other.ModifierArguments...)
	t.RequirementSets = append(t.RequirementSets, other.RequirementSets...)
	t.RequirementSetRequirements = append(t.RequirementSetRequirements, other.RequirementSetRequirements...)
	t.Requirements = append(t.Requirements, other.Requirements...)
	t.RequirementArguments = append(t.RequirementArguments, other.RequirementArguments...)
	t.TypeTags = append(t.TypeTags, other.TypeTags...)
	t.Traditions = append(t.Traditions, other.Traditions...)
	t.TraditionModifiers = append(t.TraditionModifiers, other.TraditionModifiers...)
	t.Terrains = append(t.Terrains, other.Terrains...)
	t.Districts = append(t.Districts, other.Districts...)
	t.Constructibles = append(t.Constructibles, other.Constructibles...)
	t.Units = append(t.Units, other.Units...)
	t.Yields = append(t.Yields, other.Yields...)
	t.AdjacencyYieldChanges = append(t.AdjacencyYieldChanges, other.AdjacencyYieldChanges...)
	t.ConstructibleAdjacencies = append(t.ConstructibleAdjacencies, other.ConstructibleAdjacencies...)
	t.WarehouseYieldChanges = append(t.WarehouseYieldChanges, other.WarehouseYieldChanges...)
	t.LeaderTraits = append(t.LeaderTraits, other.LeaderTraits...)
	t.CivilizationTraits = append(t.CivilizationTraits, other.CivilizationTraits...)
}

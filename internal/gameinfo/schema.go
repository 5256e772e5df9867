package gameinfo

import (
	"fmt"
	"strings"
)

// ColumnKind is the storage class of a rule table column.
type ColumnKind int

const (
	Text ColumnKind = iota
	Integer
	Real
	Boolean
)

// Column is one column of a rule table.
type Column struct {
	Name string
	Kind ColumnKind
}

// Dialect selects SQL literal spelling.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Scanner is satisfied by *sql.Rows and pgx.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Table maps one game table onto a Tables field. Both SQL loaders and the
// postgres store use the same table and column names as the game database.
type Table struct {
	Name    string
	Columns []Column
	scan    func(t *Tables, s Scanner) error
	rows    func(t *Tables) [][]any
}

// ColumnNames returns the column names in scan order.
func (tb Table) ColumnNames() []string {
	out := make([]string, len(tb.Columns))
	for i, c := range tb.Columns {
		out[i] = c.Name
	}
	return out
}

// SelectSQL returns a SELECT over every column with NULLs coalesced to zero values.
func (tb Table) SelectSQL(d Dialect) string {
	cols := make([]string, len(tb.Columns))
	for i, c := range tb.Columns {
		cols[i] = fmt.Sprintf("COALESCE(%q, %s)", c.Name, zeroLiteral(c.Kind, d))
	}
	return fmt.Sprintf("SELECT %s FROM %q", strings.Join(cols, ", "), tb.Name)
}

// CreateSQL returns an idempotent CREATE TABLE statement for the dialect.
func (tb Table) CreateSQL(d Dialect) string {
	cols := make([]string, len(tb.Columns))
	for i, c := range tb.Columns {
		cols[i] = fmt.Sprintf("%q %s", c.Name, sqlType(c.Kind, d))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", tb.Name, strings.Join(cols, ", "))
}

// InsertSQL returns a parameterised INSERT over every column.
func (tb Table) InsertSQL(d Dialect) string {
	marks := make([]string, len(tb.Columns))
	quoted := make([]string, len(tb.Columns))
	for i, c := range tb.Columns {
		quoted[i] = fmt.Sprintf("%q", c.Name)
		if d == Postgres {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", tb.Name, strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// Scan appends the current row of s onto the matching Tables field.
func (tb Table) Scan(t *Tables, s Scanner) error {
	if err := tb.scan(t, s); err != nil {
		return fmt.Errorf("scanning %s: %w", tb.Name, err)
	}
	return nil
}

// Rows returns the table's rows from t as column-ordered values.
func (tb Table) Rows(t *Tables) [][]any {
	return tb.rows(t)
}

func zeroLiteral(k ColumnKind, d Dialect) string {
	switch k {
	case Text:
		return "''"
	case Boolean:
		if d == Postgres {
			return "false"
		}
		return "0"
	default:
		return "0"
	}
}

func sqlType(k ColumnKind, d Dialect) string {
	switch k {
	case Integer:
		return "INTEGER"
	case Real:
		if d == Postgres {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	case Boolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func text(name string) Column   { return Column{Name: name, Kind: Text} }
func integer(name string) Column { return Column{Name: name, Kind: Integer} }
func float(name string) Column   { return Column{Name: name, Kind: Real} }
func boolean(name string) Column { return Column{Name: name, Kind: Boolean} }

// Schema lists every rule table the engine reads.
var Schema = []Table{
	{
		Name: "Modifiers",
		Columns: []Column{text("ModifierId"), text("ModifierType"), text("OwnerRequirementSetId"),
			text("SubjectRequirementSetId"), boolean("Permanent"), boolean("RunOnce"), boolean("NewOnly")},
		scan: func(t *Tables, s Scanner) error {
			var r Modifier
			if err := s.Scan(&r.ModifierID, &r.ModifierType, &r.OwnerRequirementSetID,
				&r.SubjectRequirementSetID, &r.Permanent, &r.RunOnce, &r.NewOnly); err != nil {
				return err
			}
			t.Modifiers = append(t.Modifiers, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.Modifiers))
			for _, r := range t.Modifiers {
				out = append(out, []any{r.ModifierID, r.ModifierType, r.OwnerRequirementSetID,
					r.SubjectRequirementSetID, r.Permanent, r.RunOnce, r.NewOnly})
			}
			return out
		},
	},
	{
		Name:    "DynamicModifiers",
		Columns: []Column{text("ModifierType"), text("CollectionType"), text("EffectType")},
		scan: func(t *Tables, s Scanner) error {
			var r DynamicModifier
			if err := s.Scan(&r.ModifierType, &r.CollectionType, &r.EffectType); err != nil {
				return err
			}
			t.DynamicModifiers = append(t.DynamicModifiers, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.DynamicModifiers))
			for _, r := range t.DynamicModifiers {
				out = append(out, []any{r.ModifierType, r.CollectionType, r.EffectType})
			}
			return out
		},
	},
	{
		Name: "ModifierArguments",
		Columns: []Column{text("ModifierId"), text("Name"), text("Value"), text("Extra"),
			text("SecondExtra"), text("Type")},
		scan: func(t *Tables, s Scanner) error {
			var r ModifierArgument
			if err := s.Scan(&r.ModifierID, &r.Name, &r.Value, &r.Extra, &r.SecondExtra, &r.Type); err != nil {
				return err
			}
			t.ModifierArguments = append(t.ModifierArguments, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.ModifierArguments))
			for _, r := range t.ModifierArguments {
				out = append(out, []any{r.ModifierID, r.Name, r.Value, r.Extra, r.SecondExtra, r.Type})
			}
			return out
		},
	},
	{
		Name:    "RequirementSets",
		Columns: []Column{text("RequirementSetId"), text("RequirementSetType")},
		scan: func(t *Tables, s Scanner) error {
			var r RequirementSet
			if err := s.Scan(&r.RequirementSetID, &r.RequirementSetType); err != nil {
				return err
			}
			t.RequirementSets = append(t.RequirementSets, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.RequirementSets))
			for _, r := range t.RequirementSets {
				out = append(out, []any{r.RequirementSetID, r.RequirementSetType})
			}
			return out
		},
	},
	{
		Name:    "RequirementSetRequirements",
		Columns: []Column{text("RequirementSetId"), text("RequirementId")},
		scan: func(t *Tables, s Scanner) error {
			var r RequirementSetRequirement
			if err := s.Scan(&r.RequirementSetID, &r.RequirementID); err != nil {
				return err
			}
			t.RequirementSetRequirements = append(t.RequirementSetRequirements, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.RequirementSetRequirements))
			for _, r := range t.RequirementSetRequirements {
				out = append(out, []any{r.RequirementSetID, r.RequirementID})
			}
			return out
		},
	},
	{
		Name:    "Requirements",
		Columns: []Column{text("RequirementId"), text("RequirementType"), boolean("Inverse")},
		scan: func(t *Tables, s Scanner) error {
			var r Requirement
			if err := s.Scan(&r.RequirementID, &r.RequirementType, &r.Inverse); err != nil {
				return err
			}
			t.Requirements = append(t.Requirements, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.Requirements))
			for _, r := range t.Requirements {
				out = append(out, []any{r.RequirementID, r.RequirementType, r.Inverse})
			}
			return out
		},
	},
	{
		Name: "RequirementArguments",
		Columns: []Column{text("RequirementId"), text("Name"), text("Value"), text("Extra"),
			text("SecondExtra"), text("Type")},
		scan: func(t *Tables, s Scanner) error {
			var r RequirementArgument
			if err := s.Scan(&r.RequirementID, &r.Name, &r.Value, &r.Extra, &r.SecondExtra, &r.Type); err != nil {
				return err
			}
			t.RequirementArguments = append(t.RequirementArguments, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.RequirementArguments))
			for _, r := range t.RequirementArguments {
				out = append(out, []any{r.RequirementID, r.Name, r.Value, r.Extra, r.SecondExtra, r.Type})
			}
			return out
		},
	},
	{
		Name:    "TypeTags",
		Columns: []Column{text("Type"), text("Tag")},
		scan: func(t *Tables, s Scanner) error {
			var r TypeTag
			if err := s.Scan(&r.Type, &r.Tag); err != nil {
				return err
			}
			t.TypeTags = append(t.TypeTags, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.TypeTags))
			for _, r := range t.TypeTags {
				out = append(out, []any{r.Type, r.Tag})
			}
			return out
		},
	},
	{
		Name:    "Traditions",
		Columns: []Column{text("TraditionType"), text("Name"), text("AgeType"), boolean("IsCrisis")},
		scan: func(t *Tables, s Scanner) error {
			var r Tradition
			if err := s.Scan(&r.TraditionType, &r.Name, &r.AgeType, &r.IsCrisis); err != nil {
				return err
			}
			t.Traditions = append(t.Traditions, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.Traditions))
			for _, r := range t.Traditions {
				out = append(out, []any{r.TraditionType, r.Name, r.AgeType, r.IsCrisis})
			}
			return out
		},
	},
	{
		Name:    "TraditionModifiers",
		Columns: []Column{text("TraditionType"), text("ModifierId")},
		scan: func(t *Tables, s Scanner) error {
			var r TraditionModifier
			if err := s.Scan(&r.TraditionType, &r.ModifierID); err != nil {
				return err
			}
			t.TraditionModifiers = append(t.TraditionModifiers, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.TraditionModifiers))
			for _, r := range t.TraditionModifiers {
				out = append(out, []any{r.TraditionType, r.ModifierID})
			}
			return out
		},
	},
	{
		Name: "Terrains",
		Columns: []Column{text("TerrainType"), text("Name"), boolean("Hills"), boolean("Mountain"),
			boolean("Water"), boolean("Impassable")},
		scan: func(t *Tables, s Scanner) error {
			var r Terrain
			if err := s.Scan(&r.TerrainType, &r.Name, &r.Hills, &r.Mountain, &r.Water, &r.Impassable); err != nil {
				return err
			}
			t.Terrains = append(t.Terrains, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.Terrains))
			for _, r := range t.Terrains {
				out = append(out, []any{r.TerrainType, r.Name, r.Hills, r.Mountain, r.Water, r.Impassable})
			}
			return out
		},
	},
	{
		Name:    "Districts",
		Columns: []Column{text("DistrictType"), text("DistrictClass")},
		scan: func(t *Tables, s Scanner) error {
			var r District
			if err := s.Scan(&r.DistrictType, &r.DistrictClass); err != nil {
				return err
			}
			t.Districts = append(t.Districts, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.Districts))
			for _, r := range t.Districts {
				out = append(out, []any{r.DistrictType, r.DistrictClass})
			}
			return out
		},
	},
	{
		Name:    "Constructibles",
		Columns: []Column{text("ConstructibleType"), text("ConstructibleClass")},
		scan: func(t *Tables, s Scanner) error {
			var r Constructible
			if err := s.Scan(&r.ConstructibleType, &r.ConstructibleClass); err != nil {
				return err
			}
			t.Constructibles = append(t.Constructibles, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.Constructibles))
			for _, r := range t.Constructibles {
				out = append(out, []any{r.ConstructibleType, r.ConstructibleClass})
			}
			return out
		},
	},
	{
		Name:    "Units",
		Columns: []Column{text("UnitType"), text("Domain"), text("CoreClass")},
		scan: func(t *Tables, s Scanner) error {
			var r Unit
			if err := s.Scan(&r.UnitType, &r.Domain, &r.CoreClass); err != nil {
				return err
			}
			t.Units = append(t.Units, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.Units))
			for _, r := range t.Units {
				out = append(out, []any{r.UnitType, r.Domain, r.CoreClass})
			}
			return out
		},
	},
	{
		Name:    "Yields",
		Columns: []Column{text("YieldType"), text("Name")},
		scan: func(t *Tables, s Scanner) error {
			var r Yield
			if err := s.Scan(&r.YieldType, &r.Name); err != nil {
				return err
			}
			t.Yields = append(t.Yields, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.Yields))
			for _, r := range t.Yields {
				out = append(out, []any{r.YieldType, r.Name})
			}
			return out
		},
	},
	{
		Name: "Adjacency_YieldChanges",
		Columns: []Column{text("ID"), text("YieldType"), float("YieldChange"), integer("TilesRequired"),
			text("AdjacentTerrain"), text("AdjacentBiome"), text("AdjacentFeature"),
			text("AdjacentConstructible"), text("AdjacentConstructibleTag"), text("AdjacentDistrict"),
			boolean("AdjacentResource"), boolean("AdjacentRiver"), boolean("AdjacentQuarter"),
			text("Age"), boolean("ProjectMaxYield")},
		scan: func(t *Tables, s Scanner) error {
			var r AdjacencyYieldChange
			if err := s.Scan(&r.ID, &r.YieldType, &r.YieldChange, &r.TilesRequired,
				&r.AdjacentTerrain, &r.AdjacentBiome, &r.AdjacentFeature,
				&r.AdjacentConstructible, &r.AdjacentConstructibleTag, &r.AdjacentDistrict,
				&r.AdjacentResource, &r.AdjacentRiver, &r.AdjacentQuarter,
				&r.Age, &r.ProjectMaxYield); err != nil {
				return err
			}
			t.AdjacencyYieldChanges = append(t.AdjacencyYieldChanges, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.AdjacencyYieldChanges))
			for _, r := range t.AdjacencyYieldChanges {
				out = append(out, []any{r.ID, r.YieldType, r.YieldChange, r.TilesRequired,
					r.AdjacentTerrain, r.AdjacentBiome, r.AdjacentFeature,
					r.AdjacentConstructible, r.AdjacentConstructibleTag, r.AdjacentDistrict,
					r.AdjacentResource, r.AdjacentRiver, r.AdjacentQuarter,
					r.Age, r.ProjectMaxYield})
			}
			return out
		},
	},
	{
		Name:    "Constructible_Adjacencies",
		Columns: []Column{text("ConstructibleType"), text("YieldChangeId"), boolean("RequiresActivation")},
		scan: func(t *Tables, s Scanner) error {
			var r ConstructibleAdjacency
			if err := s.Scan(&r.ConstructibleType, &r.YieldChangeID, &r.RequiresActivation); err != nil {
				return err
			}
			t.ConstructibleAdjacencies = append(t.ConstructibleAdjacencies, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.ConstructibleAdjacencies))
			for _, r := range t.ConstructibleAdjacencies {
				out = append(out, []any{r.ConstructibleType, r.YieldChangeID, r.RequiresActivation})
			}
			return out
		},
	},
	{
		Name: "Warehouse_YieldChanges",
		Columns: []Column{text("ID"), text("YieldType"), float("YieldChange"),
			text("ConstructibleInCity"), text("Age")},
		scan: func(t *Tables, s Scanner) error {
			var r WarehouseYieldChange
			if err := s.Scan(&r.ID, &r.YieldType, &r.YieldChange, &r.ConstructibleInCity, &r.Age); err != nil {
				return err
			}
			t.WarehouseYieldChanges = append(t.WarehouseYieldChanges, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.WarehouseYieldChanges))
			for _, r := range t.WarehouseYieldChanges {
				out = append(out, []any{r.ID, r.YieldType, r.YieldChange, r.ConstructibleInCity, r.Age})
			}
			return out
		},
	},
	{
		Name:    "LeaderTraits",
		Columns: []Column{text("LeaderType"), text("TraitType")},
		scan: func(t *Tables, s Scanner) error {
			var r LeaderTrait
			if err := s.Scan(&r.LeaderType, &r.TraitType); err != nil {
				return err
			}
			t.LeaderTraits = append(t.LeaderTraits, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.LeaderTraits))
			for _, r := range t.LeaderTraits {
				out = append(out, []any{r.LeaderType, r.TraitType})
			}
			return out
		},
	},
	{
		Name:    "CivilizationTraits",
		Columns: []Column{text("CivilizationType"), text("TraitType")},
		scan: func(t *Tables, s Scanner) error {
			var r CivilizationTrait
			if err := s.Scan(&r.CivilizationType, &r.TraitType); err != nil {
				return err
			}
			t.CivilizationTraits = append(t.CivilizationTraits, r)
			return nil
		},
		rows: func(t *Tables) [][]any {
			out := make([][]any, 0, len(t.CivilizationTraits))
			for _, r := range t.CivilizationTraits {
				out = append(out, []any{r.CivilizationType, r.TraitType})
			}
			return out
		},
	},
}

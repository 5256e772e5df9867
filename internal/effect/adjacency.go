package effect

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/modifier"
	"github.com/cory-johannsen/yieldpreview/internal/requirement"
	"github.com/cory-johannsen/yieldpreview/internal/yields"
)

// AdjacencyYield is the yield row grants to the constructible on plot:
// YieldChange per qualifying neighbour, or zero when fewer than TilesRequired
// neighbours qualify. The plot itself never counts.
//
// ProjectMaxYield and Age are not enforced.
func AdjacencyYield(db *gameinfo.DB, state *gamestate.Snapshot, plot *gamestate.Plot, row gameinfo.AdjacencyYieldChange) float64 {
	q := 0
	for _, n := range state.Neighbours(plot.Index) {
		if adjacencyQualifies(db, n, row) {
			q++
		}
	}
	required := max(row.TilesRequired, 1)
	if q < required {
		return 0
	}
	return row.YieldChange * float64(q)
}

// adjacencyQualifies requires every predicate row sets. A row with no
// predicate matches nothing.
func adjacencyQualifies(db *gameinfo.DB, n *gamestate.Plot, row gameinfo.AdjacencyYieldChange) bool {
	checked := false
	check := func(ok bool) bool {
		checked = true
		return ok
	}
	if row.AdjacentTerrain != "" && !check(n.Terrain == row.AdjacentTerrain) {
		return false
	}
	if row.AdjacentBiome != "" && !check(n.Biome == row.AdjacentBiome) {
		return false
	}
	if row.AdjacentFeature != "" && !check(n.Feature == row.AdjacentFeature) {
		return false
	}
	if row.AdjacentDistrict != "" && !check(n.District == row.AdjacentDistrict) {
		return false
	}
	if row.AdjacentConstructible != "" && !check(slices.Contains(n.Constructibles, row.AdjacentConstructible)) {
		return false
	}
	if row.AdjacentConstructibleTag != "" && !check(slices.ContainsFunc(n.Constructibles, func(c string) bool {
		return db.HasTypeTag(c, row.AdjacentConstructibleTag)
	})) {
		return false
	}
	if row.AdjacentResource && !check(n.Resource != "") {
		return false
	}
	if row.AdjacentRiver && !check(n.River) {
		return false
	}
	if row.AdjacentQuarter && !check(requirement.IsQuarter(db, n.Constructibles)) {
		return false
	}
	return checked
}

func adjacencyArg(ctx *Context, m *modifier.Modifier) (gameinfo.AdjacencyYieldChange, error) {
	id, err := requiredArg(m, "ConstructibleAdjacency")
	if err != nil {
		return gameinfo.AdjacencyYieldChange{}, err
	}
	row, ok := ctx.DB.AdjacencyYieldChange(id)
	if !ok {
		return gameinfo.AdjacencyYieldChange{}, fmt.Errorf("%w: Adjacency_YieldChanges %s", ErrUnknownRow, id)
	}
	return row, nil
}

// activateAdjacency adds row's yield once for each constructible on p that
// carries the adjacency.
func activateAdjacency(ctx *Context, p *gamestate.Plot, row gameinfo.AdjacencyYieldChange) {
	carriers := 0
	for _, c := range p.Constructibles {
		for _, link := range ctx.DB.ConstructibleAdjacencies(c) {
			if link.YieldChangeID == row.ID {
				carriers++
				break
			}
		}
	}
	if carriers == 0 {
		return
	}
	v := AdjacencyYield(ctx.DB, ctx.State, p, row) * float64(carriers)
	for _, t := range yields.ParseYieldTypes(row.YieldType) {
		ctx.Delta.AddAmount(t, v)
	}
}

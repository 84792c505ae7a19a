package game

import (
	"fmt"
	"strconv"

	"gridmerge.app/internal/sim/cellstore"
	"gridmerge.app/internal/sim/grid"
)

// handleViewport reconciles the rendered set against new visible bounds:
// spawnable cells entering the padded range get a visual, cells that left the
// padded range lose theirs. Spawn and despawn use the same range, so one
// event never destroys what it just created and identical bounds are a no-op.
// Store entries survive despawn untouched, so a cell re-entering the viewport
// shows exactly its persisted state.
func (g *Game) handleViewport(b grid.Bounds) {
	min, max := g.geom.CoordRange(b, g.cfg.ViewportPadding)
	for i := min.I; i <= max.I; i++ {
		for j := min.J; j <= max.J; j++ {
			c := grid.Coord{I: i, J: j}
			if _, ok := g.rendered[c]; ok {
				continue
			}
			if !g.store.SpawnsAt(c) {
				continue
			}
			v := g.viewFor(g.store.Get(c))
			g.rendered[c] = v
			g.surface.SpawnCell(v)
		}
	}
	for c := range g.rendered {
		if c.I >= min.I && c.I <= max.I && c.J >= min.J && c.J <= max.J {
			continue
		}
		delete(g.rendered, c)
		g.surface.DespawnCell(c)
	}
}

// refreshRendered recomputes every rendered cell's view and pushes only the
// ones that changed. Called after the player moves or the held token changes.
func (g *Game) refreshRendered() {
	for c, last := range g.rendered {
		v := g.viewFor(g.store.Get(c))
		if v == last {
			continue
		}
		g.rendered[c] = v
		g.surface.UpdateCell(v)
	}
}

func (g *Game) viewFor(cs *cellstore.CellState) CellView {
	c := cs.Coord
	eff := cs.EffectiveValue()
	v := CellView{
		Coord:       c,
		Bounds:      g.geom.CellBounds(c),
		Dimmed:      cs.PickedUp,
		Interactive: grid.Chebyshev(c, g.player.Pos) <= g.cfg.InteractionRadius,
		FillColor:   g.fillColor(c),
		Tooltip:     g.tooltipFor(eff),
	}
	if !cs.PickedUp {
		v.Label = strconv.Itoa(cs.TokenValue)
	}
	return v
}

func (g *Game) fillColor(c grid.Coord) string {
	switch d := grid.Chebyshev(c, g.player.Pos); {
	case d <= g.cfg.NearRadius:
		return g.cfg.NearColor
	case d <= g.cfg.MidRadius:
		return g.cfg.MidColor
	default:
		return g.cfg.FarColor
	}
}

func (g *Game) tooltipFor(eff int) string {
	switch {
	case eff == 0:
		return "Empty cell"
	case g.player.Held == 0:
		return fmt.Sprintf("Token %d (click to pick up)", eff)
	case g.player.Held == eff:
		return fmt.Sprintf("Token %d (click to combine into %d)", eff, eff*2)
	default:
		return fmt.Sprintf("Token %d (does not match held %d)", eff, g.player.Held)
	}
}

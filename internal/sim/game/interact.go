package game

import "gridmerge.app/internal/sim/grid"

// handleClick applies the pickup/combine rules for a click on c. Invalid
// clicks (out of range, empty cell, mismatched values) change nothing; the
// tooltip already explains why.
func (g *Game) handleClick(c grid.Coord) {
	vc, ok := g.rendered[c]
	if !ok {
		// Stale click from the surface, e.g. a cell despawned mid-flight.
		return
	}
	if !vc.Interactive {
		return
	}

	cs := g.store.Get(c)
	eff := cs.EffectiveValue()

	switch {
	case g.player.Held == 0:
		if eff == 0 {
			return
		}
		if err := g.store.PickUp(c); err != nil {
			g.log.Printf("bug: %v", err)
			return
		}
		g.player.Held = eff
		g.picks++
		g.writeAudit(ActionPickup, c, eff)

	case g.player.Held == eff:
		newValue := g.player.Held * 2
		if err := g.store.Combine(c, newValue); err != nil {
			g.log.Printf("bug: %v", err)
			return
		}
		g.player.Held = 0
		g.combines++
		g.writeAudit(ActionCombine, c, newValue)
		if newValue >= g.cfg.TargetValue && !g.won {
			g.won = true
			g.finalValue = newValue
			g.writeAudit(ActionWin, c, newValue)
			if g.results != nil {
				g.results.RecordWin(g.cfg.SessionID, newValue, g.picks, g.combines, g.startedAt)
			}
		}

	default:
		// Mismatch: no state change.
		return
	}

	g.refreshRendered()
}

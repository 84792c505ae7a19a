package game

// handleMove shifts the player one cell and recenters the surface view.
// Movement itself never spawns or despawns cells: the surface reports the
// resulting viewport change back as its own event.
func (g *Game) handleMove(s Step) {
	g.player.Pos.I += s.DI
	g.player.Pos.J += s.DJ
	g.writeAudit(ActionMove, g.player.Pos, 0)
	g.surface.SetView(g.geom.Center(g.player.Pos))
	g.refreshRendered()
}

// Player returns the current player state. Only safe from the session
// goroutine; exposed for handlers and tests.
func (g *Game) Player() PlayerState { return g.player }

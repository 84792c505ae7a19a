package game

import "context"

// Run processes events until ctx is cancelled or Stop is called. Every
// handler runs to completion before the next event is taken, so store
// mutations from an interaction are fully applied before any later render
// pass reads them.
func (g *Game) Run(ctx context.Context) error {
	if g.results != nil {
		g.results.RecordSession(g.cfg.SessionID, g.cfg.Seed, g.startedAt)
	}
	g.pushStatus()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-g.stop:
			return nil
		case b := <-g.viewport:
			g.handleViewport(b)
			g.pushStatus()
		case c := <-g.clicks:
			g.handleClick(c)
			g.pushStatus()
		case s := <-g.moves:
			g.handleMove(s)
			g.pushStatus()
		}
	}
}

func (g *Game) Stop() { close(g.stop) }

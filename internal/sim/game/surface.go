package game

import "gridmerge.app/internal/sim/grid"

// CellView is everything a rendering surface needs to draw one cell. Views
// are derived from store state plus the player position; surfaces must treat
// them as ephemeral and never as a source of truth.
type CellView struct {
	Coord       grid.Coord
	Bounds      grid.Bounds
	Label       string // empty when the token is picked up
	Dimmed      bool
	Interactive bool
	FillColor   string
	Tooltip     string
}

// Status is the line shown to the player after every handled event.
type Status struct {
	Text     string
	Held     int
	Modified int
	Visible  int
	Won      bool
}

// Surface is the external rendering collaborator: a browser map client, a
// terminal, or a test fake. Calls arrive only from the session goroutine, in
// event order.
type Surface interface {
	SpawnCell(v CellView)
	UpdateCell(v CellView)
	DespawnCell(c grid.Coord)
	SetView(center grid.LatLng)
	SetStatus(s Status)
}

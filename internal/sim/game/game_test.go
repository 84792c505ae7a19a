package game

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"gridmerge.app/internal/sim/cellstore"
	"gridmerge.app/internal/sim/grid"
)

type fakeSurface struct {
	mu        sync.Mutex
	spawns    []CellView
	updates   []CellView
	despawns  []grid.Coord
	centers   []grid.LatLng
	statuses  []Status
}

func (f *fakeSurface) SpawnCell(v CellView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spawns = append(f.spawns, v)
}

func (f *fakeSurface) UpdateCell(v CellView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, v)
}

func (f *fakeSurface) DespawnCell(c grid.Coord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.despawns = append(f.despawns, c)
}

func (f *fakeSurface) SetView(center grid.LatLng) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.centers = append(f.centers, center)
}

func (f *fakeSurface) SetStatus(s Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, s)
}

func (f *fakeSurface) lastStatus() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return Status{}
	}
	return f.statuses[len(f.statuses)-1]
}

type fakeResults struct {
	sessions []string
	wins     []int
}

func (f *fakeResults) RecordSession(session string, seed int64, startedAt time.Time) {
	f.sessions = append(f.sessions, session)
}

func (f *fakeResults) RecordWin(session string, finalValue, picks, combines int, startedAt time.Time) {
	f.wins = append(f.wins, finalValue)
}

func testConfig() Config {
	return Config{
		SessionID: "S_test",
		Geometry: grid.Geometry{
			Origin:   grid.LatLng{Lat: 36.98949379578401, Lng: -122.06277128548504},
			CellSize: 0.0001,
		},
		Seed:              1337,
		SpawnChance:       0.1,
		ViewportPadding:   1,
		InteractionRadius: 100, // interaction gating gets its own test
		NearRadius:        2,
		MidRadius:         5,
		NearColor:         "#2e7d32",
		MidColor:          "#f9a825",
		FarColor:          "#90a4ae",
		TargetValue:       16,
	}
}

func newTestGame(cfg Config) (*Game, *fakeSurface) {
	surface := &fakeSurface{}
	return New(cfg, surface, Options{}), surface
}

// boundsAround spans the cell centers of the square of radius r around c.
func boundsAround(geom grid.Geometry, c grid.Coord, r int) grid.Bounds {
	sw := geom.Center(grid.Coord{I: c.I - r, J: c.J - r})
	ne := geom.Center(grid.Coord{I: c.I + r, J: c.J + r})
	return grid.Bounds{South: sw.Lat, West: sw.Lng, North: ne.Lat, East: ne.Lng}
}

// findCell locates a spawnable cell near origin whose generated token equals
// value. Uses a scratch store so the game's flyweight counts stay untouched.
func findCell(t *testing.T, g *Game, value int, exclude map[grid.Coord]bool) grid.Coord {
	t.Helper()
	probe := cellstore.New(g.store.Gen)
	for i := -40; i <= 40; i++ {
		for j := -40; j <= 40; j++ {
			c := grid.Coord{I: i, J: j}
			if exclude[c] || !g.store.SpawnsAt(c) {
				continue
			}
			if probe.Get(c).TokenValue == value {
				return c
			}
		}
	}
	t.Fatalf("no spawnable cell with token %d near origin", value)
	return grid.Coord{}
}

func TestViewportSpawnsSpawnableCells(t *testing.T) {
	g, surface := newTestGame(testConfig())
	g.handleViewport(boundsAround(g.geom, grid.Coord{}, 8))

	if len(surface.spawns) == 0 {
		t.Fatalf("no cells spawned")
	}
	if len(surface.spawns) != len(g.rendered) {
		t.Fatalf("%d spawn calls, %d rendered", len(surface.spawns), len(g.rendered))
	}
	for _, v := range surface.spawns {
		if !g.store.SpawnsAt(v.Coord) {
			t.Fatalf("non-spawnable cell %s rendered", v.Coord.Key())
		}
		if v.Label == "" || v.Dimmed {
			t.Fatalf("fresh cell %s rendered as %+v", v.Coord.Key(), v)
		}
	}
	if g.store.Len() != len(g.rendered) {
		t.Fatalf("store holds %d entries for %d rendered cells", g.store.Len(), len(g.rendered))
	}
}

func TestViewportIsIdempotent(t *testing.T) {
	g, surface := newTestGame(testConfig())
	b := boundsAround(g.geom, grid.Coord{}, 8)
	g.handleViewport(b)
	n := len(surface.spawns)
	g.handleViewport(b)
	if len(surface.spawns) != n || len(surface.despawns) != 0 {
		t.Fatalf("re-reporting the same bounds spawned %d and despawned %d cells",
			len(surface.spawns)-n, len(surface.despawns))
	}
}

func TestViewportPaddingKeepsMarginCells(t *testing.T) {
	cfg := testConfig()
	cfg.ViewportPadding = 2
	g, surface := newTestGame(cfg)
	b := boundsAround(g.geom, grid.Coord{}, 8)
	g.handleViewport(b)

	// One event must never despawn a cell it just spawned.
	if len(surface.despawns) != 0 {
		t.Fatalf("first viewport event despawned %d cells", len(surface.despawns))
	}
	if len(surface.spawns) != len(g.rendered) {
		t.Fatalf("%d spawn calls, %d rendered", len(surface.spawns), len(g.rendered))
	}

	// Cells in the pad margin outside the reported bounds stay rendered.
	min, max := g.geom.CoordRange(b, cfg.ViewportPadding)
	inMargin := 0
	for c := range g.rendered {
		if !g.geom.Contains(b, c) {
			inMargin++
		}
		if c.I < min.I || c.I > max.I || c.J < min.J || c.J > max.J {
			t.Fatalf("cell %s rendered outside the padded range", c.Key())
		}
	}
	if inMargin == 0 {
		t.Fatalf("no pad-margin cells rendered at padding %d", cfg.ViewportPadding)
	}

	// Re-reporting identical bounds changes nothing.
	n := len(surface.spawns)
	g.handleViewport(b)
	if len(surface.spawns) != n || len(surface.despawns) != 0 {
		t.Fatalf("identical bounds spawned %d and despawned %d cells",
			len(surface.spawns)-n, len(surface.despawns))
	}
}

func TestDespawnRespawnRestoresState(t *testing.T) {
	g, surface := newTestGame(testConfig())
	home := boundsAround(g.geom, grid.Coord{}, 8)
	g.handleViewport(home)

	target := findCell(t, g, 2, nil)
	if !g.geom.Contains(home, target) {
		// Make sure the target is rendered before clicking it.
		g.handleViewport(boundsAround(g.geom, target, 8))
	}
	g.handleClick(target)
	if g.player.Held != 2 {
		t.Fatalf("held %d after pickup", g.player.Held)
	}

	sizeAfterPickup := g.store.Len()

	// Pan far away: the target must despawn while its store entry survives.
	g.handleViewport(boundsAround(g.geom, grid.Coord{I: 1000, J: 1000}, 8))
	if _, rendered := g.rendered[target]; rendered {
		t.Fatalf("target still rendered after panning away")
	}
	found := false
	for _, c := range surface.despawns {
		if c == target {
			found = true
		}
	}
	if !found {
		t.Fatalf("surface never told to despawn target")
	}
	if cs, ok := g.store.Peek(target); !ok || !cs.PickedUp {
		t.Fatalf("store entry lost on despawn: %+v ok=%v", cs, ok)
	}

	// Pan back: the reconstructed view must show the picked-up state, not a
	// regenerated token.
	surface.spawns = nil
	g.handleViewport(boundsAround(g.geom, target, 8))
	var view *CellView
	for k := range surface.spawns {
		if surface.spawns[k].Coord == target {
			view = &surface.spawns[k]
		}
	}
	if view == nil {
		t.Fatalf("target not respawned")
	}
	if view.Label != "" || !view.Dimmed {
		t.Fatalf("respawned view regenerated a token: %+v", *view)
	}
	if g.store.Len() < sizeAfterPickup {
		t.Fatalf("store shrank across visibility transitions")
	}
}

func TestPickupCombineAndMismatch(t *testing.T) {
	g, _ := newTestGame(testConfig())
	g.handleViewport(boundsAround(g.geom, grid.Coord{}, 40))

	first := findCell(t, g, 1, nil)
	second := findCell(t, g, 1, map[grid.Coord]bool{first: true})
	other := findCell(t, g, 4, nil)

	// Pickup.
	g.handleClick(first)
	if g.player.Held != 1 {
		t.Fatalf("held %d after pickup", g.player.Held)
	}
	cs, _ := g.store.Peek(first)
	if !cs.PickedUp || cs.TokenValue != 1 {
		t.Fatalf("picked cell state %+v", cs)
	}

	// Click on an empty cell while holding: no-op.
	g.handleClick(first)
	if g.player.Held != 1 {
		t.Fatalf("held changed on empty-cell click: %d", g.player.Held)
	}

	// Mismatch: both sides unchanged.
	g.handleClick(other)
	if g.player.Held != 1 {
		t.Fatalf("mismatch click changed held to %d", g.player.Held)
	}
	if cs, _ := g.store.Peek(other); cs.EffectiveValue() != 4 {
		t.Fatalf("mismatch click changed cell to %+v", cs)
	}

	// Combine.
	g.handleClick(second)
	if g.player.Held != 0 {
		t.Fatalf("held %d after combine", g.player.Held)
	}
	cs, _ = g.store.Peek(second)
	if cs.TokenValue != 2 || cs.PickedUp {
		t.Fatalf("combined cell state %+v", cs)
	}
	if v := g.rendered[second]; v.Label != "2" || v.Dimmed {
		t.Fatalf("combined cell view %+v", v)
	}
}

func TestWinAtTarget(t *testing.T) {
	cfg := testConfig()
	g, surface := newTestGame(cfg)
	results := &fakeResults{}
	g.results = results
	g.handleViewport(boundsAround(g.geom, grid.Coord{}, 40))

	// Mid-game state: an 8 in hand and an 8 on the board.
	board := findCell(t, g, 1, nil)
	g.store.Get(board)
	if err := g.store.Combine(board, 8); err != nil {
		t.Fatalf("combine: %v", err)
	}
	g.player.Held = 8
	g.refreshRendered()

	g.handleClick(board)
	g.pushStatus()

	if !g.won || g.finalValue != 16 {
		t.Fatalf("won=%v finalValue=%d", g.won, g.finalValue)
	}
	cs, _ := g.store.Peek(board)
	if cs.TokenValue != 16 {
		t.Fatalf("board cell %+v", cs)
	}
	st := surface.lastStatus()
	if !st.Won || !strings.Contains(st.Text, "🎉 You won! Final token value: 16") {
		t.Fatalf("status %+v", st)
	}
	if len(results.wins) != 1 || results.wins[0] != 16 {
		t.Fatalf("wins recorded: %v", results.wins)
	}

	// Win does not lock interaction: the 16 can still be picked up, and the
	// win is not recorded twice.
	g.handleClick(board)
	if g.player.Held != 16 {
		t.Fatalf("post-win pickup held %d", g.player.Held)
	}
	if len(results.wins) != 1 {
		t.Fatalf("win recorded twice: %v", results.wins)
	}
	if st := g.status(); !st.Won {
		t.Fatalf("win state not sticky: %+v", st)
	}
}

func TestInteractivityGating(t *testing.T) {
	cfg := testConfig()
	cfg.InteractionRadius = 2
	g, _ := newTestGame(cfg)
	g.handleViewport(boundsAround(g.geom, grid.Coord{}, 40))

	var far grid.Coord
	foundFar := false
	for c := range g.rendered {
		if grid.Chebyshev(c, g.player.Pos) > 2 {
			far = c
			foundFar = true
			break
		}
	}
	if !foundFar {
		t.Fatalf("no rendered cell outside the interaction radius")
	}
	if g.rendered[far].Interactive {
		t.Fatalf("distant cell marked interactive")
	}

	g.handleClick(far)
	if g.player.Held != 0 {
		t.Fatalf("out-of-range click picked up %d", g.player.Held)
	}
	if cs, _ := g.store.Peek(far); cs.PickedUp {
		t.Fatalf("out-of-range click mutated cell %+v", cs)
	}
}

func TestMoveRecolorsAndRecenters(t *testing.T) {
	cfg := testConfig()
	g, surface := newTestGame(cfg)
	g.handleViewport(boundsAround(g.geom, grid.Coord{}, 10))
	spawnsBefore := len(surface.spawns)

	g.handleMove(Step{DI: 1, DJ: 0})

	if g.player.Pos != (grid.Coord{I: 1, J: 0}) {
		t.Fatalf("player at %+v", g.player.Pos)
	}
	if len(surface.centers) != 1 || surface.centers[0] != g.geom.Center(g.player.Pos) {
		t.Fatalf("view centers %+v", surface.centers)
	}
	// Movement alone never spawns or despawns.
	if len(surface.spawns) != spawnsBefore || len(surface.despawns) != 0 {
		t.Fatalf("movement changed the rendered set")
	}

	for c, v := range g.rendered {
		want := cfg.FarColor
		switch d := grid.Chebyshev(c, g.player.Pos); {
		case d <= cfg.NearRadius:
			want = cfg.NearColor
		case d <= cfg.MidRadius:
			want = cfg.MidColor
		}
		if v.FillColor != want {
			t.Fatalf("cell %s at distance %d has color %s, want %s",
				c.Key(), grid.Chebyshev(c, g.player.Pos), v.FillColor, want)
		}
	}
}

func TestStatusText(t *testing.T) {
	g, _ := newTestGame(testConfig())
	if got := g.status().Text; got != "No token in inventory (Modified: 0, Visible: 0)" {
		t.Fatalf("initial status %q", got)
	}

	g.handleViewport(boundsAround(g.geom, grid.Coord{}, 40))
	target := findCell(t, g, 4, nil)
	g.handleClick(target)

	st := g.status()
	want := "Holding token with value: 4 (Modified: " + strconv.Itoa(g.store.Len()) +
		", Visible: " + strconv.Itoa(len(g.rendered)) + ")"
	if st.Text != want {
		t.Fatalf("status %q, want %q", st.Text, want)
	}
}

func TestRunLoop(t *testing.T) {
	g, surface := newTestGame(testConfig())
	done := make(chan error, 1)
	go func() { done <- g.Run(context.Background()) }()

	g.Viewport() <- boundsAround(g.geom, grid.Coord{}, 8)
	g.Moves() <- Step{DI: 0, DJ: 1}

	deadline := time.After(2 * time.Second)
	for {
		// Initial status + one per event.
		surface.mu.Lock()
		n := len(surface.statuses)
		surface.mu.Unlock()
		if n >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("loop processed %d events before deadline", n)
		case <-time.After(5 * time.Millisecond):
		}
	}

	g.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Stop")
	}

	st := surface.lastStatus()
	if st.Visible == 0 {
		t.Fatalf("no cells visible after viewport event: %+v", st)
	}
}

// A local terminal surface: runs the engine in-process and draws the grid
// with tcell. Arrow keys (or hjkl) move the player, mouse click interacts,
// q or Esc quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"

	"gridmerge.app/internal/sim/game"
	"gridmerge.app/internal/sim/grid"
	"gridmerge.app/internal/sim/tuning"
)

const (
	cellW = 5
	cellH = 2
)

type ui struct {
	screen tcell.Screen
	geom   grid.Geometry

	cells  map[grid.Coord]game.CellView
	status game.Status
	center grid.Coord

	radI, radJ int
}

// ttySurface forwards session-goroutine render calls into the UI loop.
type ttySurface struct {
	updates chan<- func(*ui)
	done    <-chan struct{}
}

func (s *ttySurface) apply(f func(*ui)) {
	select {
	case s.updates <- f:
	case <-s.done:
	}
}

func (s *ttySurface) SpawnCell(v game.CellView) {
	s.apply(func(u *ui) { u.cells[v.Coord] = v })
}

func (s *ttySurface) UpdateCell(v game.CellView) {
	s.apply(func(u *ui) { u.cells[v.Coord] = v })
}

func (s *ttySurface) DespawnCell(c grid.Coord) {
	s.apply(func(u *ui) { delete(u.cells, c) })
}

func (s *ttySurface) SetView(center grid.LatLng) {
	s.apply(func(u *ui) { u.center = u.geom.ToGrid(center) })
}

func (s *ttySurface) SetStatus(st game.Status) {
	s.apply(func(u *ui) { u.status = st })
}

func main() {
	var (
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		seed       = flag.Int64("seed", 0, "world seed override (0 keeps the tuning value)")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[tty] ", log.LstdFlags)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		logger.Fatalf("screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		logger.Fatalf("screen init: %v", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan func(*ui), 256)
	surface := &ttySurface{updates: updates, done: ctx.Done()}

	cfg := game.ConfigFromTuning(tune, "tty")
	g := game.New(cfg, surface, game.Options{})
	go func() { _ = g.Run(ctx) }()

	u := &ui{
		screen: screen,
		geom:   cfg.Geometry,
		cells:  map[grid.Coord]game.CellView{},
		center: cfg.Start,
	}
	u.resize()
	g.Viewport() <- u.visibleBounds()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case f := <-updates:
			before := u.center
			f(u)
			drainUpdates(updates, u)
			// A center change means the view moved: report the new bounds the
			// way a map client reports moveend.
			if u.center != before {
				g.Viewport() <- u.visibleBounds()
			}
			u.draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				u.resize()
				g.Viewport() <- u.visibleBounds()
				u.draw()
			case *tcell.EventMouse:
				if ev.Buttons()&tcell.Button1 != 0 {
					if c, ok := u.cellAt(ev.Position()); ok {
						g.Clicks() <- c
					}
				}
			case *tcell.EventKey:
				step, quit := stepForKey(ev)
				if quit {
					cancel()
					return
				}
				if step != (game.Step{}) {
					g.Moves() <- step
				}
			}
		}
	}
}

func drainUpdates(updates <-chan func(*ui), u *ui) {
	for {
		select {
		case f := <-updates:
			f(u)
		default:
			return
		}
	}
}

func stepForKey(ev *tcell.EventKey) (step game.Step, quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return game.Step{}, true
	case tcell.KeyUp:
		return game.Step{DI: 1}, false
	case tcell.KeyDown:
		return game.Step{DI: -1}, false
	case tcell.KeyRight:
		return game.Step{DJ: 1}, false
	case tcell.KeyLeft:
		return game.Step{DJ: -1}, false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return game.Step{}, true
		case 'k':
			return game.Step{DI: 1}, false
		case 'j':
			return game.Step{DI: -1}, false
		case 'l':
			return game.Step{DJ: 1}, false
		case 'h':
			return game.Step{DJ: -1}, false
		}
	}
	return game.Step{}, false
}

func (u *ui) resize() {
	w, h := u.screen.Size()
	u.radJ = (w / cellW) / 2
	u.radI = ((h - 1) / cellH) / 2
	if u.radI < 1 {
		u.radI = 1
	}
	if u.radJ < 1 {
		u.radJ = 1
	}
}

// visibleBounds covers the full extent of the cell window around the center.
func (u *ui) visibleBounds() grid.Bounds {
	sw := u.geom.CellBounds(grid.Coord{I: u.center.I - u.radI, J: u.center.J - u.radJ})
	ne := u.geom.CellBounds(grid.Coord{I: u.center.I + u.radI, J: u.center.J + u.radJ})
	return grid.Bounds{South: sw.South, West: sw.West, North: ne.North, East: ne.East}
}

// cellAt inverts screen coordinates to the grid cell drawn there.
func (u *ui) cellAt(x, y int) (grid.Coord, bool) {
	_, h := u.screen.Size()
	if y >= h-1 {
		return grid.Coord{}, false
	}
	dj := x/cellW - u.radJ
	di := u.radI - y/cellH
	c := grid.Coord{I: u.center.I + di, J: u.center.J + dj}
	if _, ok := u.cells[c]; !ok {
		return grid.Coord{}, false
	}
	return c, true
}

func (u *ui) draw() {
	u.screen.Clear()
	w, h := u.screen.Size()

	for c, v := range u.cells {
		di := c.I - u.center.I
		dj := c.J - u.center.J
		if di < -u.radI || di > u.radI || dj < -u.radJ || dj > u.radJ {
			continue
		}
		x0 := (dj + u.radJ) * cellW
		y0 := (u.radI - di) * cellH

		style := tcell.StyleDefault.Background(tcell.GetColor(v.FillColor))
		if v.Dimmed {
			style = style.Foreground(tcell.ColorGray).Dim(true)
		} else {
			style = style.Foreground(tcell.ColorWhite).Bold(v.Interactive)
		}
		for y := y0; y < y0+cellH-1 && y < h-1; y++ {
			for x := x0; x < x0+cellW-1 && x < w; x++ {
				u.screen.SetContent(x, y, ' ', nil, style)
			}
		}
		for k, r := range v.Label {
			if x0+k < x0+cellW-1 {
				u.screen.SetContent(x0+k, y0, r, nil, style)
			}
		}
	}

	// Player marker at the window center.
	px := u.radJ * cellW
	py := u.radI * cellH
	u.screen.SetContent(px+cellW/2, py, '@', nil,
		tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))

	line := fmt.Sprintf(" %s  pos=%s", u.status.Text, u.center.Key())
	statusStyle := tcell.StyleDefault.Reverse(true)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len([]rune(line)) {
			r = []rune(line)[x]
		}
		u.screen.SetContent(x, h-1, r, nil, statusStyle)
	}

	u.screen.Show()
}

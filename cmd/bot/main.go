// A headless player: connects to a server, walks toward the nearest useful
// token and clicks until it reaches the target value.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"gridmerge.app/internal/protocol"
	"gridmerge.app/internal/sim/grid"
)

type cell struct {
	coord       grid.Coord
	value       int // effective: 0 when dimmed
	interactive bool
}

type bot struct {
	conn   *websocket.Conn
	log    *log.Logger
	params protocol.WorldParams
	geom   grid.Geometry

	pos        grid.Coord
	held       int
	cells      map[grid.Coord]cell
	viewRadius int
}

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "player name")
		seed = flag.Int64("seed", 0, "per-session seed (0 uses the server default)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if *seed != 0 {
		hello.Seed = seed
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := &bot{
		conn:       conn,
		log:        logger,
		cells:      map[grid.Coord]cell{},
		viewRadius: 8,
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			b.handleWelcome(w)

		case protocol.TypeCellSpawn, protocol.TypeCellUpdate:
			var c protocol.CellMsg
			if err := json.Unmarshal(msg, &c); err != nil {
				continue
			}
			b.handleCell(c)

		case protocol.TypeCellDespawn:
			var d protocol.CellDespawnMsg
			if err := json.Unmarshal(msg, &d); err != nil {
				continue
			}
			delete(b.cells, grid.Coord{I: d.I, J: d.J})

		case protocol.TypeStatus:
			var st protocol.StatusMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			b.held = st.Held
			if st.Won {
				logger.Printf("won: %s", st.Text)
				return
			}
			time.Sleep(50 * time.Millisecond)
			b.act()

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			logger.Printf("server error %s: %s", e.Code, e.Message)
		}
	}
}

func (b *bot) handleWelcome(w protocol.WelcomeMsg) {
	b.params = w.WorldParams
	b.geom = grid.Geometry{
		Origin:   grid.LatLng{Lat: w.WorldParams.OriginLat, Lng: w.WorldParams.OriginLng},
		CellSize: w.WorldParams.CellSize,
	}
	b.pos = grid.Coord{I: w.WorldParams.StartI, J: w.WorldParams.StartJ}
	b.log.Printf("WELCOME session=%s seed=%d target=%d", w.SessionID, w.WorldParams.Seed, w.WorldParams.TargetValue)
	b.sendView()
}

func (b *bot) handleCell(c protocol.CellMsg) {
	value := 0
	if !c.Dimmed && c.Label != "" {
		if v, err := strconv.Atoi(c.Label); err == nil {
			value = v
		}
	}
	coord := grid.Coord{I: c.I, J: c.J}
	b.cells[coord] = cell{coord: coord, value: value, interactive: c.Interactive}
}

// act takes exactly one step of play: click a useful cell in range, else walk
// toward the nearest one, else widen the view.
func (b *bot) act() {
	target, ok := b.pickTarget()
	if !ok {
		if b.viewRadius < 64 {
			b.viewRadius *= 2
		}
		b.sendView()
		return
	}

	if grid.Chebyshev(target, b.pos) <= b.params.InteractionRadius {
		b.send(protocol.ClickMsg{
			Type:            protocol.TypeClick,
			ProtocolVersion: protocol.Version,
			I:               target.I,
			J:               target.J,
		})
		return
	}

	b.stepToward(target)
}

// pickTarget returns the nearest cell worth clicking: any token when the hand
// is empty, a matching token otherwise.
func (b *bot) pickTarget() (grid.Coord, bool) {
	best := grid.Coord{}
	bestDist := -1
	for coord, c := range b.cells {
		if c.value == 0 {
			continue
		}
		if b.held != 0 && c.value != b.held {
			continue
		}
		d := grid.Chebyshev(coord, b.pos)
		if bestDist < 0 || d < bestDist {
			best = coord
			bestDist = d
		}
	}
	return best, bestDist >= 0
}

func (b *bot) stepToward(target grid.Coord) {
	di := target.I - b.pos.I
	dj := target.J - b.pos.J
	var direction string
	// One axis per move; take the longer gap first.
	if abs(di) >= abs(dj) {
		if di > 0 {
			direction = protocol.DirNorth
			b.pos.I++
		} else {
			direction = protocol.DirSouth
			b.pos.I--
		}
	} else {
		if dj > 0 {
			direction = protocol.DirEast
			b.pos.J++
		} else {
			direction = protocol.DirWest
			b.pos.J--
		}
	}
	b.send(protocol.MoveMsg{
		Type:            protocol.TypeMove,
		ProtocolVersion: protocol.Version,
		Direction:       direction,
	})
	b.sendView()
}

// sendView reports the bot's window around its position, standing in for a
// map client's moveend notification.
func (b *bot) sendView() {
	sw := b.geom.Center(grid.Coord{I: b.pos.I - b.viewRadius, J: b.pos.J - b.viewRadius})
	ne := b.geom.Center(grid.Coord{I: b.pos.I + b.viewRadius, J: b.pos.J + b.viewRadius})
	b.send(protocol.ViewMsg{
		Type:            protocol.TypeView,
		ProtocolVersion: protocol.Version,
		South:           sw.Lat,
		West:            sw.Lng,
		North:           ne.Lat,
		East:            ne.Lng,
	})
}

func (b *bot) send(v any) {
	if err := b.conn.WriteJSON(v); err != nil {
		b.log.Printf("send: %v", err)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

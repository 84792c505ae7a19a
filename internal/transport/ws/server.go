// Package ws serves game sessions to remote rendering surfaces over
// websocket. Each connection gets its own isolated world and session
// goroutine; the remote map client only draws what it is told and reports
// viewport changes, clicks and movement.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"gridmerge.app/internal/protocol"
	"gridmerge.app/internal/sim/game"
	"gridmerge.app/internal/sim/grid"
	"gridmerge.app/internal/sim/tuning"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 5 * time.Minute
)

type Server struct {
	tune    tuning.Tuning
	log     *log.Logger
	audit   game.AuditLogger
	results game.ResultsRecorder

	upgrader    websocket.Upgrader
	nextSession atomic.Uint64
}

func NewServer(t tuning.Tuning, logger *log.Logger, audit game.AuditLogger, results game.ResultsRecorder) *Server {
	return &Server{
		tune:    t,
		log:     logger,
		audit:   audit,
		results: results,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hello, ok := s.handshakeHello(conn)
		if !ok {
			return
		}

		sessionID := fmt.Sprintf("S%06d", s.nextSession.Add(1))
		cfg := game.ConfigFromTuning(s.tune, sessionID)
		if hello.Seed != nil {
			cfg.Seed = *hello.Seed
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan []byte, 256)
		surface := newSurface(out, ctx.Done())
		g := game.New(cfg, surface, game.Options{
			Logger:  s.log,
			Audit:   s.audit,
			Results: s.results,
		})

		welcome := protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			SessionID:       sessionID,
			WorldParams: protocol.WorldParams{
				OriginLat:         cfg.Geometry.Origin.Lat,
				OriginLng:         cfg.Geometry.Origin.Lng,
				CellSize:          cfg.Geometry.CellSize,
				SpawnChance:       cfg.SpawnChance,
				InteractionRadius: cfg.InteractionRadius,
				TargetValue:       cfg.TargetValue,
				Seed:              cfg.Seed,
				StartI:            cfg.Start.I,
				StartJ:            cfg.Start.J,
			},
		}
		if err := writeJSON(conn, welcome); err != nil {
			return
		}

		go func() {
			if err := g.Run(ctx); err != nil && ctx.Err() == nil {
				s.log.Printf("session %s: %v", sessionID, err)
			}
		}()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		s.log.Printf("session %s: %s connected as %q", sessionID, r.RemoteAddr, hello.PlayerName)
		s.readLoop(ctx, conn, g, surface)
		s.log.Printf("session %s: closed", sessionID)
	}
}

// readLoop decodes client events into the session loop. The writer goroutine
// owns the connection for writes, so protocol errors are queued on the same
// outbound channel as everything else.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, g *game.Game, surface *remoteSurface) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			surface.sendError(protocol.ErrProtoBadRequest, "malformed JSON")
			continue
		}
		if base.ProtocolVersion != protocol.Version {
			surface.sendError(protocol.ErrBadVersion, "unsupported protocol_version")
			continue
		}

		switch base.Type {
		case protocol.TypeView:
			var view protocol.ViewMsg
			if err := json.Unmarshal(msg, &view); err != nil {
				surface.sendError(protocol.ErrProtoBadRequest, "bad VIEW")
				continue
			}
			send(ctx, g.Viewport(), grid.Bounds{
				South: view.South,
				West:  view.West,
				North: view.North,
				East:  view.East,
			})

		case protocol.TypeClick:
			var click protocol.ClickMsg
			if err := json.Unmarshal(msg, &click); err != nil {
				surface.sendError(protocol.ErrProtoBadRequest, "bad CLICK")
				continue
			}
			send(ctx, g.Clicks(), grid.Coord{I: click.I, J: click.J})

		case protocol.TypeMove:
			var move protocol.MoveMsg
			if err := json.Unmarshal(msg, &move); err != nil {
				surface.sendError(protocol.ErrProtoBadRequest, "bad MOVE")
				continue
			}
			step, ok := stepFor(move.Direction)
			if !ok {
				surface.sendError(protocol.ErrBadDirection, move.Direction)
				continue
			}
			send(ctx, g.Moves(), step)
		}
	}
}

func stepFor(direction string) (game.Step, bool) {
	switch direction {
	case protocol.DirNorth:
		return game.Step{DI: 1}, true
	case protocol.DirSouth:
		return game.Step{DI: -1}, true
	case protocol.DirEast:
		return game.Step{DJ: 1}, true
	case protocol.DirWest:
		return game.Step{DJ: -1}, true
	}
	return game.Step{}, false
}

func (s *Server) handshakeHello(conn *websocket.Conn) (protocol.HelloMsg, bool) {
	var hello protocol.HelloMsg
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return hello, false
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"),
			time.Now().Add(time.Second))
		return hello, false
	}
	if err := json.Unmarshal(msg, &hello); err != nil {
		return hello, false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"),
			time.Now().Add(time.Second))
		return hello, false
	}
	if hello.PlayerName == "" {
		hello.PlayerName = "player"
	}
	return hello, true
}

// send delivers an event to the session loop unless the connection is gone.
func send[T any](ctx context.Context, ch chan<- T, v T) {
	select {
	case ch <- v:
	case <-ctx.Done():
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}

package game

import (
	"io"
	"log"
	"time"

	"gridmerge.app/internal/sim/cellstore"
	"gridmerge.app/internal/sim/grid"
	"gridmerge.app/internal/sim/tuning"
)

// Config fixes one session's world. Zero radii and colors fall back to the
// tuning defaults.
type Config struct {
	SessionID string

	Geometry grid.Geometry

	Seed        int64
	SpawnChance float64

	ViewportPadding   int
	InteractionRadius int
	NearRadius        int
	MidRadius         int

	NearColor string
	MidColor  string
	FarColor  string

	TargetValue int

	Start grid.Coord
}

// ConfigFromTuning builds a session config from the loaded tuning.
func ConfigFromTuning(t tuning.Tuning, sessionID string) Config {
	return Config{
		SessionID: sessionID,
		Geometry: grid.Geometry{
			Origin:   grid.LatLng{Lat: t.OriginLat, Lng: t.OriginLng},
			CellSize: t.CellSize,
		},
		Seed:              t.Seed,
		SpawnChance:       t.SpawnChance,
		ViewportPadding:   t.ViewportPadding,
		InteractionRadius: t.InteractionRadius,
		NearRadius:        t.NearRadius,
		MidRadius:         t.MidRadius,
		NearColor:         t.Colors.Near,
		MidColor:          t.Colors.Mid,
		FarColor:          t.Colors.Far,
		TargetValue:       t.TargetValue,
	}
}

// Options carries the optional collaborators.
type Options struct {
	Logger  *log.Logger
	Audit   AuditLogger
	Results ResultsRecorder
}

func New(cfg Config, surface Surface, opts Options) *Game {
	if cfg.TargetValue <= 0 {
		cfg.TargetValue = tuning.Defaults().TargetValue
	}
	if cfg.MidRadius < cfg.NearRadius {
		cfg.MidRadius = cfg.NearRadius
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Game{
		cfg:  cfg,
		geom: cfg.Geometry,
		store: cellstore.New(cellstore.Gen{
			Seed:        cfg.Seed,
			SpawnChance: cfg.SpawnChance,
		}),
		player:    PlayerState{Pos: cfg.Start},
		rendered:  map[grid.Coord]CellView{},
		surface:   surface,
		startedAt: time.Now(),
		viewport:  make(chan grid.Bounds, 4),
		clicks:    make(chan grid.Coord, 16),
		moves:     make(chan Step, 16),
		stop:      make(chan struct{}),
		log:       logger,
		audit:     opts.Audit,
		results:   opts.Results,
	}
}

// Event channels. Senders must not close them.
func (g *Game) Viewport() chan<- grid.Bounds { return g.viewport }
func (g *Game) Clicks() chan<- grid.Coord    { return g.clicks }
func (g *Game) Moves() chan<- Step           { return g.moves }

func (g *Game) writeAudit(action string, c grid.Coord, value int) {
	if g.audit == nil {
		return
	}
	err := g.audit.WriteAction(ActionEntry{
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Session: g.cfg.SessionID,
		Action:  action,
		I:       c.I,
		J:       c.J,
		Held:    g.player.Held,
		Value:   value,
	})
	if err != nil {
		g.log.Printf("audit: %v", err)
	}
}

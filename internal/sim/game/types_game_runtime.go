package game

import (
	"log"
	"time"

	"gridmerge.app/internal/sim/cellstore"
	"gridmerge.app/internal/sim/grid"
)

// Game is a single-threaded authoritative session. All state must be accessed
// only from the session loop goroutine.
type Game struct {
	cfg  Config
	geom grid.Geometry

	store  *cellstore.Store
	player PlayerState

	// Currently rendered cells, keyed by coordinate. Holds the last view sent
	// to the surface so refreshes only emit real changes.
	rendered map[grid.Coord]CellView

	surface Surface

	won        bool
	finalValue int
	picks      int
	combines   int
	startedAt  time.Time

	viewport chan grid.Bounds
	clicks   chan grid.Coord
	moves    chan Step
	stop     chan struct{}

	log     *log.Logger
	audit   AuditLogger
	results ResultsRecorder
}

// PlayerState is the player's grid position and held token. Held == 0 means
// an empty hand.
type PlayerState struct {
	Pos  grid.Coord
	Held int
}

// Step is one axis-aligned movement.
type Step struct {
	DI int
	DJ int
}

// ActionEntry is one audit record: a pickup, combine, move or win.
type ActionEntry struct {
	TS      string `json:"ts"`
	Session string `json:"session"`
	Action  string `json:"action"`
	I       int    `json:"i"`
	J       int    `json:"j"`
	Held    int    `json:"held"`
	Value   int    `json:"value,omitempty"`
}

// Audit action names.
const (
	ActionPickup  = "PICKUP"
	ActionCombine = "COMBINE"
	ActionMove    = "MOVE"
	ActionWin     = "WIN"
)

// AuditLogger receives one entry per state-changing action. May be nil.
// Implemented in internal/persistence/log.
type AuditLogger interface {
	WriteAction(e ActionEntry) error
}

// ResultsRecorder is a write-only read-model sink; the game never reads it
// back. May be nil. Implemented in internal/persistence/indexdb.
type ResultsRecorder interface {
	RecordSession(session string, seed int64, startedAt time.Time)
	RecordWin(session string, finalValue, picks, combines int, startedAt time.Time)
}

// Package indexdb keeps a sqlite read-model of sessions and wins. It is a
// secondary index for dashboards and scripts: write-only from the game's
// perspective and never loaded back into game state.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type ResultsIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqSession reqKind = iota + 1
	reqWin
)

type req struct {
	kind reqKind

	session sessionRow
	win     winRow
}

type sessionRow struct {
	ID        string
	Seed      int64
	StartedAt string
}

type winRow struct {
	Session    string
	FinalValue int
	Picks      int
	Combines   int
	DurationMs int64
	WonAt      string
}

func Open(path string) (*ResultsIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &ResultsIndex{
		db: db,
		ch: make(chan req, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-style workload; NORMAL durability is fine for a
	// secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS wins (
			session TEXT PRIMARY KEY,
			final_value INTEGER NOT NULL,
			picks INTEGER NOT NULL,
			combines INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			won_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_wins_won_at ON wins(won_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *ResultsIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordSession enqueues a session row. Drops on backpressure: the index is
// best-effort and must never stall a session loop.
func (s *ResultsIndex) RecordSession(session string, seed int64, startedAt time.Time) {
	if s == nil || s.closed.Load() {
		return
	}
	r := req{kind: reqSession, session: sessionRow{
		ID:        session,
		Seed:      seed,
		StartedAt: startedAt.UTC().Format(time.RFC3339Nano),
	}}
	select {
	case s.ch <- r:
	default:
	}
}

func (s *ResultsIndex) RecordWin(session string, finalValue, picks, combines int, startedAt time.Time) {
	if s == nil || s.closed.Load() {
		return
	}
	now := time.Now().UTC()
	r := req{kind: reqWin, win: winRow{
		Session:    session,
		FinalValue: finalValue,
		Picks:      picks,
		Combines:   combines,
		DurationMs: now.Sub(startedAt).Milliseconds(),
		WonAt:      now.Format(time.RFC3339Nano),
	}}
	select {
	case s.ch <- r:
	default:
	}
}

func (s *ResultsIndex) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqSession:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO sessions (id, seed, started_at) VALUES (?, ?, ?)`,
				r.session.ID, r.session.Seed, r.session.StartedAt,
			)
		case reqWin:
			_, _ = s.db.Exec(
				`INSERT OR IGNORE INTO wins (session, final_value, picks, combines, duration_ms, won_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				r.win.Session, r.win.FinalValue, r.win.Picks, r.win.Combines, r.win.DurationMs, r.win.WonAt,
			)
		}
	}
}

// Package cellstore holds the authoritative per-cell game state. Cells are
// materialized lazily: a coordinate absent from the store is defined to hold
// exactly what Get would generate for it, so unmodified cells cost no memory.
package cellstore

import (
	"fmt"
	"sort"

	"gridmerge.app/internal/sim/grid"
	"gridmerge.app/internal/sim/luck"
)

// CellState is the persisted record for one cell. Rendering objects are
// rebuilt from it after every visibility transition, never the other way
// around.
type CellState struct {
	Coord      grid.Coord
	TokenValue int
	PickedUp   bool
}

// EffectiveValue is the value a player sees: 0 once the token is picked up.
// Pickup never touches TokenValue itself.
func (c *CellState) EffectiveValue() int {
	if c.PickedUp {
		return 0
	}
	return c.TokenValue
}

// Gen fixes the generation parameters for a world.
type Gen struct {
	Seed        int64
	SpawnChance float64
}

type Store struct {
	Gen   Gen
	Cells map[grid.Coord]*CellState
}

func New(gen Gen) *Store {
	return &Store{
		Gen:   gen,
		Cells: map[grid.Coord]*CellState{},
	}
}

// Get returns the state for c, generating and inserting it on first access.
// Repeated calls return the same entry unchanged.
func (s *Store) Get(c grid.Coord) *CellState {
	if cs, ok := s.Cells[c]; ok {
		return cs
	}
	// floor(v*3) partitions [0,1) into equal thirds: 1, 2 or 4.
	exp := int(luck.Float(s.Gen.Seed, c.I, c.J, "value") * 3)
	cs := &CellState{Coord: c, TokenValue: 1 << exp}
	s.Cells[c] = cs
	return cs
}

// Peek reads without materializing.
func (s *Store) Peek(c grid.Coord) (*CellState, bool) {
	cs, ok := s.Cells[c]
	return cs, ok
}

// PickUp marks the token at c as taken. Callers must have materialized the
// cell via Get first; a pickup on a never-generated coordinate is a logic bug
// and fails loudly.
func (s *Store) PickUp(c grid.Coord) error {
	cs, ok := s.Cells[c]
	if !ok {
		return fmt.Errorf("pickup at %s: cell never generated", c.Key())
	}
	cs.PickedUp = true
	return nil
}

// Combine replaces the token at c with newValue and clears the picked-up flag.
// Same precondition as PickUp.
func (s *Store) Combine(c grid.Coord, newValue int) error {
	cs, ok := s.Cells[c]
	if !ok {
		return fmt.Errorf("combine at %s: cell never generated", c.Key())
	}
	cs.TokenValue = newValue
	cs.PickedUp = false
	return nil
}

// SpawnsAt reports whether a cell exists at c. Always re-derived from the
// generator, never stored: existence costs no memory and cannot drift between
// a cell's first appearance and later reappearances.
func (s *Store) SpawnsAt(c grid.Coord) bool {
	return luck.Float(s.Gen.Seed, c.I, c.J, "spawn") < s.Gen.SpawnChance
}

// Len is the number of coordinates ever touched by Get, independent of how
// many are currently visible.
func (s *Store) Len() int { return len(s.Cells) }

// TouchedCoords lists every materialized coordinate in row-major order.
func (s *Store) TouchedCoords() []grid.Coord {
	coords := make([]grid.Coord, 0, len(s.Cells))
	for c := range s.Cells {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].I != coords[j].I {
			return coords[i].I < coords[j].I
		}
		return coords[i].J < coords[j].J
	})
	return coords
}

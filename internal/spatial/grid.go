// Package spatial implements the broad-phase spatial hash used for
// collision detection and Area-of-Interest queries. It stores short-lived
// copies of entity positions — never references into the world — so it
// can be rebuilt from scratch every tick with no risk of dangling state.
// Cells are map-keyed rather than a fixed array since the arena is
// circular and rescales with the alive-human count rather than living
// inside a fixed rectangular canvas.
package spatial

import (
	"math"

	"github.com/hknc0/orbit-core/internal/vecmath"
)

// EntityKind distinguishes what an EntityRef.Index indexes into.
type EntityKind uint8

const (
	KindPlayer EntityKind = iota
	KindProjectile
	KindDebris
	KindWell
)

// EntityRef identifies an entity without holding a pointer to it. The
// index is only valid for the tick during which the grid was built.
type EntityRef struct {
	Kind  EntityKind
	Index uint32
}

// Entry is the short-lived (ref, position, radius) copy stored per cell.
type Entry struct {
	Ref    EntityRef
	Pos    vecmath.Vec2
	Radius float64
}

type cellKey struct{ X, Y int32 }

// Grid is a uniform spatial hash. Cell size should be roughly 2x the
// largest expected entity radius so that most queries touch few cells.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cells       map[cellKey][]Entry
	scratch     []Entry
}

// NewGrid creates an empty grid with the given cell size.
func NewGrid(cellSize float64) *Grid {
	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
		cells:       make(map[cellKey][]Entry, 256),
		scratch:     make([]Entry, 0, 64),
	}
}

// Clear empties every cell without discarding the map or slice capacity,
// so steady-state rebuilds do not allocate.
func (g *Grid) Clear() {
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
}

func (g *Grid) cellOf(p vecmath.Vec2) cellKey {
	return cellKey{
		X: int32(math.Floor(p.X * g.invCellSize)),
		Y: int32(math.Floor(p.Y * g.invCellSize)),
	}
}

// Insert adds an entity copy at its current position. O(1) amortized.
func (g *Grid) Insert(ref EntityRef, pos vecmath.Vec2, radius float64) {
	k := g.cellOf(pos)
	g.cells[k] = append(g.cells[k], Entry{Ref: ref, Pos: pos, Radius: radius})
}

// QueryRadius returns entities in the 3x3 cell neighborhood around p.
// The candidates may lie outside radius; callers must narrow-phase.
// The returned slice is reused across calls — copy it if it must outlive
// the next QueryRadius call.
func (g *Grid) QueryRadius(p vecmath.Vec2, radius float64) []Entry {
	g.scratch = g.scratch[:0]
	c := g.cellOf(p)
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			if cell, ok := g.cells[cellKey{c.X + dx, c.Y + dy}]; ok {
				g.scratch = append(g.scratch, cell...)
			}
		}
	}
	_ = radius // narrow-phase is the caller's responsibility, per contract
	return g.scratch
}

// PairFunc is called once per unordered candidate pair. Returning false
// stops iteration early.
type PairFunc func(a, b Entry) bool

// neighborOffsets covers right, bottom, bottom-right and bottom-left —
// combined with intra-cell pairs this sees every unordered pair in the
// 9-cell neighborhood exactly once, since each cell only looks "forward".
var neighborOffsets = [4]cellKey{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
	{X: -1, Y: 1},
}

// PairIter walks every occupied cell and yields each unordered broad-phase
// pair within the 9-cell neighborhood exactly once.
func (g *Grid) PairIter(fn PairFunc) {
	for k, entries := range g.cells {
		if len(entries) == 0 {
			continue
		}
		// Intra-cell pairs.
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				if !fn(entries[i], entries[j]) {
					return
				}
			}
		}
		// Forward-neighbor pairs.
		for _, off := range neighborOffsets {
			other, ok := g.cells[cellKey{k.X + off.X, k.Y + off.Y}]
			if !ok || len(other) == 0 {
				continue
			}
			for i := range entries {
				for j := range other {
					if !fn(entries[i], other[j]) {
						return
					}
				}
			}
		}
	}
}

// CellSize reports the configured cell size.
func (g *Grid) CellSize() float64 { return g.cellSize }

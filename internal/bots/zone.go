package bots

import (
	"math"

	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

type zoneKey struct{ X, Y int32 }

// zoneIndex buckets alive human players into coarse cells so "is a human
// nearby" and "nearest human" resolve by cell membership instead of a
// pairwise scan against every bot. Rebuilt once per Update call.
type zoneIndex struct {
	cellSize float64
	cells    map[zoneKey][]humanEntry
}

type humanEntry struct {
	id   world.PlayerId
	pos  vecmath.Vec2
	mass float64
}

func buildZoneIndex(w *world.World, cellSize float64) *zoneIndex {
	zi := &zoneIndex{cellSize: cellSize, cells: make(map[zoneKey][]humanEntry)}
	for _, p := range w.Players {
		if !p.Alive || p.IsBot {
			continue
		}
		k := zi.keyOf(p.Pos)
		zi.cells[k] = append(zi.cells[k], humanEntry{id: p.ID, pos: p.Pos, mass: p.Mass})
	}
	return zi
}

func (zi *zoneIndex) keyOf(p vecmath.Vec2) zoneKey {
	return zoneKey{X: int32(math.Floor(p.X / zi.cellSize)), Y: int32(math.Floor(p.Y / zi.cellSize))}
}

// nearestHuman scans the 3x3 cell neighborhood around pos and returns the
// closest human found there, which is only approximate near cell
// boundaries — acceptable for LOD tier decisions and AI targeting, which
// do not need exact nearest-neighbor guarantees.
func (zi *zoneIndex) nearestHuman(pos vecmath.Vec2) (humanEntry, float64, bool) {
	center := zi.keyOf(pos)
	var best humanEntry
	bestDsq := math.MaxFloat64
	found := false
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for _, h := range zi.cells[zoneKey{X: center.X + dx, Y: center.Y + dy}] {
				d := h.pos.DistanceSq(pos)
				if d < bestDsq {
					bestDsq, best, found = d, h, true
				}
			}
		}
	}
	return best, math.Sqrt(bestDsq), found
}

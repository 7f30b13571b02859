package aoi

import (
	"math"
	"sync"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// maxGravityAccelForDensity mirrors simsys.MaxGravityAccel without
// importing the simsys package (which would create a cycle back to
// aoi through the tick scheduler): both clamp the same 1/r well
// contribution to the same ceiling for consistency between what the
// physics step applies and what the minimap renders.
const maxGravityAccelForDensity = 100.0

// DensityGrid is a square grid of u8 cell values for the client minimap,
// backed by a pooled byte slice so steady-state ticks don't allocate.
type DensityGrid struct {
	Size int
	Cell float64 // world units per cell
	Data []byte  // row-major, len == Size*Size
}

var densityGridPool = sync.Pool{
	New: func() any { return new(DensityGrid) },
}

// AcquireDensityGrid takes a pooled grid sized for the given safe radius
// and cell count, zeroing its buffer. Callers must call Release when
// done with it.
func AcquireDensityGrid(size int, safeRadius float64) *DensityGrid {
	g := densityGridPool.Get().(*DensityGrid)
	g.Size = size
	g.Cell = (2 * safeRadius) / float64(size)
	if cap(g.Data) < size*size {
		g.Data = make([]byte, size*size)
	} else {
		g.Data = g.Data[:size*size]
		for i := range g.Data {
			g.Data[i] = 0
		}
	}
	return g
}

// Release returns a grid to the pool. The caller must not use g again.
func (g *DensityGrid) Release() {
	densityGridPool.Put(g)
}

// BuildDensityGrid accumulates player mass and well gravitational
// contribution into each cell center, then normalizes the whole grid to
// [0, 255] by scaling against its own maximum.
func BuildDensityGrid(w *world.World, cfg config.AOIConfig) *DensityGrid {
	safeRadius := w.Arena.CurrentSafeRadius()
	g := AcquireDensityGrid(cfg.DensityGridSize, safeRadius)

	raw := make([]float64, g.Size*g.Size)
	origin := -safeRadius

	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		cx, cy, ok := g.cellIndex(p.Pos, origin)
		if ok {
			raw[cy*g.Size+cx] += p.Mass
		}
	}

	for cy := 0; cy < g.Size; cy++ {
		for cx := 0; cx < g.Size; cx++ {
			center := vecmath.Vec2{
				X: origin + (float64(cx)+0.5)*g.Cell,
				Y: origin + (float64(cy)+0.5)*g.Cell,
			}
			raw[cy*g.Size+cx] += wellContribution(w, center)
		}
	}

	max := 0.0
	for _, v := range raw {
		if v > max {
			max = v
		}
	}
	if max > 0 {
		for i, v := range raw {
			g.Data[i] = byte(math.Round(v / max * 255))
		}
	}
	return g
}

// cellIndex converts a world position to a cell index, reporting false
// if it falls outside the grid.
func (g *DensityGrid) cellIndex(p vecmath.Vec2, origin float64) (x, y int, ok bool) {
	x = int((p.X - origin) / g.Cell)
	y = int((p.Y - origin) / g.Cell)
	if x < 0 || x >= g.Size || y < 0 || y >= g.Size {
		return 0, 0, false
	}
	return x, y, true
}

// wellContribution sums every well's 1/r gravitational magnitude at p,
// zeroing out inside 2x core radius, the same shape the physics step
// uses so the minimap visually matches actual gravity.
func wellContribution(w *world.World, p vecmath.Vec2) float64 {
	total := 0.0
	for _, well := range w.Arena.Wells {
		if well.Phase == world.WellDestroyed {
			continue
		}
		r := well.Pos.Distance(p)
		if r < 2*well.CoreRadius {
			continue
		}
		mag := w.Config.Physics.G * well.Mass / r
		if mag > maxGravityAccelForDensity {
			mag = maxGravityAccelForDensity
		}
		total += mag
	}
	return total
}

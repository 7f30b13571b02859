package aoi

import (
	"math"
	"testing"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestRadiusAtFullZoom(t *testing.T) {
	cfg := config.DefaultAOI()
	if got := Radius(cfg, 1.0); !almostEqual(got, 1560, 1e-6) {
		t.Errorf("Radius(zoom=1.0) = %v, want 1560", got)
	}
}

func TestRadiusAtZoomedOut(t *testing.T) {
	cfg := config.DefaultAOI()
	got := Radius(cfg, 0.45)
	if !almostEqual(got, 3467, 1) {
		t.Errorf("Radius(zoom=0.45) = %v, want ~3467", got)
	}
}

func TestRadiusClampsOutOfRangeZoom(t *testing.T) {
	cfg := config.DefaultAOI()
	if got := Radius(cfg, 100); got < cfg.BaseRadius {
		t.Errorf("Radius with an absurd zoom should clamp to MaxZoom, got %v", got)
	}
	if got := Radius(cfg, 0); got > Radius(cfg, cfg.MinZoom)+1e-6 {
		t.Errorf("Radius with zoom=0 should clamp to MinZoom, got %v", got)
	}
}

// TestFilterExcludesFarPlayer matches the documented filtering scenario:
// a client at the origin with a 1560-unit radius sees a player at 1000
// units but not one at 2000 units.
func TestFilterExcludesFarPlayer(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)

	near := w.AddPlayer("near", false)
	near.Spawn(vecmath.Vec2{X: 1000}, vecmath.Zero, 100, 0, 0)
	far := w.AddPlayer("far", false)
	far.Spawn(vecmath.Vec2{X: 2000}, vecmath.Zero, 100, 0, 0)

	snap := Filter(w, cfg.AOI, world.PlayerId{}, false, vecmath.Zero, Radius(cfg.AOI, 1.0))

	foundNear, foundFar := false, false
	for _, p := range snap.Players {
		if p.ID == near.ID {
			foundNear = true
		}
		if p.ID == far.ID {
			foundFar = true
		}
	}
	if !foundNear {
		t.Error("player at 1000 units should be within the 1560-unit AOI radius")
	}
	if foundFar {
		t.Error("player at 2000 units should be outside the 1560-unit AOI radius")
	}
}

func TestFilterAlwaysIncludesSelf(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)
	self := w.AddPlayer("self", false)
	self.Spawn(vecmath.Vec2{X: 50_000}, vecmath.Zero, 100, 0, 0)

	snap := Filter(w, cfg.AOI, self.ID, true, vecmath.Zero, 100)
	if len(snap.Players) != 1 || snap.Players[0].ID != self.ID {
		t.Errorf("Filter should always include self even when far outside radius, got %+v", snap.Players)
	}
}

func TestFilterAlwaysIncludesWells(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)

	snap := Filter(w, cfg.AOI, world.PlayerId{}, false, vecmath.Zero, 1)
	if len(snap.Wells) == 0 {
		t.Error("Filter should always include wells regardless of radius")
	}
}

func TestFilterTopNDeduplicatesAgainstRadius(t *testing.T) {
	cfg := config.Default()
	cfg.AOI.TopN = 1
	w := world.NewWorld(cfg)

	// Exceed TopN so the leaderboard path activates.
	for i := 0; i < 3; i++ {
		p := w.AddPlayer("p", false)
		p.Spawn(vecmath.Vec2{X: 50_000 + float64(i)}, vecmath.Zero, 100, 0, 0)
		p.Kills = i
	}

	snap := Filter(w, cfg.AOI, world.PlayerId{}, false, vecmath.Zero, 1)
	seen := make(map[world.PlayerId]int)
	for _, p := range snap.Players {
		seen[p.ID]++
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("player %v appears %d times in snapshot, want exactly 1", id, count)
		}
	}
}

func TestDensityGridCellsInRange(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)
	p := w.AddPlayer("p", false)
	p.Spawn(vecmath.Zero, vecmath.Zero, 10_000, 0, 0)

	g := BuildDensityGrid(w, cfg.AOI)
	defer g.Release()

	max := byte(0)
	for _, v := range g.Data {
		if v > max {
			max = v
		}
		if v > 255 {
			t.Fatalf("density value %d exceeds u8 range", v)
		}
	}
	if max != 255 {
		t.Errorf("densest cell should normalize to 255, got max %d", max)
	}
}

func TestDensityGridEmptyWorldIsZero(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)
	for id := range w.Arena.Wells {
		delete(w.Arena.Wells, id)
	}

	g := BuildDensityGrid(w, cfg.AOI)
	defer g.Release()

	for _, v := range g.Data {
		if v != 0 {
			t.Fatalf("density grid with no players or wells should be all zero, got %d", v)
		}
	}
}

func TestAcquireDensityGridReusesBuffer(t *testing.T) {
	g1 := AcquireDensityGrid(16, 1000)
	g1.Data[0] = 200
	g1.Release()

	g2 := AcquireDensityGrid(16, 1000)
	defer g2.Release()
	if g2.Data[0] != 0 {
		t.Error("a reacquired grid should have its buffer zeroed")
	}
}

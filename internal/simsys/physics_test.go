package simsys

import (
	"math"
	"testing"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

// TestDragIsExponential verifies velocity decays geometrically, not linearly.
func TestDragIsExponential(t *testing.T) {
	cfg := config.DefaultPhysics()
	w := world.NewWorld(config.Default())
	p := w.AddPlayer("p1", false)
	p.Spawn(vecmath.Zero, vecmath.Vec2{X: 100}, 100, 0, 0)

	dt := 1.0 / float64(cfg.TickRate)
	PhysicsStep(w, cfg, dt)
	if !almostEqual(p.Vel.X, 99.8, 1e-9) {
		t.Errorf("after 1 tick Vel.X = %v, want 99.8", p.Vel.X)
	}

	for i := 0; i < 9; i++ {
		PhysicsStep(w, cfg, dt)
	}
	if !almostEqual(p.Vel.X, 98.02, 1e-2) {
		t.Errorf("after 10 ticks Vel.X = %v, want ~98.02", p.Vel.X)
	}
}

func TestVelocityClampAtExactlyMax(t *testing.T) {
	cfg := config.DefaultPhysics()
	w := world.NewWorld(config.Default())
	p := w.AddPlayer("p1", false)
	p.Spawn(vecmath.Zero, vecmath.Vec2{X: cfg.MaxVelocity}, 100, 0, 0)

	// Drag alone should reduce velocity below max, so the clamp is a
	// no-op when velocity starts exactly at the cap.
	before := p.Vel.Length()
	PhysicsStep(w, cfg, 1.0/float64(cfg.TickRate))
	if p.Vel.Length() > before {
		t.Errorf("velocity grew after physics step: %v -> %v", before, p.Vel.Length())
	}
	if p.Vel.Length() > cfg.MaxVelocity+1e-9 {
		t.Errorf("velocity exceeded MaxVelocity: %v", p.Vel.Length())
	}
}

func TestSpawnProtectionDecrements(t *testing.T) {
	cfg := config.DefaultPhysics()
	w := world.NewWorld(config.Default())
	p := w.AddPlayer("p1", false)
	p.Spawn(vecmath.Zero, vecmath.Zero, 100, 1.0, 0)

	PhysicsStep(w, cfg, 0.5)
	if !almostEqual(p.SpawnProtection, 0.5, 1e-9) {
		t.Errorf("SpawnProtection = %v, want 0.5", p.SpawnProtection)
	}
	PhysicsStep(w, cfg, 1.0)
	if p.SpawnProtection != 0 {
		t.Errorf("SpawnProtection should clamp at 0, got %v", p.SpawnProtection)
	}
}

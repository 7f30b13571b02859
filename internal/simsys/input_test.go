package simsys

import (
	"math"
	"testing"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

func TestApplyInputThrustAccelerates(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)
	p := w.AddPlayer("p1", false)
	p.Spawn(vecmath.Zero, vecmath.Zero, 100, 0, 0)

	in := world.PlayerInput{Thrust: vecmath.Vec2{X: 1}}
	ApplyInput(w, p, in, cfg.Boost, cfg.Eject, cfg.Mass, 1.0)

	want := cfg.Boost.BaseThrust
	if math.Abs(p.Vel.X-want) > 1e-9 {
		t.Errorf("Vel.X = %v, want %v", p.Vel.X, want)
	}
}

func TestApplyInputBoostCostsMass(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)
	p := w.AddPlayer("p1", false)
	p.Spawn(vecmath.Zero, vecmath.Zero, 100, 0, 0)

	in := world.PlayerInput{Thrust: vecmath.Vec2{X: 1}, Boost: true}
	ApplyInput(w, p, in, cfg.Boost, cfg.Eject, cfg.Mass, 1.0)

	wantCost := cfg.Boost.BaseCost + 100*cfg.Boost.MassCostRatio
	wantMass := 100 - wantCost
	if math.Abs(p.Mass-wantMass) > 1e-9 {
		t.Errorf("Mass = %v, want %v", p.Mass, wantMass)
	}
}

func TestApplyInputDeadPlayerNoop(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)
	p := w.AddPlayer("p1", false)

	ApplyInput(w, p, world.PlayerInput{Thrust: vecmath.Vec2{X: 1}}, cfg.Boost, cfg.Eject, cfg.Mass, 1.0)
	if p.Vel.LengthSq() != 0 {
		t.Error("ApplyInput should be a no-op for a dead (unspawned) player")
	}
}

package simsys

import (
	"math"
	"testing"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// TestFullChargeRelease verifies a full-charge release produces a half-mass, minimum-speed projectile and the expected recoil.
func TestFullChargeRelease(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)
	p := w.AddPlayer("shooter", false)
	p.Spawn(vecmath.Zero, vecmath.Zero, 100, 0, 0)

	aim := vecmath.Vec2{X: 1}
	ApplyFireInput(p, aim, cfg.Eject.MaxChargeSeconds, cfg.Eject)
	ReleaseFire(w, p, cfg.Eject, cfg.Mass)

	if len(w.Projectiles) != 1 {
		t.Fatalf("expected 1 projectile, got %d", len(w.Projectiles))
	}
	pr := w.Projectiles[0]
	if math.Abs(pr.Mass-50) > 1e-6 {
		t.Errorf("projectile mass = %v, want 50", pr.Mass)
	}
	wantSpeed := cfg.Eject.MinSpeed // full charge -> slowest shot
	gotSpeed := pr.Vel.Length()
	if math.Abs(gotSpeed-wantSpeed) > 1e-6 {
		t.Errorf("projectile speed = %v, want %v", gotSpeed, wantSpeed)
	}

	if math.Abs(p.Mass-50) > 1e-6 {
		t.Errorf("player mass after fire = %v, want 50", p.Mass)
	}
	wantRecoil := -25.0
	if math.Abs(p.Vel.X-wantRecoil) > 1e-6 {
		t.Errorf("player recoil Vel.X = %v, want %v", p.Vel.X, wantRecoil)
	}
}

func TestExpireStepRemovesOnlyExpired(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)
	alive := w.SpawnProjectile(world.NewPlayerId(), vecmath.Zero, vecmath.Zero, 10, 1)
	expired := w.SpawnProjectile(world.NewPlayerId(), vecmath.Zero, vecmath.Zero, 10, 0)
	_ = expired

	ExpireStep(w)

	if len(w.Projectiles) != 1 {
		t.Fatalf("expected 1 projectile remaining, got %d", len(w.Projectiles))
	}
	if w.Projectiles[0].ID != alive.ID {
		t.Error("ExpireStep removed the wrong projectile")
	}
}

func TestReleaseFireNoopWithoutCharging(t *testing.T) {
	cfg := config.Default()
	w := world.NewWorld(cfg)
	p := w.AddPlayer("idle", false)
	p.Spawn(vecmath.Zero, vecmath.Zero, 100, 0, 0)

	ReleaseFire(w, p, cfg.Eject, cfg.Mass)
	if len(w.Projectiles) != 0 {
		t.Error("ReleaseFire without charging should not spawn a projectile")
	}
}

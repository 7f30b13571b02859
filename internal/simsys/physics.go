// Package simsys implements the per-tick simulation stages: physics
// integration, gravity, collision, arena enforcement and the projectile
// system. Each stage is a plain function over *world.World — no stage
// holds state across ticks beyond what it writes back into the world
// itself, so the tick scheduler (internal/tick) can run them in a fixed
// order and swap any one of them out independently.
package simsys

import (
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/world"
)

// PhysicsStep integrates positions, applies exponential drag, clamps
// velocity, and decrements projectile lifetimes and spawn-protection
// timers.
func PhysicsStep(w *world.World, cfg config.PhysicsConfig, dt float64) {
	dragFactor := 1 - cfg.Drag

	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		p.Vel = p.Vel.Scale(dragFactor)
		p.Vel = p.Vel.ClampLength(cfg.MaxVelocity)
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))

		if p.SpawnProtection > 0 {
			p.SpawnProtection -= dt
			if p.SpawnProtection < 0 {
				p.SpawnProtection = 0
			}
		}
		if p.Charge.Cooldown > 0 {
			p.Charge.Cooldown -= dt
			if p.Charge.Cooldown < 0 {
				p.Charge.Cooldown = 0
			}
		}
	}

	for _, pr := range w.Projectiles {
		pr.Pos = pr.Pos.Add(pr.Vel.Scale(dt))
		pr.Lifetime -= dt
	}

	// Debris drifts ballistically (no drag, no velocity clamp) — it is
	// decorative/collectible mass, not a maneuvering combatant.
	for _, d := range w.Debris {
		d.Pos = d.Pos.Add(d.Vel.Scale(dt))
		d.Age += dt
	}
}

package simsys

import (
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// ApplyFireInput advances a player's charge state for one tick of holding
// fire. Called during input application, not during PhysicsStep.
func ApplyFireInput(p *world.Player, aim vecmath.Vec2, dt float64, cfg config.EjectConfig) {
	if p.Charge.Cooldown > 0 {
		return
	}
	p.Charge.Charging = true
	p.Charge.Aim = aim
	p.Charge.ChargeTime += dt
	if p.Charge.ChargeTime > cfg.MaxChargeSeconds {
		p.Charge.ChargeTime = cfg.MaxChargeSeconds
	}
}

// ReleaseFire computes and spawns the projectile for a fire-released
// input, applies recoil to the player, and resets the charge state.
// No-op if the player was not charging or has too little mass to fire.
func ReleaseFire(w *world.World, p *world.Player, cfg config.EjectConfig, mass config.MassConfig) {
	if !p.Charge.Charging {
		return
	}
	chargeTime := p.Charge.ChargeTime
	aim := p.Charge.Aim
	p.Charge = world.ChargeState{Cooldown: cfg.PostFireCooldown}

	span := cfg.MaxChargeSeconds - cfg.MinChargeSeconds
	progress := 0.0
	if span > 0 {
		progress = (chargeTime - cfg.MinChargeSeconds) / span
	}
	progress = vecmath.Clamp(progress, 0, 1)

	projMass := vecmath.Clamp(progress*cfg.MaxMassRatio*p.Mass, cfg.MinMass, p.Mass-mass.Min)
	if projMass <= 0 {
		return
	}
	speed := cfg.MaxSpeed - progress*(cfg.MaxSpeed-cfg.MinSpeed)

	spawnPos := p.Pos.Add(aim.Scale(p.Radius()))
	vel := p.Vel.Add(aim.Scale(speed))
	w.SpawnProjectile(p.ID, spawnPos, vel, projMass, cfg.Lifetime)

	// Recoil uses the player's pre-fire mass as the denominator.
	recoil := aim.Scale(-speed * projMass / p.Mass * 0.5)
	p.Mass -= projMass
	p.Vel = p.Vel.Add(recoil)
}

// ExpireStep removes projectiles whose lifetime has run out.
// Absorption-driven removal already happened in CollisionStep; this only
// handles expiry.
func ExpireStep(w *world.World) {
	kept := w.Projectiles[:0]
	for _, pr := range w.Projectiles {
		if !pr.Expired() {
			kept = append(kept, pr)
		}
	}
	w.Projectiles = kept
}

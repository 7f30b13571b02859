package simsys

import (
	"math"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// MaxGravityAccel is the per-body acceleration clamp, applied after
// summing every well's contribution, to keep close passes survivable.
const MaxGravityAccel = 100.0

// GravityStep accumulates acceleration from every well onto every
// dynamic body using a 1/r falloff (not 1/r^2 — chosen for gameplay feel
// at orbital distances around 300 units) and applies it as a velocity
// delta over dt.
func GravityStep(w *world.World, cfg config.PhysicsConfig, dt float64) {
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		p.Vel = p.Vel.Add(accelOn(p.Pos, w.Arena.Wells, cfg.G).Scale(dt))
	}
	for _, pr := range w.Projectiles {
		pr.Vel = pr.Vel.Add(accelOn(pr.Pos, w.Arena.Wells, cfg.G).Scale(dt))
	}
	for _, d := range w.Debris {
		d.Vel = d.Vel.Add(accelOn(d.Pos, w.Arena.Wells, cfg.G).Scale(dt))
	}
}

// accelOn sums the gravitational acceleration every well exerts on a body
// at pos, then clamps the total magnitude.
func accelOn(pos vecmath.Vec2, wells map[world.WellId]*world.GravityWell, g float64) vecmath.Vec2 {
	total := vecmath.Zero
	for _, w := range wells {
		if w.Phase == world.WellDestroyed {
			continue
		}
		toWell := w.Pos.Sub(pos)
		r := toWell.Length()
		if r < 2*w.CoreRadius {
			continue // inside 2x core radius: zero contribution, avoids runaway accel
		}
		mag := g * w.Mass / r
		total = total.Add(toWell.Scale(mag / r)) // toWell normalized, scaled by mag
	}
	return total.ClampLength(MaxGravityAccel)
}

// OrbitalVelocity returns the speed required for a circular orbit of
// radius r around a well of the given mass, exposed for the bot engine's
// self-stabilization behavior.
func OrbitalVelocity(g, wellMass, r float64) float64 {
	if r <= 0 {
		return 0
	}
	return math.Sqrt(g * wellMass / r)
}

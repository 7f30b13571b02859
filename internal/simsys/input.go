package simsys

import (
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/world"
)

// ApplyInput resolves one player's input for the tick: thrust becomes an
// immediate velocity delta, aim updates rotation, and fire/fire-released
// drive the charge state machine. Called once per player, before the
// physics step, for both human and bot-synthesized inputs.
func ApplyInput(w *world.World, p *world.Player, in world.PlayerInput, boost config.BoostConfig, eject config.EjectConfig, mass config.MassConfig, dt float64) {
	if !p.Alive {
		return
	}

	thrust := in.Thrust.ClampLength(1)
	accel := boost.BaseThrust
	if in.Boost {
		accel *= 2
		cost := (boost.BaseCost + p.Mass*boost.MassCostRatio) * dt
		p.Mass -= cost
		if p.Mass < mass.Min {
			p.Kill(0)
		}
	}
	p.Vel = p.Vel.Add(thrust.Scale(accel * dt))

	if in.Aim.LengthSq() > 0 {
		p.Rotation = in.Aim.Angle()
	}

	if in.Fire {
		ApplyFireInput(p, in.Aim, dt, eject)
	}
	if in.FireReleased {
		ReleaseFire(w, p, eject, mass)
	}
}

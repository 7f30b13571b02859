package simsys

import (
	"math/rand"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// orbitSpacing approximates the typical orbital distance gravity is tuned
// for, used to size the minimum inter-well spacing during placement.
const orbitSpacing = 300.0

// ArenaStep enforces arena radii, rescales the arena by alive-human
// count, drains mass from players outside the safe radius, and advances
// well population + gravity-wave lifecycle. Well-core death
// is resolved in CollisionStep; this step only handles escape drain and wells.
func ArenaStep(
	w *world.World,
	rng *rand.Rand,
	cfg config.ArenaConfig,
	gw config.GravityWaveConfig,
	mass config.MassConfig,
	respawnDelay float64,
	maxWells int,
	dt float64,
) {
	rescaleArena(w, cfg)
	drainEscapedPlayers(w, cfg, mass, respawnDelay, dt)
	manageWellCount(w, rng, cfg, gw, maxWells)
	advanceWells(w, gw, dt)
}

func rescaleArena(w *world.World, cfg config.ArenaConfig) {
	alive := float64(w.AliveHumanCount())
	scale := 1 + alive*0.1
	scale = vecmath.Clamp(scale, 1, 5)
	w.Arena.Rescale(scale)
}

func drainEscapedPlayers(w *world.World, cfg config.ArenaConfig, mass config.MassConfig, respawnDelay, dt float64) {
	safe := w.Arena.CurrentSafeRadius()
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		dist := p.Pos.Length()
		if dist <= safe {
			continue
		}
		excess := dist - safe
		drain := cfg.EscapeMassDrain * (1 + excess/100) * dt
		p.Mass -= drain
		if p.Mass < mass.Min {
			p.Kill(respawnDelay)
			w.EmitEvent(world.EventPlayerKilled, world.PlayerKilledPayload{Victim: p.ID})
		}
	}
}

// manageWellCount keeps the alive well count near a target derived from
// the alive-human count, clamped by maxWells (the governor's budget-aware
// ceiling). Extra wells are retired via the charge/explode sequence
// instead of being deleted outright, so clients see the gameplay
// spectacle rather than a well vanishing silently.
func manageWellCount(w *world.World, rng *rand.Rand, cfg config.ArenaConfig, gw config.GravityWaveConfig, maxWells int) {
	if maxWells < cfg.MinWells {
		maxWells = cfg.MinWells
	}
	alive := w.AliveHumanCount()
	desired := 1 + alive/3
	if desired < cfg.MinWells {
		desired = cfg.MinWells
	}
	if desired > maxWells {
		desired = maxWells
	}

	current := w.Arena.AliveWellCount()
	if current < desired {
		placeWell(w, rng, cfg)
		return
	}
	if current > desired {
		retireOneWell(w, gw)
	}
}

// placeWell uses randomized rejection sampling for a position at least
// MinWellSpacing*orbitSpacing from every existing well, accepting the
// best candidate seen after PlacementTries attempts.
func placeWell(w *world.World, rng *rand.Rand, cfg config.ArenaConfig) {
	minDist := cfg.MinWellSpacing * orbitSpacing
	maxR := w.Arena.OuterRadius * 0.8

	var bestPos vecmath.Vec2
	bestScore := -1.0
	for attempt := 0; attempt < cfg.PlacementTries; attempt++ {
		angle := rng.Float64() * 2 * 3.141592653589793
		r := cfg.CoreRadius*3 + rng.Float64()*(maxR-cfg.CoreRadius*3)
		candidate := vecmath.FromAngle(angle).Scale(r)

		score := minDistanceToWells(w, candidate)
		if score >= minDist {
			bestPos = candidate
			bestScore = score
			break
		}
		if score > bestScore {
			bestPos, bestScore = candidate, score
		}
	}

	id := w.NextWellID()
	w.Arena.Wells[id] = &world.GravityWell{
		ID:         id,
		Pos:        bestPos,
		Mass:       3000,
		CoreRadius: cfg.CoreRadius * 0.6,
		Phase:      world.WellStable,
	}
}

func minDistanceToWells(w *world.World, pos vecmath.Vec2) float64 {
	best := -1.0
	for _, well := range w.Arena.Wells {
		if well.Phase == world.WellDestroyed {
			continue
		}
		d := pos.Distance(well.Pos)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 1e9 // no existing wells: any position is fine
	}
	return best
}

// retireOneWell starts the charge/explode sequence on one stable well,
// preferring the one with the smallest mass (least gameplay impact).
func retireOneWell(w *world.World, gw config.GravityWaveConfig) {
	var target *world.GravityWell
	for _, well := range w.Arena.Wells {
		if well.Phase != world.WellStable {
			continue
		}
		if target == nil || well.Mass < target.Mass {
			target = well
		}
	}
	if target == nil {
		return
	}
	target.Phase = world.WellCharging
	target.ChargeTimer = gw.ChargeDuration
	w.EmitEvent(world.EventGravityWellCharging, world.GravityWellChargingPayload{Well: target.ID})
}

// advanceWells runs the charging -> exploding -> destroyed lifecycle and
// applies the expanding shockwave impulse.
func advanceWells(w *world.World, gw config.GravityWaveConfig, dt float64) {
	for id, well := range w.Arena.Wells {
		switch well.Phase {
		case world.WellCharging:
			well.ChargeTimer -= dt
			if well.ChargeTimer <= 0 {
				well.Phase = world.WellExploding
				well.WaveRadius = 0
				w.EmitEvent(world.EventGravityWaveExplosion, world.GravityWaveExplosionPayload{
					Well: well.ID, Center: well.Pos,
				})
			}

		case world.WellExploding:
			if !gw.Enabled {
				well.Phase = world.WellDestroyed
				w.EmitEvent(world.EventGravityWellDestroyed, world.GravityWellDestroyedPayload{Well: well.ID})
				break
			}
			prevRadius := well.WaveRadius
			well.WaveRadius += gw.Speed * dt
			applyShockwave(w, well, prevRadius, gw)
			if well.WaveRadius >= gw.MaxRadius {
				well.Phase = world.WellDestroyed
				w.EmitEvent(world.EventGravityWellDestroyed, world.GravityWellDestroyedPayload{Well: well.ID})
			}

		case world.WellDestroyed:
			delete(w.Arena.Wells, id)
		}
	}
}

// applyShockwave pushes any player whose distance from the well fell
// within the wavefront band during this tick's advance radially outward.
func applyShockwave(w *world.World, well *world.GravityWell, prevRadius float64, gw config.GravityWaveConfig) {
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		dist := p.Pos.Distance(well.Pos)
		frontLo := well.WaveRadius - gw.FrontThickness
		if dist < prevRadius || dist > well.WaveRadius || dist < frontLo {
			continue
		}
		falloff := 1 - well.WaveRadius/gw.MaxRadius
		if falloff < 0 {
			falloff = 0
		}
		impulse := gw.BaseImpulse * falloff
		dir := p.Pos.Sub(well.Pos).Normalized()
		if dir == vecmath.Zero {
			dir = vecmath.Vec2{X: 1}
		}
		p.Vel = p.Vel.Add(dir.Scale(impulse))
	}
}

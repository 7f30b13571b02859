package simsys

import (
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/spatial"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// CollisionCellSize is the spatial hash cell size for the broad phase —
// roughly 2x the largest expected entity radius.
const CollisionCellSize = 120.0

// BuildCollisionGrid rebuilds grid from scratch with every alive player,
// every projectile and every debris instance. Wells are intentionally
// excluded: there are always few of them, so well-core death (rule 6) is
// checked directly against the well list instead of via the hash.
//
// playerList must be populated by the caller (the tick scheduler) with
// one entry per alive player, in the same order used to build it — the
// grid's EntityRef.Index indexes into this slice.
func BuildCollisionGrid(grid *spatial.Grid, w *world.World, playerList []*world.Player) {
	grid.Clear()
	for i, p := range playerList {
		grid.Insert(spatial.EntityRef{Kind: spatial.KindPlayer, Index: uint32(i)}, p.Pos, p.Radius())
	}
	for i, pr := range w.Projectiles {
		grid.Insert(spatial.EntityRef{Kind: spatial.KindProjectile, Index: uint32(i)}, pr.Pos, 6)
	}
	for i, d := range w.Debris {
		grid.Insert(spatial.EntityRef{Kind: spatial.KindDebris, Index: uint32(i)}, d.Pos, debrisRadius(d.Size))
	}
}

func debrisRadius(size world.DebrisSize) float64 {
	return world.MassToRadius(size.Mass())
}

// CollisionStep runs broad-phase (via grid) then narrow-phase circle
// tests, resolving each overlapping pair by its kinds (player-vs-player,
// player-vs-projectile, player-vs-debris, projectile-vs-projectile) in
// the order the grid yields pairs, which follows map iteration and is
// not fixed; well-core death is checked after every pair has been
// resolved. Dead projectiles/debris are only compacted out of the
// world after the full pass, so grid indices stay valid for the whole
// step.
func CollisionStep(
	w *world.World,
	grid *spatial.Grid,
	playerList []*world.Player,
	collision config.CollisionConfig,
	mass config.MassConfig,
	respawnDelay float64,
) {
	deadProjectiles := make(map[int]bool)
	deadDebris := make(map[int]bool)

	grid.PairIter(func(a, b spatial.Entry) bool {
		if a.Pos.DistanceSq(b.Pos) >= sq(a.Radius+b.Radius) {
			return true // not overlapping: no resolution
		}
		resolvePair(w, playerList, a, b, deadProjectiles, deadDebris, collision, mass, respawnDelay)
		return true
	})

	// Well-core death (rule 6): checked directly, wells are few.
	for _, p := range playerList {
		if !p.Alive {
			continue
		}
		for _, well := range w.Arena.Wells {
			if well.Phase == world.WellDestroyed {
				continue
			}
			if well.CoreContains(p.Pos) {
				p.Kill(respawnDelay)
				w.EmitEvent(world.EventPlayerKilled, world.PlayerKilledPayload{Victim: p.ID})
				break
			}
		}
	}

	compactProjectiles(w, deadProjectiles)
	compactDebris(w, deadDebris)
}

func sq(x float64) float64 { return x * x }

func resolvePair(
	w *world.World,
	playerList []*world.Player,
	a, b spatial.Entry,
	deadProjectiles, deadDebris map[int]bool,
	collision config.CollisionConfig,
	mass config.MassConfig,
	respawnDelay float64,
) {
	switch {
	case a.Ref.Kind == spatial.KindPlayer && b.Ref.Kind == spatial.KindPlayer:
		resolvePlayerPlayer(w, playerList[a.Ref.Index], playerList[b.Ref.Index], collision, mass, respawnDelay)

	case a.Ref.Kind == spatial.KindPlayer && b.Ref.Kind == spatial.KindProjectile:
		resolvePlayerProjectile(w, playerList[a.Ref.Index], int(b.Ref.Index), deadProjectiles, mass, respawnDelay)
	case a.Ref.Kind == spatial.KindProjectile && b.Ref.Kind == spatial.KindPlayer:
		resolvePlayerProjectile(w, playerList[b.Ref.Index], int(a.Ref.Index), deadProjectiles, mass, respawnDelay)

	case a.Ref.Kind == spatial.KindPlayer && b.Ref.Kind == spatial.KindDebris:
		resolvePlayerDebris(w, playerList[a.Ref.Index], int(b.Ref.Index), deadDebris)
	case a.Ref.Kind == spatial.KindDebris && b.Ref.Kind == spatial.KindPlayer:
		resolvePlayerDebris(w, playerList[b.Ref.Index], int(a.Ref.Index), deadDebris)

	case a.Ref.Kind == spatial.KindProjectile && b.Ref.Kind == spatial.KindProjectile:
		deadProjectiles[int(a.Ref.Index)] = true
		deadProjectiles[int(b.Ref.Index)] = true
	}
}

// resolvePlayerPlayer resolves spawn protection and the momentum-ratio tiers between two players.
func resolvePlayerPlayer(w *world.World, a, bp *world.Player, cfg config.CollisionConfig, mass config.MassConfig, respawnDelay float64) {
	if !a.Alive || !bp.Alive {
		return
	}
	if a.SpawnProtection > 0 || bp.SpawnProtection > 0 {
		return // rule 1: spawn protection overrides all PvP resolution
	}

	momA := a.Mass * a.Vel.Length()
	momB := bp.Mass * bp.Vel.Length()

	attacker, victim := a, bp
	hi, lo := momA, momB
	if momB > momA {
		attacker, victim = bp, a
		hi, lo = momB, momA
	}

	var ratio float64
	if lo < 1e-9 {
		if hi < 1e-9 {
			ratio = 1 // both stationary: no decisive winner, falls through to deflection
		} else {
			ratio = cfg.Overwhelm // a stationary body hit by any moving one is a clean overwhelm
		}
	} else {
		ratio = hi / lo
	}

	switch {
	case ratio >= cfg.Overwhelm:
		reward := victim.Mass * mass.AbsorbRate
		if reward > mass.AbsorbCap {
			reward = mass.AbsorbCap
		}
		attacker.Mass += reward
		attacker.Kills++
		victim.Kill(respawnDelay)
		w.EmitEvent(world.EventPlayerKilled, world.PlayerKilledPayload{
			Killer: attacker.ID, HasKiller: true, Victim: victim.ID,
		})

	case ratio >= cfg.Decisive:
		reward := victim.Mass * mass.AbsorbRate
		if reward > mass.AbsorbCap {
			reward = mass.AbsorbCap
		}
		attacker.Mass += reward
		// Kill-with-cost: the attacker also pays a fraction of its own
		// mass for the decisive (but not overwhelming) victory.
		attacker.Mass -= attacker.Mass * decisiveCostFraction
		if attacker.Mass < mass.Min {
			attacker.Kill(respawnDelay)
		}
		attacker.Kills++
		victim.Kill(respawnDelay)
		w.EmitEvent(world.EventPlayerKilled, world.PlayerKilledPayload{
			Killer: attacker.ID, HasKiller: true, Victim: victim.ID,
		})

	default:
		deflect(w, a, bp, cfg.Restitution)
	}
}

// decisiveCostFraction is the fraction of the attacker's post-absorb mass
// spent on a "kill with cost" victory, chosen small enough that a decisive
// win still nets mass overall in the common case (see DESIGN.md).
const decisiveCostFraction = 0.15

// deflect applies an elastic-ish bounce with the given restitution and
// emits a PlayerDeflection event.
func deflect(w *world.World, a, b *world.Player, restitution float64) {
	normal := b.Pos.Sub(a.Pos).Normalized()
	if normal == vecmath.Zero {
		normal = vecmath.Vec2{X: 1}
	}

	// Reflect each player's velocity component along the collision
	// normal, scaled by restitution; tangential component is untouched.
	av := a.Vel.Dot(normal)
	bv := b.Vel.Dot(normal)
	a.Vel = a.Vel.Add(normal.Scale(-(1 + restitution) * av))
	b.Vel = b.Vel.Add(normal.Scale(-(1 + restitution) * bv))

	// Separate the overlap along the normal so the pair does not stay
	// interpenetrating and re-trigger resolution next tick.
	overlap := (a.Radius() + b.Radius()) - a.Pos.Distance(b.Pos)
	if overlap > 0 {
		a.Pos = a.Pos.Add(normal.Scale(-overlap / 2))
		b.Pos = b.Pos.Add(normal.Scale(overlap / 2))
	}

	intensity := (absf(av) + absf(bv)) / 2
	w.EmitEvent(world.EventPlayerDeflection, world.PlayerDeflectionPayload{
		A: a.ID, B: b.ID,
		Midpoint:  vecmath.Lerp(a.Pos, b.Pos, 0.5),
		Intensity: intensity,
	})
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// resolvePlayerProjectile transfers projectile mass into a struck player, ignoring the owner's own shots.
func resolvePlayerProjectile(w *world.World, p *world.Player, prIdx int, dead map[int]bool, mass config.MassConfig, respawnDelay float64) {
	if !p.Alive || dead[prIdx] {
		return
	}
	pr := w.Projectiles[prIdx]
	if pr.Owner == p.ID {
		return // rule 3: no-op against one's own projectile
	}

	p.Mass -= pr.Mass
	dead[prIdx] = true

	if p.Mass < mass.Min {
		p.Kill(respawnDelay)
		if owner, ok := w.Players[pr.Owner]; ok && owner.Alive {
			reward := pr.Mass * mass.AbsorbRate
			if reward > mass.AbsorbCap {
				reward = mass.AbsorbCap
			}
			owner.Mass += reward
			owner.Kills++
		}
		w.EmitEvent(world.EventPlayerKilled, world.PlayerKilledPayload{
			Killer: pr.Owner, HasKiller: true, Victim: p.ID,
		})
	}
}

// resolvePlayerDebris lets a player absorb a debris chunk it overlaps.
func resolvePlayerDebris(w *world.World, p *world.Player, debrisIdx int, dead map[int]bool) {
	if !p.Alive || dead[debrisIdx] {
		return
	}
	d := w.Debris[debrisIdx]
	p.Mass += d.Size.Mass()
	dead[debrisIdx] = true
}

func compactProjectiles(w *world.World, dead map[int]bool) {
	if len(dead) == 0 {
		return
	}
	kept := w.Projectiles[:0]
	for i, pr := range w.Projectiles {
		if !dead[i] {
			kept = append(kept, pr)
		}
	}
	w.Projectiles = kept
}

func compactDebris(w *world.World, dead map[int]bool) {
	if len(dead) == 0 {
		return
	}
	kept := w.Debris[:0]
	for i, d := range w.Debris {
		if !dead[i] {
			kept = append(kept, d)
		}
	}
	w.Debris = kept
}

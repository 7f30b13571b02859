// Package aoi filters the full world state down to what a single
// session actually needs: its own player, everything within its
// viewport-derived radius, a leaderboard top-N for consistency, and the
// always-included small, high-importance sets (wells). Every view type
// here is an immutable value copy — never a pointer into the world —
// so the result can be held by a session goroutine across ticks without
// risk of reading torn or freed state.
package aoi

import (
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// PlayerView is an immutable snapshot of one player's networked state.
type PlayerView struct {
	ID              world.PlayerId
	Name            string
	Pos             vecmath.Vec2
	Vel             vecmath.Vec2
	Rotation        float64
	Mass            float64
	Alive           bool
	Kills           int
	Deaths          int
	SpawnProtection float64
	IsBot           bool
	ColorIndex      int
}

// ProjectileView is an immutable snapshot of one projectile.
type ProjectileView struct {
	ID       world.EntityId
	Owner    world.PlayerId
	Pos      vecmath.Vec2
	Vel      vecmath.Vec2
	Mass     float64
	Lifetime float64
}

// DebrisView is an immutable snapshot of one debris chunk.
type DebrisView struct {
	ID   world.EntityId
	Pos  vecmath.Vec2
	Size world.DebrisSize
}

// WellView is an immutable snapshot of one gravity well.
type WellView struct {
	ID         world.WellId
	Pos        vecmath.Vec2
	Mass       float64
	CoreRadius float64
	Phase      world.WellPhase
	WaveRadius float64
}

// Snapshot is everything one session's AOI filter selected for one tick.
type Snapshot struct {
	Tick        world.Tick
	Players     []PlayerView
	Projectiles []ProjectileView
	Debris      []DebrisView
	Wells       []WellView
}

func playerView(p *world.Player) PlayerView {
	return PlayerView{
		ID:              p.ID,
		Name:            p.Name,
		Pos:             p.Pos,
		Vel:             p.Vel,
		Rotation:        p.Rotation,
		Mass:            p.Mass,
		Alive:           p.Alive,
		Kills:           p.Kills,
		Deaths:          p.Deaths,
		SpawnProtection: p.SpawnProtection,
		IsBot:           p.IsBot,
		ColorIndex:      p.ColorIndex,
	}
}

func projectileView(pr *world.Projectile) ProjectileView {
	return ProjectileView{ID: pr.ID, Owner: pr.Owner, Pos: pr.Pos, Vel: pr.Vel, Mass: pr.Mass, Lifetime: pr.Lifetime}
}

func debrisView(d *world.Debris) DebrisView {
	return DebrisView{ID: d.ID, Pos: d.Pos, Size: d.Size}
}

func wellView(w *world.GravityWell) WellView {
	return WellView{ID: w.ID, Pos: w.Pos, Mass: w.Mass, CoreRadius: w.CoreRadius, Phase: w.Phase, WaveRadius: w.WaveRadius}
}

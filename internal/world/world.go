// Package world holds the canonical mutable simulation state. The World
// is held by the tick scheduler (internal/tick) and is only read or
// mutated under the scheduler's lock, either on its tick goroutine or
// through its exported methods. A single struct owns every collection —
// players, projectiles, debris, wells, arena, match phase.
package world

import (
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
)

// World is the authoritative simulation state for one match.
type World struct {
	Tick Tick

	Players     map[PlayerId]*Player
	PlayerOrder []PlayerId // stable iteration order for determinism within a run

	Projectiles []*Projectile
	Debris      []*Debris

	Arena Arena
	Match MatchState

	Config config.AppConfig

	events []Event

	nextEntityID uint64
	nextWellID   uint64
	nextColor    int
}

// NewWorld builds an empty world at the configured base arena size with
// one central gravity well.
func NewWorld(cfg config.AppConfig) *World {
	w := &World{
		Players: make(map[PlayerId]*Player, 256),
		Config:  cfg,
		Arena: NewArena(
			cfg.Arena.CoreRadius,
			cfg.Arena.InnerRadius,
			cfg.Arena.MiddleRadius,
			cfg.Arena.OuterRadius,
			cfg.Arena.EscapeRadius,
		),
	}
	w.Arena.Wells[w.NextWellID()] = &GravityWell{
		ID:         1,
		Pos:        vecmath.Zero,
		Mass:       cfg.Physics.CentralMass,
		CoreRadius: cfg.Arena.CoreRadius,
		Phase:      WellStable,
	}
	return w
}

// NextEntityID allocates a fresh monotonic entity id.
func (w *World) NextEntityID() EntityId {
	w.nextEntityID++
	return w.nextEntityID
}

// NextWellID allocates a fresh monotonic well id.
func (w *World) NextWellID() WellId {
	w.nextWellID++
	return w.nextWellID
}

// AddPlayer registers a new player and returns it. The player starts
// unspawned (Alive == false); the caller (join handling, or the arena
// system's respawn logic) places it with Spawn.
func (w *World) AddPlayer(name string, isBot bool) *Player {
	p := NewPlayer(name, isBot, w.nextColor, w.Config.Mass.Start)
	w.nextColor++
	w.Players[p.ID] = p
	w.PlayerOrder = append(w.PlayerOrder, p.ID)
	w.EmitEvent(EventPlayerJoined, PlayerJoinedPayload{Player: p.ID, Name: name})
	return p
}

// RemovePlayer deletes a player from the world (leave/disconnect/eviction).
func (w *World) RemovePlayer(id PlayerId) {
	if _, ok := w.Players[id]; !ok {
		return
	}
	delete(w.Players, id)
	for i, pid := range w.PlayerOrder {
		if pid == id {
			w.PlayerOrder = append(w.PlayerOrder[:i], w.PlayerOrder[i+1:]...)
			break
		}
	}
	w.EmitEvent(EventPlayerLeft, PlayerLeftPayload{Player: id})
}

// AliveHumanCount counts non-bot players currently alive, the input to
// arena scaling.
func (w *World) AliveHumanCount() int {
	n := 0
	for _, p := range w.Players {
		if p.Alive && !p.IsBot {
			n++
		}
	}
	return n
}

// SpawnProjectile appends a new projectile and returns it.
func (w *World) SpawnProjectile(owner PlayerId, pos, vel vecmath.Vec2, mass, lifetime float64) *Projectile {
	pr := &Projectile{
		ID:       w.NextEntityID(),
		Owner:    owner,
		Pos:      pos,
		Vel:      vel,
		Mass:     mass,
		Lifetime: lifetime,
	}
	w.Projectiles = append(w.Projectiles, pr)
	return pr
}

// RemoveProjectileAt removes the projectile at index i via swap-with-last.
func (w *World) RemoveProjectileAt(i int) {
	last := len(w.Projectiles) - 1
	w.Projectiles[i] = w.Projectiles[last]
	w.Projectiles[last] = nil
	w.Projectiles = w.Projectiles[:last]
}

// SpawnDebris appends a new debris instance and returns it.
func (w *World) SpawnDebris(pos, vel vecmath.Vec2, size DebrisSize) *Debris {
	d := &Debris{ID: w.NextEntityID(), Pos: pos, Vel: vel, Size: size}
	w.Debris = append(w.Debris, d)
	return d
}

// RemoveDebrisAt removes the debris at index i via swap-with-last.
func (w *World) RemoveDebrisAt(i int) {
	last := len(w.Debris) - 1
	w.Debris[i] = w.Debris[last]
	w.Debris[last] = nil
	w.Debris = w.Debris[:last]
}

// EmitEvent appends a gameplay event for this tick, to be drained by the
// tick scheduler after every stage has run.
func (w *World) EmitEvent(t EventType, payload any) {
	w.events = append(w.events, Event{Type: t, Tick: w.Tick, Payload: payload})
}

// DrainEvents returns and clears the events accumulated this tick.
func (w *World) DrainEvents() []Event {
	if len(w.events) == 0 {
		return nil
	}
	out := w.events
	w.events = nil
	return out
}

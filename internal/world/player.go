package world

import (
	"math"

	"github.com/hknc0/orbit-core/internal/vecmath"
)

// ChargeState is the per-player firing state machine.
type ChargeState struct {
	Charging   bool
	ChargeTime float64 // seconds held, clamped to MaxChargeSeconds
	Aim        vecmath.Vec2
	Cooldown   float64 // seconds remaining before the player may charge again
}

// Player is the canonical mutable player record the world owns.
//
// Invariants (enforced by the systems that mutate a Player, never by the
// struct itself):
//   - Mass >= config Mass.Min while Alive.
//   - Radius() == MassToRadius(Mass).
//   - Vel.Length() <= config Physics.MaxVelocity after the physics step.
type Player struct {
	ID       PlayerId
	Name     string
	Pos      vecmath.Vec2
	Vel      vecmath.Vec2
	Rotation float64
	Mass     float64

	Alive           bool
	Kills           int
	Deaths          int
	SpawnProtection float64 // seconds remaining; >0 means immune to PvP resolution
	IsBot           bool
	ColorIndex      int
	SpawnTick       Tick
	RespawnTimer    float64 // seconds remaining until eligible to respawn

	Charge ChargeState

	IsSpectator bool
}

// Radius returns the player's collision radius, derived from mass.
func (p *Player) Radius() float64 { return MassToRadius(p.Mass) }

// MassToRadius converts mass to collision radius:
// radius = sqrt(mass) * 2.
func MassToRadius(mass float64) float64 {
	if mass < 0 {
		mass = 0
	}
	return math.Sqrt(mass) * RadiusScale
}

// RadiusToMass is the exact inverse of MassToRadius.
func RadiusToMass(radius float64) float64 {
	r := radius / RadiusScale
	return r * r
}

// RadiusScale is the fixed mass-to-radius scale factor.
const RadiusScale = 2.0

// NewPlayer constructs a freshly-joined, not-yet-spawned player.
func NewPlayer(name string, isBot bool, colorIndex int, startMass float64) *Player {
	return &Player{
		ID:         NewPlayerId(),
		Name:       name,
		Mass:       startMass,
		Alive:      false,
		IsBot:      isBot,
		ColorIndex: colorIndex,
	}
}

// Spawn places the player at pos with the given velocity and resets its
// combat/lifecycle state.
func (p *Player) Spawn(pos, vel vecmath.Vec2, mass float64, protectionSeconds float64, tick Tick) {
	p.Pos = pos
	p.Vel = vel
	p.Mass = mass
	p.Alive = true
	p.RespawnTimer = 0
	p.SpawnProtection = protectionSeconds
	p.SpawnTick = tick
	p.Charge = ChargeState{}
}

// Kill marks the player dead and schedules its respawn timer. Does not
// touch the killer — callers apply kill/mass rewards separately.
func (p *Player) Kill(respawnDelay float64) {
	p.Alive = false
	p.Deaths++
	p.RespawnTimer = respawnDelay
	p.Vel = vecmath.Zero
}

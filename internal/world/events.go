package world

import "github.com/hknc0/orbit-core/internal/vecmath"

// EventType enumerates the server->client gameplay events, each carrying
// a typed payload.
type EventType uint8

const (
	EventPlayerKilled EventType = iota
	EventPlayerJoined
	EventPlayerLeft
	EventMatchStarted
	EventMatchEnded
	EventZoneCollapse
	EventPlayerDeflection
	EventGravityWellCharging
	EventGravityWaveExplosion
	EventGravityWellDestroyed
)

// Event is a single gameplay occurrence emitted for a tick. Payload is
// one of the Payload types below, chosen by Type.
type Event struct {
	Type    EventType
	Tick    Tick
	Payload any
}

// PlayerKilledPayload accompanies EventPlayerKilled.
type PlayerKilledPayload struct {
	Killer    PlayerId
	HasKiller bool
	Victim    PlayerId
}

// PlayerJoinedPayload accompanies EventPlayerJoined.
type PlayerJoinedPayload struct {
	Player PlayerId
	Name   string
}

// PlayerLeftPayload accompanies EventPlayerLeft.
type PlayerLeftPayload struct {
	Player PlayerId
}

// MatchStartedPayload accompanies EventMatchStarted.
type MatchStartedPayload struct{}

// MatchEndedPayload accompanies EventMatchEnded.
type MatchEndedPayload struct {
	Winner    PlayerId
	HasWinner bool
}

// ZoneCollapsePayload accompanies EventZoneCollapse.
type ZoneCollapsePayload struct {
	NewSafeRadius float64
}

// PlayerDeflectionPayload accompanies EventPlayerDeflection.
type PlayerDeflectionPayload struct {
	A, B      PlayerId
	Midpoint  vecmath.Vec2
	Intensity float64
}

// GravityWellChargingPayload accompanies EventGravityWellCharging.
type GravityWellChargingPayload struct {
	Well WellId
}

// GravityWaveExplosionPayload accompanies EventGravityWaveExplosion.
type GravityWaveExplosionPayload struct {
	Well   WellId
	Center vecmath.Vec2
}

// GravityWellDestroyedPayload accompanies EventGravityWellDestroyed.
type GravityWellDestroyedPayload struct {
	Well WellId
}

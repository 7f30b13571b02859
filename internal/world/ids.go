package world

import "github.com/google/uuid"

// PlayerId is a 128-bit opaque identifier, unique for the lifetime of the
// process.
type PlayerId = uuid.UUID

// NewPlayerId allocates a fresh random player id.
func NewPlayerId() PlayerId { return uuid.New() }

// EntityId identifies a projectile or debris instance. Monotonically
// increasing per world, never reused.
type EntityId = uint64

// WellId identifies a gravity well. Stable across the well's lifetime
// (including its destruction) so clients can animate its removal instead
// of seeing it vanish from a snapshot.
type WellId = uint64

// Tick is the simulation step counter, starting at zero.
type Tick = uint64

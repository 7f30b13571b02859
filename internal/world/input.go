package world

import "github.com/hknc0/orbit-core/internal/vecmath"

// PlayerInput is one tick's worth of control state for a player, produced
// either by a client message or synthetically by the bot engine. The two
// sources are indistinguishable once queued: the tick scheduler applies
// them through the same path.
type PlayerInput struct {
	Player       PlayerId
	Sequence     uint64
	Tick         Tick
	Thrust       vecmath.Vec2 // desired thrust direction, not necessarily normalized
	Aim          vecmath.Vec2
	Boost        bool
	Fire         bool
	FireReleased bool
}

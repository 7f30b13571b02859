package world

import "github.com/hknc0/orbit-core/internal/vecmath"

// DebrisSize buckets debris into three fixed masses.
type DebrisSize uint8

const (
	DebrisSmall DebrisSize = iota
	DebrisMedium
	DebrisLarge
)

// Mass returns the fixed mass for a debris size.
func (s DebrisSize) Mass() float64 {
	switch s {
	case DebrisSmall:
		return 5
	case DebrisMedium:
		return 15
	case DebrisLarge:
		return 40
	default:
		return 0
	}
}

func (s DebrisSize) String() string {
	switch s {
	case DebrisSmall:
		return "small"
	case DebrisMedium:
		return "medium"
	case DebrisLarge:
		return "large"
	default:
		return "unknown"
	}
}

// Debris is a collectible mass chunk.
type Debris struct {
	ID   EntityId
	Pos  vecmath.Vec2
	Vel  vecmath.Vec2
	Size DebrisSize
	Age  float64 // seconds since spawn
}

package world

import "github.com/hknc0/orbit-core/internal/vecmath"

// Projectile is a fired mass packet.
type Projectile struct {
	ID       EntityId
	Owner    PlayerId
	Pos      vecmath.Vec2
	Vel      vecmath.Vec2
	Mass     float64
	Lifetime float64 // seconds remaining; removed when <= 0
}

// Expired reports whether the projectile's lifetime has run out.
func (pr *Projectile) Expired() bool { return pr.Lifetime <= 0 }

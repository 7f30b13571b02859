package world

import "github.com/hknc0/orbit-core/internal/vecmath"

// WellPhase tracks a gravity well's charge/explosion lifecycle.
type WellPhase uint8

const (
	WellStable WellPhase = iota
	WellCharging
	WellExploding
	WellDestroyed
)

// GravityWell is a source of gravitational acceleration and, when it
// explodes, an expanding shockwave.
type GravityWell struct {
	ID         WellId
	Pos        vecmath.Vec2
	Mass       float64
	CoreRadius float64

	Phase        WellPhase
	ChargeTimer  float64 // seconds remaining in WellCharging before WellExploding
	ExplodeDelay float64 // randomized per-well, seconds until charging may start
	WaveRadius   float64 // current shockwave front radius while WellExploding
}

// CoreContains reports whether p lies within the well's instant-death
// core.
func (w *GravityWell) CoreContains(p vecmath.Vec2) bool {
	return p.DistanceSq(w.Pos) < w.CoreRadius*w.CoreRadius
}

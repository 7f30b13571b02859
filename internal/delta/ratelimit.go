package delta

import (
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// RateState tracks, per session, the last tick each entity was actually
// examined for encoding. Entities far from the viewport center are
// re-examined less often to save bandwidth, but never skipped for more
// than MaxRateLimitGap ticks so a slow drift can't silently accumulate
// into a large, unannounced jump.
type RateState struct {
	players     map[world.PlayerId]world.Tick
	projectiles map[world.EntityId]world.Tick
}

// NewRateState returns an empty rate limiter ready for one session.
func NewRateState() *RateState {
	return &RateState{
		players:     make(map[world.PlayerId]world.Tick),
		projectiles: make(map[world.EntityId]world.Tick),
	}
}

// ShouldEncodePlayer reports whether the player at pos should be
// considered for this tick's delta, updating the last-examined tick as
// a side effect when it returns true.
func (r *RateState) ShouldEncodePlayer(id world.PlayerId, pos, center vecmath.Vec2, tick world.Tick, cfg config.DeltaConfig) bool {
	last, seen := r.players[id]
	if !shouldEncode(seen, last, tick, pos.Distance(center), cfg) {
		return false
	}
	r.players[id] = tick
	return true
}

// ShouldEncodeProjectile is ShouldEncodePlayer's counterpart for
// projectiles.
func (r *RateState) ShouldEncodeProjectile(id world.EntityId, pos, center vecmath.Vec2, tick world.Tick, cfg config.DeltaConfig) bool {
	last, seen := r.projectiles[id]
	if !shouldEncode(seen, last, tick, pos.Distance(center), cfg) {
		return false
	}
	r.projectiles[id] = tick
	return true
}

// Forget drops any rate-limiting state for entities no longer worth
// tracking (left the AOI, or the session disconnected). Callers pass
// the ids still present in the latest snapshot; anything else is
// pruned.
func (r *RateState) Forget(players map[world.PlayerId]bool, projectiles map[world.EntityId]bool) {
	for id := range r.players {
		if !players[id] {
			delete(r.players, id)
		}
	}
	for id := range r.projectiles {
		if !projectiles[id] {
			delete(r.projectiles, id)
		}
	}
}

func shouldEncode(seen bool, last, tick world.Tick, distance float64, cfg config.DeltaConfig) bool {
	if !seen {
		return true
	}
	gap := tick - last
	if gap >= world.Tick(cfg.MaxRateLimitGap) {
		return true
	}
	if distance <= cfg.NearDistance {
		return true
	}
	if distance >= cfg.FarDistance {
		// Far entities are only reconsidered once every MaxRateLimitGap
		// ticks; closer-than-far-but-not-near entities scale linearly
		// between the two bounds below.
		return false
	}
	span := cfg.FarDistance - cfg.NearDistance
	frac := (distance - cfg.NearDistance) / span
	allowedGap := world.Tick(1 + frac*float64(cfg.MaxRateLimitGap-1))
	return gap >= allowedGap
}

// Package delta encodes the difference between a session's last
// acknowledged AOI snapshot and the current one, so the transport
// collaborator can ship small per-tick updates instead of a full
// snapshot every time. Everything here is pure data transformation: no
// network I/O, no session bookkeeping beyond the baseline history this
// package owns.
package delta

import (
	"math"

	"github.com/hknc0/orbit-core/internal/aoi"
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// FieldMask bits record which epsilon-gated fields changed enough to be
// worth sending, so the wire encoder can omit the rest.
type FieldMask uint8

const (
	FieldPos FieldMask = 1 << iota
	FieldVel
	FieldRotation
	FieldMass
)

// PlayerDelta carries only the fields of a player that changed more
// than the configured epsilon since the baseline, plus the discrete
// fields (alive/kills/deaths/spawn protection) which always ride along
// since they're cheap and rarely change.
type PlayerDelta struct {
	ID              world.PlayerId
	Changed         FieldMask
	Pos             vecmath.Vec2
	Vel             vecmath.Vec2
	Rotation        float64
	Mass            float64
	Alive           bool
	Kills           int
	Deaths          int
	SpawnProtection float64
}

// HasPos reports whether Pos changed enough to be included.
func (d PlayerDelta) HasPos() bool { return d.Changed&FieldPos != 0 }

// HasVel reports whether Vel changed enough to be included.
func (d PlayerDelta) HasVel() bool { return d.Changed&FieldVel != 0 }

// HasRotation reports whether Rotation changed enough to be included.
func (d PlayerDelta) HasRotation() bool { return d.Changed&FieldRotation != 0 }

// HasMass reports whether Mass changed enough to be included.
func (d PlayerDelta) HasMass() bool { return d.Changed&FieldMass != 0 }

// ProjectileDelta mirrors PlayerDelta's epsilon gating for a projectile,
// whose only continuously-varying fields are position and velocity.
type ProjectileDelta struct {
	ID      world.EntityId
	Owner   world.PlayerId
	Changed FieldMask
	Pos     vecmath.Vec2
	Vel     vecmath.Vec2
}

// HasPos reports whether Pos changed enough to be included.
func (d ProjectileDelta) HasPos() bool { return d.Changed&FieldPos != 0 }

// HasVel reports whether Vel changed enough to be included.
func (d ProjectileDelta) HasVel() bool { return d.Changed&FieldVel != 0 }

// Update is the wire-level delta message for one session's tick. Full
// is set when the session had no usable baseline and every field of
// every entity is therefore present, equivalent in content to sending
// aoi.Snapshot directly but still shaped as an Update so the transport
// layer has one outgoing message type to serialize.
type Update struct {
	Tick               world.Tick
	BaseTick           world.Tick
	Full               bool
	PlayerUpdates      []PlayerDelta
	ProjectileUpdates  []ProjectileDelta
	RemovedProjectiles []world.EntityId
	Debris             []aoi.DebrisView // always sent in full
}

// BuildUpdate resolves a session's baseline from history (falling back
// to a full-content encode when there isn't one), runs Encode, and
// records current into history as a new candidate baseline for a
// future ack. center is the point AOI radius and rate limiting are
// both measured from, normally the session's own player position.
func BuildUpdate(cfg config.DeltaConfig, hist *History, rate *RateState, ackedTick world.Tick, hasAck bool, current aoi.Snapshot, center vecmath.Vec2) Update {
	baseline, ok := hist.Baseline(ackedTick, hasAck)
	u := Encode(cfg, baseline, current, rate, center)
	u.Full = !ok
	hist.Add(current)
	return u
}

// Encode compares current against baseline field-by-field with the
// configured epsilons and returns the resulting Update. rate, if
// non-nil, is consulted so entities far from center are only
// re-examined on their rate-limited cadence (they are still included at
// least every MaxRateLimitGap ticks regardless of distance, preventing
// drift). Wells are never delta-encoded: the small, high-importance set
// is cheap enough to always ship in full, via the always-current
// snapshot each session already receives alongside the delta.
func Encode(cfg config.DeltaConfig, baseline, current aoi.Snapshot, rate *RateState, center vecmath.Vec2) Update {
	u := Update{Tick: current.Tick, BaseTick: baseline.Tick}

	basePlayers := make(map[world.PlayerId]aoi.PlayerView, len(baseline.Players))
	for _, p := range baseline.Players {
		basePlayers[p.ID] = p
	}

	for _, cur := range current.Players {
		if rate != nil && !rate.ShouldEncodePlayer(cur.ID, cur.Pos, center, current.Tick, cfg) {
			continue
		}
		prev, ok := basePlayers[cur.ID]
		if !ok {
			u.PlayerUpdates = append(u.PlayerUpdates, fullPlayerDelta(cur))
			continue
		}
		if pd, changed := diffPlayer(cfg, prev, cur); changed {
			u.PlayerUpdates = append(u.PlayerUpdates, pd)
		}
	}

	baseProjectiles := make(map[world.EntityId]aoi.ProjectileView, len(baseline.Projectiles))
	for _, pr := range baseline.Projectiles {
		baseProjectiles[pr.ID] = pr
	}
	seen := make(map[world.EntityId]bool, len(current.Projectiles))
	for _, cur := range current.Projectiles {
		seen[cur.ID] = true
		if rate != nil && !rate.ShouldEncodeProjectile(cur.ID, cur.Pos, center, current.Tick, cfg) {
			continue
		}
		prev, ok := baseProjectiles[cur.ID]
		if !ok {
			u.ProjectileUpdates = append(u.ProjectileUpdates, fullProjectileDelta(cur))
			continue
		}
		if pd, changed := diffProjectile(cfg, prev, cur); changed {
			u.ProjectileUpdates = append(u.ProjectileUpdates, pd)
		}
	}
	for id := range baseProjectiles {
		if !seen[id] {
			u.RemovedProjectiles = append(u.RemovedProjectiles, id)
		}
	}

	u.Debris = current.Debris

	return u
}

func fullPlayerDelta(cur aoi.PlayerView) PlayerDelta {
	return PlayerDelta{
		ID:              cur.ID,
		Changed:         FieldPos | FieldVel | FieldRotation | FieldMass,
		Pos:             cur.Pos,
		Vel:             cur.Vel,
		Rotation:        cur.Rotation,
		Mass:            cur.Mass,
		Alive:           cur.Alive,
		Kills:           cur.Kills,
		Deaths:          cur.Deaths,
		SpawnProtection: cur.SpawnProtection,
	}
}

func diffPlayer(cfg config.DeltaConfig, prev, cur aoi.PlayerView) (PlayerDelta, bool) {
	d := PlayerDelta{
		ID:              cur.ID,
		Alive:           cur.Alive,
		Kills:           cur.Kills,
		Deaths:          cur.Deaths,
		SpawnProtection: cur.SpawnProtection,
	}
	var mask FieldMask

	if prev.Pos.Distance(cur.Pos) > cfg.PositionEpsilon {
		mask |= FieldPos
		d.Pos = cur.Pos
	}
	if prev.Vel.Distance(cur.Vel) > cfg.VelocityEpsilon {
		mask |= FieldVel
		d.Vel = cur.Vel
	}
	if math.Abs(angleDiff(prev.Rotation, cur.Rotation)) > cfg.RotationEpsilon {
		mask |= FieldRotation
		d.Rotation = cur.Rotation
	}
	if math.Abs(prev.Mass-cur.Mass) > cfg.MassEpsilon {
		mask |= FieldMass
		d.Mass = cur.Mass
	}

	d.Changed = mask

	discreteChanged := prev.Alive != cur.Alive || prev.Kills != cur.Kills ||
		prev.Deaths != cur.Deaths || prev.SpawnProtection != cur.SpawnProtection
	return d, mask != 0 || discreteChanged
}

func fullProjectileDelta(cur aoi.ProjectileView) ProjectileDelta {
	return ProjectileDelta{ID: cur.ID, Owner: cur.Owner, Changed: FieldPos | FieldVel, Pos: cur.Pos, Vel: cur.Vel}
}

func diffProjectile(cfg config.DeltaConfig, prev, cur aoi.ProjectileView) (ProjectileDelta, bool) {
	d := ProjectileDelta{ID: cur.ID, Owner: cur.Owner}
	var mask FieldMask

	if prev.Pos.Distance(cur.Pos) > cfg.PositionEpsilon {
		mask |= FieldPos
		d.Pos = cur.Pos
	}
	if prev.Vel.Distance(cur.Vel) > cfg.VelocityEpsilon {
		mask |= FieldVel
		d.Vel = cur.Vel
	}
	d.Changed = mask
	return d, mask != 0
}

// angleDiff returns the shortest signed difference between two angles
// in radians, so a wraparound near +-pi doesn't register as a huge
// rotation change.
func angleDiff(a, b float64) float64 {
	d := math.Mod(b-a+math.Pi, 2*math.Pi) - math.Pi
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

package delta

import (
	"testing"

	"github.com/hknc0/orbit-core/internal/aoi"
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

func playerSnapshot(id world.PlayerId, tick world.Tick, pos vecmath.Vec2) aoi.Snapshot {
	return aoi.Snapshot{
		Tick: tick,
		Players: []aoi.PlayerView{
			{ID: id, Pos: pos, Vel: vecmath.Zero, Alive: true},
		},
	}
}

// TestEncodeOmitsSubEpsilonPositionChange matches the documented delta
// scenario: a baseline position (100, 100) moving to (100.3, 100) is
// below the 0.5-unit position epsilon and must not appear in the delta.
func TestEncodeOmitsSubEpsilonPositionChange(t *testing.T) {
	cfg := config.DefaultDelta()
	id := world.NewPlayerId()

	base := playerSnapshot(id, 10, vecmath.Vec2{X: 100, Y: 100})
	cur := playerSnapshot(id, 11, vecmath.Vec2{X: 100.3, Y: 100})

	u := Encode(cfg, base, cur, nil, vecmath.Zero)
	if len(u.PlayerUpdates) != 0 {
		t.Fatalf("sub-epsilon position change should be omitted, got %+v", u.PlayerUpdates)
	}
}

func TestEncodeIncludesAboveEpsilonPositionChange(t *testing.T) {
	cfg := config.DefaultDelta()
	id := world.NewPlayerId()

	base := playerSnapshot(id, 10, vecmath.Vec2{X: 100, Y: 100})
	cur := playerSnapshot(id, 11, vecmath.Vec2{X: 101, Y: 100})

	u := Encode(cfg, base, cur, nil, vecmath.Zero)
	if len(u.PlayerUpdates) != 1 {
		t.Fatalf("above-epsilon position change should be included, got %d updates", len(u.PlayerUpdates))
	}
	if !u.PlayerUpdates[0].HasPos() {
		t.Error("PlayerDelta should report HasPos() true")
	}
	if u.PlayerUpdates[0].HasVel() {
		t.Error("velocity did not change, HasVel() should be false")
	}
}

func TestEncodeNewPlayerIsFullyPopulated(t *testing.T) {
	cfg := config.DefaultDelta()
	id := world.NewPlayerId()

	base := aoi.Snapshot{Tick: 10}
	cur := playerSnapshot(id, 11, vecmath.Vec2{X: 5, Y: 5})

	u := Encode(cfg, base, cur, nil, vecmath.Zero)
	if len(u.PlayerUpdates) != 1 {
		t.Fatalf("new player should appear in the delta, got %d updates", len(u.PlayerUpdates))
	}
	d := u.PlayerUpdates[0]
	if !d.HasPos() || !d.HasVel() || !d.HasRotation() || !d.HasMass() {
		t.Errorf("a newly-seen player should carry every field, got mask %v", d.Changed)
	}
}

func TestEncodeRemovedProjectileIsListed(t *testing.T) {
	cfg := config.DefaultDelta()
	base := aoi.Snapshot{
		Tick:        10,
		Projectiles: []aoi.ProjectileView{{ID: 42, Pos: vecmath.Vec2{X: 1}}},
	}
	cur := aoi.Snapshot{Tick: 11}

	u := Encode(cfg, base, cur, nil, vecmath.Zero)
	if len(u.RemovedProjectiles) != 1 || u.RemovedProjectiles[0] != 42 {
		t.Fatalf("expected projectile 42 in RemovedProjectiles, got %v", u.RemovedProjectiles)
	}
}

func TestEncodeDebrisAlwaysFull(t *testing.T) {
	cfg := config.DefaultDelta()
	base := aoi.Snapshot{Tick: 10}
	cur := aoi.Snapshot{
		Tick:   11,
		Debris: []aoi.DebrisView{{ID: 1}, {ID: 2}},
	}
	u := Encode(cfg, base, cur, nil, vecmath.Zero)
	if len(u.Debris) != 2 {
		t.Fatalf("debris list should always be sent in full, got %d entries", len(u.Debris))
	}
}

func TestEncodeDiscreteFieldChangeAlwaysIncluded(t *testing.T) {
	cfg := config.DefaultDelta()
	id := world.NewPlayerId()

	base := playerSnapshot(id, 10, vecmath.Vec2{X: 0, Y: 0})
	cur := playerSnapshot(id, 11, vecmath.Vec2{X: 0, Y: 0})
	cur.Players[0].Kills = 1

	u := Encode(cfg, base, cur, nil, vecmath.Zero)
	if len(u.PlayerUpdates) != 1 {
		t.Fatalf("a kill-count change with no position movement should still produce an update")
	}
	if u.PlayerUpdates[0].HasPos() {
		t.Error("position did not move, HasPos() should stay false even though the entity was included")
	}
}

func TestHistoryPrunesOldEntries(t *testing.T) {
	cfg := config.DefaultDelta()
	cfg.MaxBaselineAge = 5
	h := NewHistory(cfg)

	for tick := world.Tick(0); tick <= 20; tick++ {
		h.Add(aoi.Snapshot{Tick: tick})
	}
	if _, ok := h.Lookup(0); ok {
		t.Error("tick 0 should have been pruned by tick 20 with MaxBaselineAge=5")
	}
	if _, ok := h.Lookup(20); !ok {
		t.Error("the most recent tick should still be retained")
	}
}

func TestBuildUpdateFallsBackToFullWithNoAck(t *testing.T) {
	cfg := config.DefaultDelta()
	h := NewHistory(cfg)
	id := world.NewPlayerId()
	cur := playerSnapshot(id, 1, vecmath.Vec2{X: 10})

	u := BuildUpdate(cfg, h, nil, 0, false, cur, vecmath.Zero)
	if !u.Full {
		t.Error("with no ack, BuildUpdate should mark the result Full")
	}
	if len(u.PlayerUpdates) != 1 {
		t.Fatalf("fallback full update should include the player, got %d", len(u.PlayerUpdates))
	}
}

func TestBuildUpdateUsesAckedBaseline(t *testing.T) {
	cfg := config.DefaultDelta()
	h := NewHistory(cfg)
	id := world.NewPlayerId()

	first := playerSnapshot(id, 1, vecmath.Vec2{X: 10, Y: 0})
	_ = BuildUpdate(cfg, h, nil, 0, false, first, vecmath.Zero)

	second := playerSnapshot(id, 2, vecmath.Vec2{X: 10.1, Y: 0})
	u := BuildUpdate(cfg, h, nil, 1, true, second, vecmath.Zero)

	if u.Full {
		t.Error("with a valid acked baseline, BuildUpdate should not fall back to full")
	}
	if len(u.PlayerUpdates) != 0 {
		t.Errorf("sub-epsilon movement against the acked baseline should produce no update, got %+v", u.PlayerUpdates)
	}
}

func TestRateStateSkipsFarEntityBetweenAllowedTicks(t *testing.T) {
	cfg := config.DefaultDelta()
	r := NewRateState()
	id := world.NewPlayerId()
	far := vecmath.Vec2{X: cfg.FarDistance + 100}

	if !r.ShouldEncodePlayer(id, far, vecmath.Zero, 0, cfg) {
		t.Fatal("first observation of an entity should always be encoded")
	}
	if r.ShouldEncodePlayer(id, far, vecmath.Zero, 1, cfg) {
		t.Error("a far entity should not be re-encoded on the very next tick")
	}
}

func TestRateStateForcesEncodeAtMaxGap(t *testing.T) {
	cfg := config.DefaultDelta()
	r := NewRateState()
	id := world.NewPlayerId()
	far := vecmath.Vec2{X: cfg.FarDistance + 100}

	r.ShouldEncodePlayer(id, far, vecmath.Zero, 0, cfg)
	gapTick := world.Tick(cfg.MaxRateLimitGap)
	if !r.ShouldEncodePlayer(id, far, vecmath.Zero, gapTick, cfg) {
		t.Error("a far entity must be re-encoded after MaxRateLimitGap ticks regardless of distance")
	}
}

func TestRateStateAlwaysEncodesNearEntity(t *testing.T) {
	cfg := config.DefaultDelta()
	r := NewRateState()
	id := world.NewPlayerId()
	near := vecmath.Vec2{X: cfg.NearDistance - 1}

	r.ShouldEncodePlayer(id, near, vecmath.Zero, 0, cfg)
	if !r.ShouldEncodePlayer(id, near, vecmath.Zero, 1, cfg) {
		t.Error("a near entity should be encoded every tick")
	}
}

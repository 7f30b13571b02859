package delta

import (
	"github.com/hknc0/orbit-core/internal/aoi"
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/world"
)

// History holds a bounded run of snapshots sent to one session, keyed
// by tick, so a later acknowledgment can be turned back into a
// baseline for the next delta. Entries older than the configured
// MaxBaselineAge are dropped on each Add, keeping memory bounded
// without a background sweep.
type History struct {
	cfg     config.DeltaConfig
	entries map[world.Tick]aoi.Snapshot
	order   []world.Tick // ascending insertion order, for pruning
}

// NewHistory returns an empty history for one session.
func NewHistory(cfg config.DeltaConfig) *History {
	return &History{cfg: cfg, entries: make(map[world.Tick]aoi.Snapshot)}
}

// Add records snap as a candidate future baseline and prunes anything
// too old relative to snap.Tick to ever be acknowledged.
func (h *History) Add(snap aoi.Snapshot) {
	h.entries[snap.Tick] = snap
	h.order = append(h.order, snap.Tick)

	cutoff := world.Tick(0)
	if snap.Tick > world.Tick(h.cfg.MaxBaselineAge) {
		cutoff = snap.Tick - world.Tick(h.cfg.MaxBaselineAge)
	}
	i := 0
	for ; i < len(h.order) && h.order[i] < cutoff; i++ {
		delete(h.entries, h.order[i])
	}
	h.order = h.order[i:]
}

// Lookup returns the snapshot sent at tick, if it is still retained.
func (h *History) Lookup(tick world.Tick) (aoi.Snapshot, bool) {
	snap, ok := h.entries[tick]
	return snap, ok
}

// Empty is the zero-value snapshot used as a baseline when a session
// has never received one: every player and projectile then diffs as
// newly-seen, which is equivalent to a full snapshot.
var Empty = aoi.Snapshot{}

// Baseline resolves the snapshot to diff current against: the session's
// acknowledged tick if it's still in history, or Empty (forcing a
// full-content delta) if the client has no usable baseline yet or its
// ack has aged out.
func (h *History) Baseline(ackedTick world.Tick, hasAck bool) (aoi.Snapshot, bool) {
	if !hasAck {
		return Empty, false
	}
	snap, ok := h.Lookup(ackedTick)
	if !ok {
		return Empty, false
	}
	return snap, true
}

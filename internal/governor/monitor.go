// Package governor tracks recent tick durations and turns them into the
// admission, respawn and LOD-adaptation signals the rest of the core
// consults every tick: a struggling server should stop accepting joins
// before it stops respawning bots, and only forcibly shed entities once
// both of those have failed to recover it.
package governor

import (
	"math"
	"sort"
	"time"

	"github.com/hknc0/orbit-core/internal/config"
)

// Status is one of five performance bands, determined by the ratio of
// average tick duration to the configured target.
type Status uint8

const (
	Excellent Status = iota
	Good
	Warning
	Critical
	Catastrophic
)

func (s Status) String() string {
	switch s {
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	case Catastrophic:
		return "catastrophic"
	default:
		return "unknown"
	}
}

// CanAcceptPlayers reports whether admission control should accept new
// joins at this status.
func (s Status) CanAcceptPlayers() bool { return s == Excellent || s == Good }

// CanRespawnBots reports whether dead bots should be allowed to respawn.
func (s Status) CanRespawnBots() bool { return s == Excellent || s == Good || s == Warning }

// ShouldForceReduce reports whether the arena system should forcibly cut
// entity counts (well count, bot count) regardless of natural attrition.
func (s Status) ShouldForceReduce() bool { return s == Catastrophic }

// Monitor tracks the last SampleWindow tick durations in a fixed-size
// ring buffer (never a growing slice, so memory use is bounded
// regardless of server uptime) and derives a Status from their average.
type Monitor struct {
	cfg    config.GovernorConfig
	target time.Duration

	samples []time.Duration // len == cfg.SampleWindow once warmed up
	head    int
	count   int

	status          Status
	lastEntityCount int
	lodScale        float64 // EMA-smoothed LOD radius/interval scale factor
	tickStart       time.Time
	tickStartValid  bool
}

// New builds a monitor for the given tick rate and governor tuning.
func New(cfg config.GovernorConfig, tickRate int) *Monitor {
	if tickRate <= 0 {
		tickRate = 30
	}
	window := cfg.SampleWindow
	if window <= 0 {
		window = 120
	}
	return &Monitor{
		cfg:      cfg,
		target:   time.Duration(float64(time.Second) / float64(tickRate)),
		samples:  make([]time.Duration, window),
		status:   Excellent,
		lodScale: 1.0,
	}
}

// TickStart marks the beginning of a tick for wall-clock measurement.
func (m *Monitor) TickStart() {
	m.tickStart = time.Now()
	m.tickStartValid = true
}

// TickEnd records the elapsed time since the matching TickStart and
// updates status. entityCount is the total live entity count this tick,
// retained for the budget estimator.
func (m *Monitor) TickEnd(entityCount int) {
	if !m.tickStartValid {
		return
	}
	m.Record(time.Since(m.tickStart))
	m.lastEntityCount = entityCount
	m.tickStartValid = false
}

// Record appends a tick duration directly, for callers (tests, replays)
// that already have a duration rather than wall-clock timestamps.
func (m *Monitor) Record(d time.Duration) {
	m.samples[m.head] = d
	m.head = (m.head + 1) % len(m.samples)
	if m.count < len(m.samples) {
		m.count++
	}
	m.updateStatus()
}

func (m *Monitor) live() []time.Duration {
	return m.samples[:m.count]
}

// Average returns the mean of the current sample window.
func (m *Monitor) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range m.live() {
		sum += d
	}
	return sum / time.Duration(m.count)
}

// P95 returns the 95th percentile tick duration in the current window.
func (m *Monitor) P95() time.Duration { return m.percentile(0.95) }

// P99 returns the 99th percentile tick duration in the current window.
func (m *Monitor) P99() time.Duration { return m.percentile(0.99) }

func (m *Monitor) percentile(p float64) time.Duration {
	if m.count == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), m.live()...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Current returns the most recently recorded tick duration, or 0 if
// none has been recorded yet.
func (m *Monitor) Current() time.Duration {
	if m.count == 0 {
		return 0
	}
	idx := (m.head - 1 + len(m.samples)) % len(m.samples)
	return m.samples[idx]
}

// Max returns the largest tick duration in the current window.
func (m *Monitor) Max() time.Duration {
	var max time.Duration
	for _, d := range m.live() {
		if d > max {
			max = d
		}
	}
	return max
}

func (m *Monitor) updateStatus() {
	if m.count < m.cfg.MinSamplesBeforeStatus {
		return
	}
	ratio := m.Average().Seconds() / m.target.Seconds()
	switch {
	case ratio < m.cfg.ExcellentRatio:
		m.status = Excellent
	case ratio < m.cfg.WarningRatio:
		m.status = Good
	case ratio < m.cfg.CriticalRatio:
		m.status = Warning
	case ratio < m.cfg.CatastrophicRatio:
		m.status = Critical
	default:
		m.status = Catastrophic
	}
}

// Status returns the current performance status.
func (m *Monitor) Status() Status { return m.status }

// BudgetUsage returns average tick duration as a fraction of target
// (1.0 == exactly on budget).
func (m *Monitor) BudgetUsage() float64 {
	if m.target <= 0 {
		return 0
	}
	return m.Average().Seconds() / m.target.Seconds()
}

// LastEntityCount returns the entity count recorded at the last TickEnd.
func (m *Monitor) LastEntityCount() int { return m.lastEntityCount }

// EntityBudget suggests a cap on entity count given the current count
// and budget usage: comfortable headroom (under half the budget) means
// no limit, tight headroom caps the count at current/budgetUsage rounded
// up (the count that would fill the budget exactly, so above current),
// and an already-over-budget server is told to shed a quarter of its
// entities.
func EntityBudget(current int, budgetUsage float64) (max int, limited bool) {
	if budgetUsage <= 0 {
		return 0, false
	}
	if budgetUsage < 0.5 {
		return 0, false
	}
	if budgetUsage >= 1.0 {
		return int(float64(current) * 0.75), true
	}
	return int(math.Ceil(float64(current) / budgetUsage)), true
}

// EntityBudget is the instance method form, using this monitor's current
// budget usage and last recorded entity count.
func (m *Monitor) EntityBudget() (max int, limited bool) {
	if m.count < m.cfg.MinSamplesBeforeStatus {
		return 0, false
	}
	return EntityBudget(m.lastEntityCount, m.BudgetUsage())
}

// AdaptLOD nudges lod's Full/Reduced radii and update intervals toward a
// more conservative setting while the server is Catastrophic, and back
// toward the configured baseline otherwise, using an exponential moving
// average (AdaptationRate) so the scale doesn't oscillate tick to tick.
func (m *Monitor) AdaptLOD(lod *config.LODConfig, baseline config.LODConfig) {
	if !lod.AdaptiveDormancy {
		return
	}

	target := 1.0
	if m.status == Catastrophic {
		target = lod.MinLODScale
	}

	m.lodScale += (target - m.lodScale) * lod.AdaptationRate
	if m.lodScale < lod.MinLODScale {
		m.lodScale = lod.MinLODScale
	}
	if m.lodScale > lod.MaxLODScale {
		m.lodScale = lod.MaxLODScale
	}

	lod.FullRadius = baseline.FullRadius * m.lodScale
	lod.ReducedRadius = baseline.ReducedRadius * m.lodScale
	lod.ReducedUpdateInterval = scaleInterval(baseline.ReducedUpdateInterval, m.lodScale)
	lod.DormantUpdateInterval = scaleInterval(baseline.DormantUpdateInterval, m.lodScale)
}

// scaleInterval lengthens an update interval as scale shrinks below 1,
// so a degraded server updates Reduced/Dormant-tier bots less often.
func scaleInterval(base int, scale float64) int {
	if scale <= 0 {
		return base
	}
	n := int(math.Round(float64(base) / scale))
	if n < base {
		return base
	}
	return n
}

// LODScale returns the current EMA-smoothed LOD scale factor, exposed
// for metrics.
func (m *Monitor) LODScale() float64 { return m.lodScale }

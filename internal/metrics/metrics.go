// Package metrics exposes the simulation's health as Prometheus
// collectors (bounded cardinality, no per-player labels) and a JSON
// snapshot view for ad-hoc inspection.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/hknc0/orbit-core/internal/governor"
	"github.com/hknc0/orbit-core/internal/world"
)

var (
	playersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_players_total",
		Help: "Current number of connected players (humans and bots).",
	})
	botsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_bots_total",
		Help: "Current number of bot-controlled players.",
	})
	playersAlive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_players_alive",
		Help: "Current number of alive players.",
	})
	projectilesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_projectiles_total",
		Help: "Current number of live projectiles.",
	})
	debrisTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_debris_total",
		Help: "Current number of live debris chunks.",
	})
	wellsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_wells_total",
		Help: "Current number of gravity wells.",
	})

	tickDurationCurrent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_tick_duration_seconds",
		Help: "Most recently recorded tick duration.",
	})
	tickDurationP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_tick_duration_p95_seconds",
		Help: "95th percentile tick duration over the current sample window.",
	})
	tickDurationP99 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_tick_duration_p99_seconds",
		Help: "99th percentile tick duration over the current sample window.",
	})
	tickDurationMax = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_tick_duration_max_seconds",
		Help: "Largest tick duration over the current sample window.",
	})
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orbit_ticks_total",
		Help: "Total simulation ticks run since process start.",
	})

	performanceStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_performance_status",
		Help: "Current governor status as an ordinal (0=excellent .. 4=catastrophic).",
	})
	performanceBudgetPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_performance_budget_percent",
		Help: "Average tick duration as a percentage of the tick budget.",
	})

	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_connections_active",
		Help: "Currently active client connections.",
	})
	bytesIn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orbit_bytes_in_total",
		Help: "Total bytes received from clients.",
	})
	bytesOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orbit_bytes_out_total",
		Help: "Total bytes sent to clients.",
	})
	messagesIn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orbit_messages_in_total",
		Help: "Total messages received from clients.",
	})
	messagesOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orbit_messages_out_total",
		Help: "Total messages sent to clients.",
	})

	matchTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_match_elapsed_seconds",
		Help: "Elapsed time in the current match phase.",
	})
	arenaScale = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_arena_scale",
		Help: "Current arena scale factor, a function of alive human count.",
	})
	arenaOuterRadius = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_arena_outer_radius",
		Help: "Current arena outer radius.",
	})

	uptimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_uptime_seconds",
		Help: "Seconds since process start.",
	})
)

// RecordBytesIn/Out and RecordMessageIn/Out are called from the
// transport layer as traffic flows; they're counters, so they only
// ever increase.
func RecordBytesIn(n int)  { bytesIn.Add(float64(n)) }
func RecordBytesOut(n int) { bytesOut.Add(float64(n)) }
func RecordMessageIn()     { messagesIn.Inc() }
func RecordMessageOut()    { messagesOut.Inc() }

// SetConnectionsActive reports the current connection count.
func SetConnectionsActive(n int) { connectionsActive.Set(float64(n)) }

// Snapshot is the JSON-friendly view of every metric this package
// tracks, built on demand rather than held live.
type Snapshot struct {
	PlayersTotal     int     `json:"players_total"`
	BotsTotal        int     `json:"bots_total"`
	PlayersAlive     int     `json:"players_alive"`
	ProjectilesTotal int     `json:"projectiles_total"`
	DebrisTotal      int     `json:"debris_total"`
	WellsTotal       int     `json:"wells_total"`

	TickDurationSeconds    float64 `json:"tick_duration_seconds"`
	TickDurationP95Seconds float64 `json:"tick_duration_p95_seconds"`
	TickDurationP99Seconds float64 `json:"tick_duration_p99_seconds"`
	TickDurationMaxSeconds float64 `json:"tick_duration_max_seconds"`
	TicksTotal             int64   `json:"ticks_total"`

	PerformanceStatus        string  `json:"performance_status"`
	PerformanceBudgetPercent float64 `json:"performance_budget_percent"`

	ConnectionsActive int     `json:"connections_active"`
	BytesIn           float64 `json:"bytes_in_total"`
	BytesOut          float64 `json:"bytes_out_total"`
	MessagesIn        float64 `json:"messages_in_total"`
	MessagesOut       float64 `json:"messages_out_total"`

	MatchElapsedSeconds float64 `json:"match_elapsed_seconds"`
	ArenaScale          float64 `json:"arena_scale"`
	ArenaOuterRadius    float64 `json:"arena_outer_radius"`

	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Sample reads the world and governor under the caller's own
// synchronization (the caller is expected to use Scheduler.WithWorld),
// updates every Prometheus collector, and returns the same data as a
// Snapshot for a JSON endpoint. tickCount and startedAt are threaded in
// separately since neither the world nor the governor tracks them.
func Sample(w *world.World, mon *governor.Monitor, connections int, tickCount int64, startedAt time.Time) Snapshot {
	alive := 0
	bots := 0
	for _, p := range w.Players {
		if p.Alive {
			alive++
		}
		if p.IsBot {
			bots++
		}
	}

	playersTotal.Set(float64(len(w.Players)))
	botsTotal.Set(float64(bots))
	playersAlive.Set(float64(alive))
	projectilesTotal.Set(float64(len(w.Projectiles)))
	debrisTotal.Set(float64(len(w.Debris)))
	wellsTotal.Set(float64(len(w.Arena.Wells)))

	tickDurationCurrent.Set(mon.Current().Seconds())
	tickDurationP95.Set(mon.P95().Seconds())
	tickDurationP99.Set(mon.P99().Seconds())
	tickDurationMax.Set(mon.Max().Seconds())

	performanceStatus.Set(float64(mon.Status()))
	budgetPercent := mon.BudgetUsage() * 100
	performanceBudgetPercent.Set(budgetPercent)

	connectionsActive.Set(float64(connections))

	matchTime.Set(w.Match.Elapsed)
	arenaScale.Set(w.Arena.Scale)
	arenaOuterRadius.Set(w.Arena.OuterRadius)

	uptime := time.Since(startedAt).Seconds()
	uptimeSeconds.Set(uptime)

	return Snapshot{
		PlayersTotal:     len(w.Players),
		BotsTotal:        bots,
		PlayersAlive:     alive,
		ProjectilesTotal: len(w.Projectiles),
		DebrisTotal:      len(w.Debris),
		WellsTotal:       len(w.Arena.Wells),

		TickDurationSeconds:    mon.Current().Seconds(),
		TickDurationP95Seconds: mon.P95().Seconds(),
		TickDurationP99Seconds: mon.P99().Seconds(),
		TickDurationMaxSeconds: mon.Max().Seconds(),
		TicksTotal:             tickCount,

		PerformanceStatus:        mon.Status().String(),
		PerformanceBudgetPercent: budgetPercent,

		ConnectionsActive: connections,
		BytesIn:           readCounter(bytesIn),
		BytesOut:          readCounter(bytesOut),
		MessagesIn:        readCounter(messagesIn),
		MessagesOut:       readCounter(messagesOut),

		MatchElapsedSeconds: w.Match.Elapsed,
		ArenaScale:          w.Arena.Scale,
		ArenaOuterRadius:    w.Arena.OuterRadius,

		UptimeSeconds: uptime,
	}
}

// IncTick increments the tick counter; called once per completed tick
// by the scheduler, separately from Sample since Sample may run on a
// slower cadence (e.g. once per metrics scrape) than ticks occur.
func IncTick() { ticksTotal.Inc() }

func readCounter(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

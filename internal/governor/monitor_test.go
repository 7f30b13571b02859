package governor

import (
	"testing"
	"time"

	"github.com/hknc0/orbit-core/internal/config"
)

func fillStatus(t *testing.T, m *Monitor, d time.Duration) Status {
	t.Helper()
	for i := 0; i < 20; i++ {
		m.Record(d)
	}
	return m.Status()
}

func TestStatusLevelsFollowRatioThresholds(t *testing.T) {
	// target tick duration at 60Hz is ~16.67ms, matching the ratios this
	// table exercises.
	cases := []struct {
		name string
		dur  time.Duration
		want Status
	}{
		{"excellent", 2 * time.Millisecond, Excellent},
		{"good", 8 * time.Millisecond, Good},
		{"warning", 13 * time.Millisecond, Warning},
		{"critical", 18 * time.Millisecond, Critical},
		{"catastrophic", 30 * time.Millisecond, Catastrophic},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := New(config.DefaultGovernor(), 60)
			if got := fillStatus(t, m, c.dur); got != c.want {
				t.Errorf("Status() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestStatusUnknownUntilMinSamples(t *testing.T) {
	m := New(config.DefaultGovernor(), 60)
	for i := 0; i < 5; i++ {
		m.Record(30 * time.Millisecond)
	}
	if got := m.Status(); got != Excellent {
		t.Errorf("Status() before MinSamplesBeforeStatus = %v, want the zero-value Excellent default", got)
	}
}

func TestAdmissionEffectsByStatus(t *testing.T) {
	if !Good.CanAcceptPlayers() || !Excellent.CanAcceptPlayers() {
		t.Error("Excellent and Good should accept players")
	}
	if Warning.CanAcceptPlayers() || Critical.CanAcceptPlayers() || Catastrophic.CanAcceptPlayers() {
		t.Error("Warning/Critical/Catastrophic should not accept players")
	}
	if !Warning.CanRespawnBots() {
		t.Error("Warning should still allow respawn")
	}
	if Critical.CanRespawnBots() || Catastrophic.CanRespawnBots() {
		t.Error("Critical/Catastrophic should not allow respawn")
	}
	if Critical.ShouldForceReduce() {
		t.Error("Critical should not force-reduce, only Catastrophic")
	}
	if !Catastrophic.ShouldForceReduce() {
		t.Error("Catastrophic should force-reduce")
	}
}

func TestRingBufferBoundedAtSampleWindow(t *testing.T) {
	cfg := config.DefaultGovernor()
	cfg.SampleWindow = 5
	m := New(cfg, 60)
	for i := 0; i < 100; i++ {
		m.Record(time.Millisecond)
	}
	if m.count != 5 {
		t.Errorf("count = %d, want 5 (ring buffer should not grow past SampleWindow)", m.count)
	}
}

func TestCurrentReturnsMostRecentSample(t *testing.T) {
	m := New(config.DefaultGovernor(), 60)
	m.Record(5 * time.Millisecond)
	m.Record(20 * time.Millisecond)
	if got := m.Current(); got != 20*time.Millisecond {
		t.Errorf("Current() = %v, want 20ms", got)
	}
}

func TestP99AtLeastP95(t *testing.T) {
	m := New(config.DefaultGovernor(), 60)
	for i := 1; i <= 100; i++ {
		m.Record(time.Duration(i) * time.Millisecond)
	}
	if m.P99() < m.P95() {
		t.Errorf("P99() = %v, want >= P95() = %v", m.P99(), m.P95())
	}
}

func TestEntityBudgetNoLimitUnderHalf(t *testing.T) {
	if max, limited := EntityBudget(100, 0.3); limited || max != 0 {
		t.Errorf("EntityBudget(100, 0.3) = (%d, %v), want no limit", max, limited)
	}
}

func TestEntityBudgetOverBudget(t *testing.T) {
	max, limited := EntityBudget(10, 1.2)
	if !limited {
		t.Fatal("EntityBudget over 1.0 usage should return a limit")
	}
	if max != 7 {
		t.Errorf("EntityBudget(10, 1.2) = %d, want 7 (floor(10*0.75))", max)
	}
}

func TestEntityBudgetMidRange(t *testing.T) {
	max, limited := EntityBudget(10, 0.8)
	if !limited {
		t.Fatal("EntityBudget between 0.5 and 1.0 usage should return a limit")
	}
	want := 13 // ceil(10 / 0.8) = ceil(12.5) = 13
	if max != want {
		t.Errorf("EntityBudget(10, 0.8) = %d, want %d", max, want)
	}
}

func TestAdaptLODShrinksRadiiUnderCatastrophic(t *testing.T) {
	baseline := config.DefaultLOD()
	lod := baseline
	m := New(config.DefaultGovernor(), 30)
	fillStatus(t, m, 60*time.Millisecond) // catastrophic at 30Hz (~33ms target)

	for i := 0; i < 50; i++ {
		m.AdaptLOD(&lod, baseline)
	}

	if lod.FullRadius >= baseline.FullRadius {
		t.Errorf("FullRadius = %v, want shrunk below baseline %v under sustained catastrophic load", lod.FullRadius, baseline.FullRadius)
	}
	if lod.ReducedUpdateInterval <= baseline.ReducedUpdateInterval {
		t.Errorf("ReducedUpdateInterval = %v, want lengthened beyond baseline %v", lod.ReducedUpdateInterval, baseline.ReducedUpdateInterval)
	}
}

func TestAdaptLODNoopWhenAdaptiveDormancyDisabled(t *testing.T) {
	baseline := config.DefaultLOD()
	baseline.AdaptiveDormancy = false
	lod := baseline
	m := New(config.DefaultGovernor(), 30)
	fillStatus(t, m, 60*time.Millisecond)

	m.AdaptLOD(&lod, baseline)
	if lod.FullRadius != baseline.FullRadius {
		t.Error("AdaptLOD should be a no-op when AdaptiveDormancy is disabled")
	}
}

package admission

import (
	"testing"
	"time"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/governor"
)

func degradedMonitor(t *testing.T) *governor.Monitor {
	t.Helper()
	m := governor.New(config.DefaultGovernor(), 60)
	for i := 0; i < 20; i++ {
		m.Record(30 * time.Millisecond)
	}
	return m
}

func healthyMonitor(t *testing.T) *governor.Monitor {
	t.Helper()
	m := governor.New(config.DefaultGovernor(), 60)
	for i := 0; i < 20; i++ {
		m.Record(2 * time.Millisecond)
	}
	return m
}

func TestCanAcceptPlayerRespectsCap(t *testing.T) {
	cfg := config.DefaultServer()
	cfg.MaxPlayers = 5
	c := New(cfg, healthyMonitor(t))

	if !c.CanAcceptPlayer(4) {
		t.Error("expected acceptance under cap")
	}
	if c.CanAcceptPlayer(5) {
		t.Error("expected rejection at cap")
	}
}

func TestCanAcceptPlayerRespectsGovernorStatus(t *testing.T) {
	cfg := config.DefaultServer()
	c := New(cfg, degradedMonitor(t))
	if c.CanAcceptPlayer(0) {
		t.Error("expected rejection while governor status is degraded")
	}
}

func TestCanAcceptSpectatorIgnoresGovernorStatus(t *testing.T) {
	cfg := config.DefaultServer()
	cfg.MaxSpectators = 3
	c := New(cfg, degradedMonitor(t))

	if !c.CanAcceptSpectator(2) {
		t.Error("spectators should be admitted even under a degraded governor status")
	}
	if c.CanAcceptSpectator(3) {
		t.Error("expected rejection at spectator cap regardless of governor status")
	}
}

func TestRejectionReasonCases(t *testing.T) {
	cfg := config.DefaultServer()
	cfg.MaxPlayers = 2
	cfg.MaxSpectators = 1

	cases := []struct {
		name            string
		monitor         *governor.Monitor
		players         int
		spectators      int
		wantsSpectator  bool
		wantEmptyReason bool
	}{
		{"player accepted", healthyMonitor(t), 0, 0, false, true},
		{"player cap full", healthyMonitor(t), 2, 0, false, false},
		{"player degraded governor", degradedMonitor(t), 0, 0, false, false},
		{"spectator accepted", degradedMonitor(t), 0, 0, true, true},
		{"spectator cap full", healthyMonitor(t), 0, 1, true, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctl := New(cfg, c.monitor)
			reason := ctl.RejectionReason(c.players, c.spectators, c.wantsSpectator)
			if c.wantEmptyReason && reason != "" {
				t.Errorf("RejectionReason() = %q, want empty", reason)
			}
			if !c.wantEmptyReason && reason == "" {
				t.Error("RejectionReason() = \"\", want non-empty")
			}
		})
	}
}

func TestCanRespawnBotFollowsGovernorStatus(t *testing.T) {
	cfg := config.DefaultServer()
	if !New(cfg, healthyMonitor(t)).CanRespawnBot() {
		t.Error("expected bot respawn permitted when healthy")
	}
	if New(cfg, degradedMonitor(t)).CanRespawnBot() {
		t.Error("expected bot respawn denied when catastrophic")
	}
}

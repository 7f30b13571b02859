package tick

import (
	"testing"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/delta"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// fakeSession is a minimal Session for exercising the delivery stage
// without a real network connection.
type fakeSession struct {
	id        world.PlayerId
	hasPlayer bool
	zoom      float64
	center    vecmath.Vec2
	ackTick   world.Tick
	hasAck    bool
	hist      *delta.History
	rate      *delta.RateState
	delivered []delta.Update
	events    [][]byte
}

func newFakeSession(cfg config.DeltaConfig) *fakeSession {
	return &fakeSession{zoom: 1.0, hist: delta.NewHistory(cfg), rate: delta.NewRateState()}
}

func (f *fakeSession) PlayerID() (world.PlayerId, bool) { return f.id, f.hasPlayer }
func (f *fakeSession) Zoom() float64                    { return f.zoom }
func (f *fakeSession) Center() vecmath.Vec2             { return f.center }
func (f *fakeSession) Ack() (world.Tick, bool)          { return f.ackTick, f.hasAck }
func (f *fakeSession) History() *delta.History          { return f.hist }
func (f *fakeSession) RateLimiter() *delta.RateState    { return f.rate }
func (f *fakeSession) Deliver(u delta.Update)           { f.delivered = append(f.delivered, u) }
func (f *fakeSession) DeliverEvent(frame []byte)        { f.events = append(f.events, frame) }

type fakeRegistry struct{ sessions []Session }

func (r *fakeRegistry) ForEach(fn func(Session)) {
	for _, s := range r.sessions {
		fn(s)
	}
}

func TestRunTickAdvancesWorldTick(t *testing.T) {
	s := New(config.Default(), nil, func(string, ...any) {})
	start := s.world.Tick
	s.runTick()
	s.runTick()
	if s.world.Tick != start+2 {
		t.Fatalf("world tick = %d, want %d", s.world.Tick, start+2)
	}
	if s.tickCount != 2 {
		t.Errorf("tickCount = %d, want 2", s.tickCount)
	}
}

func TestSubmitInputAppliesWithinTick(t *testing.T) {
	cfg := config.Default()
	s := New(cfg, nil, func(string, ...any) {})
	p := s.world.AddPlayer("alice", false)
	p.Spawn(vecmath.Zero, vecmath.Zero, cfg.Mass.Start, 0, 0)

	s.SubmitInput(p.ID, world.PlayerInput{Player: p.ID, Sequence: 1, Thrust: vecmath.Vec2{X: 1}})
	s.runTick()

	if p.Vel.X <= 0 {
		t.Errorf("expected positive X velocity after a forward-thrust input, got %+v", p.Vel)
	}
}

func TestDeliverSessionsCallsEachSession(t *testing.T) {
	cfg := config.Default()
	sess := newFakeSession(cfg.Delta)
	reg := &fakeRegistry{sessions: []Session{sess}}
	s := New(cfg, reg, func(string, ...any) {})

	s.runTick()

	if len(sess.delivered) != 1 {
		t.Fatalf("expected exactly one delivered update, got %d", len(sess.delivered))
	}
	if !sess.delivered[0].Full {
		t.Error("a session with no prior ack should receive a Full update on its first tick")
	}
}

func TestDeliverSessionsUsesAckedBaselineAcrossTicks(t *testing.T) {
	cfg := config.Default()
	sess := newFakeSession(cfg.Delta)
	reg := &fakeRegistry{sessions: []Session{sess}}
	s := New(cfg, reg, func(string, ...any) {})

	s.runTick()
	firstTick := sess.delivered[0].Tick
	sess.ackTick = firstTick
	sess.hasAck = true

	s.runTick()
	if sess.delivered[1].Full {
		t.Error("a session with a valid ack should not receive a Full fallback update")
	}
}

func TestBotEngineInputsFeedBackIntoQueue(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Count = 1
	cfg.LOD.DormancyEnabled = false // force TierFull so the bot runs every tick regardless of nearby humans
	s := New(cfg, nil, func(string, ...any) {})

	bot := s.world.AddPlayer("bot-1", true)
	bot.Spawn(vecmath.Vec2{X: 500}, vecmath.Zero, cfg.Mass.Start, 0, 0)
	s.bots.Register(bot.ID, bot.Pos, bot.Vel, bot.Mass)

	s.runTick()

	stats := s.InputQueueStats()
	if stats.Enqueued == 0 {
		t.Error("expected the bot engine's synthesized input to be enqueued for the next tick's drain")
	}
}

func TestBroadcastEventsReachesEverySession(t *testing.T) {
	cfg := config.Default()
	sess := newFakeSession(cfg.Delta)
	reg := &fakeRegistry{sessions: []Session{sess}}
	s := New(cfg, reg, func(string, ...any) {})

	s.world.AddPlayer("newcomer", false) // queues an EventPlayerJoined for the next drain

	s.runTick()

	if len(sess.events) != 1 {
		t.Fatalf("expected exactly one broadcast event frame, got %d", len(sess.events))
	}
}

func TestStartStopLifecycleIsIdempotent(t *testing.T) {
	s := New(config.Default(), nil, func(string, ...any) {})
	s.Start()
	s.Start() // second Start should be a no-op, not panic
	s.Stop()
}

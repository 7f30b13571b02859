// Package session tracks one connected client for the lifetime of its
// connection: which player (if any) it controls or is spectating, its
// reported viewport zoom, the last tick it acknowledged, and the
// per-session delta-encoding state that rides alongside. A Session
// implements tick.Session so the scheduler can drive it directly.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/delta"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/wire"
	"github.com/hknc0/orbit-core/internal/world"
)

// inboundRate and inboundBurst bound how many client messages per
// second one session may submit before OnMessage starts dropping them.
// A well-behaved client sends at most one input per simulation tick
// (30/s); the burst covers a client catching up after a brief stall.
const (
	inboundRate  = 60
	inboundBurst = 120
)

// Sender hands an already-framed outbound message to the transport.
// Send must not block; a full or closed connection should drop the
// message and report false rather than stall the tick goroutine that
// calls Deliver.
type Sender interface {
	Send(frame []byte) bool
}

// Session is one connected client. All exported accessors besides the
// mutators are safe to call from the tick goroutine without locking,
// because they are only ever invoked there (deliverSessions runs under
// the scheduler's own lock); the mutators lock because transport
// goroutines call them concurrently as client messages arrive.
type Session struct {
	id     uuid.UUID
	sender Sender

	mu             sync.Mutex
	player         *world.Player
	spectating     bool
	spectateTarget *world.Player
	zoom           float64
	ackedTick      world.Tick
	hasAck         bool
	lastActivity   time.Time

	hist *delta.History
	rate *delta.RateState

	inbound *rate.Limiter
}

// New creates a session bound to sender with default zoom and no
// player or ack state yet.
func New(cfg config.DeltaConfig, sender Sender) *Session {
	return &Session{
		id:           uuid.New(),
		sender:       sender,
		zoom:         1.0,
		lastActivity: time.Now(),
		hist:         delta.NewHistory(cfg),
		rate:         delta.NewRateState(),
		inbound:      rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
	}
}

// ID returns the session's own identifier, distinct from any player id
// it controls.
func (s *Session) ID() uuid.UUID { return s.id }

// PlayerID implements tick.Session.
func (s *Session) PlayerID() (world.PlayerId, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return world.PlayerId{}, false
	}
	return s.player.ID, true
}

// Zoom implements tick.Session.
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// Center implements tick.Session: a spectator follows its target,
// otherwise a controlled player follows itself, and a session with
// neither centers on the origin (an AOI filter around the origin with
// no self is still well-defined, just not very useful to the client).
func (s *Session) Center() vecmath.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spectating && s.spectateTarget != nil {
		return s.spectateTarget.Pos
	}
	if s.player != nil {
		return s.player.Pos
	}
	return vecmath.Zero
}

// Ack implements tick.Session.
func (s *Session) Ack() (world.Tick, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ackedTick, s.hasAck
}

// History implements tick.Session.
func (s *Session) History() *delta.History { return s.hist }

// RateLimiter implements tick.Session.
func (s *Session) RateLimiter() *delta.RateState { return s.rate }

// Deliver implements tick.Session: it serializes update with the wire
// codec and hands the framed message to the sender. If the sender drops
// the frame (full outbound queue, closed connection), the session's
// acknowledgment is cleared so the next tick's update falls back to a
// full encode; nothing is reported upward to the scheduler.
func (s *Session) Deliver(update delta.Update) {
	if !s.sender.Send(wire.PutFrame(wire.EncodeDelta(update))) {
		s.mu.Lock()
		s.hasAck = false
		s.mu.Unlock()
	}
}

// DeliverEvent implements tick.Session: frame is an already-framed
// event message (the scheduler encodes it once and broadcasts the same
// bytes to every session, rather than re-encoding per recipient).
func (s *Session) DeliverEvent(frame []byte) {
	s.sender.Send(frame)
}

// SetPlayer attaches the session to a newly joined or newly taken-over
// player.
func (s *Session) SetPlayer(p *world.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = p
	s.spectating = false
	s.spectateTarget = nil
}

// ClearPlayer detaches the session from its player without closing the
// connection, e.g. after death if the session is about to start
// spectating.
func (s *Session) ClearPlayer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = nil
}

// SetSpectateTarget switches the session into spectator mode following
// target.
func (s *Session) SetSpectateTarget(target *world.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spectating = true
	s.spectateTarget = target
}

// Spectating reports whether the session is currently following
// another player instead of controlling its own.
func (s *Session) Spectating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spectating
}

// SetZoom records a client-reported viewport zoom.
func (s *Session) SetZoom(zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = zoom
}

// SetAck records a snapshot acknowledgment from the client; an
// acknowledgment at or before the one already recorded is ignored.
func (s *Session) SetAck(tick world.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasAck && tick <= s.ackedTick {
		return
	}
	s.ackedTick = tick
	s.hasAck = true
}

// AllowMessage reports whether another inbound client message may be
// processed right now, enforcing a per-session rate cap so a runaway or
// hostile client can't monopolize the tick goroutine decoding its
// messages.
func (s *Session) AllowMessage() bool {
	return s.inbound.Allow()
}

// Touch records client activity for idle eviction.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// IdleSince reports how long it has been since the last recorded
// activity.
func (s *Session) IdleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActivity)
}

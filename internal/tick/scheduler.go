// Package tick runs the fixed-rate simulation loop: drain queued
// input, apply it, step physics/gravity/collision/arena/projectiles,
// run the bot engine, then build and deliver each session's AOI-filtered
// delta, and finally record the tick's cost with the performance
// governor. The World lives inside the Scheduler: the tick goroutine and
// the Scheduler's exported methods (joins, leaves, lookups, WithWorld)
// reach it only while holding the Scheduler's lock.
package tick

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/hknc0/orbit-core/internal/aoi"
	"github.com/hknc0/orbit-core/internal/bots"
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/delta"
	"github.com/hknc0/orbit-core/internal/governor"
	"github.com/hknc0/orbit-core/internal/inputqueue"
	"github.com/hknc0/orbit-core/internal/simsys"
	"github.com/hknc0/orbit-core/internal/spatial"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/wire"
	"github.com/hknc0/orbit-core/internal/world"
)

// Session is the narrow view the scheduler needs of a connected
// client's session in order to run the per-session AOI+delta+send
// stage, without importing the session package (which in turn needs
// nothing from tick, avoiding a cycle).
type Session interface {
	// PlayerID returns the session's controlled player, if it has one
	// (a pure spectator has none).
	PlayerID() (world.PlayerId, bool)
	// Zoom returns the session's last reported viewport zoom.
	Zoom() float64
	// Center returns the point the session's AOI radius and rate
	// limiting are measured from (normally its own player's position,
	// or a spectated target's).
	Center() vecmath.Vec2
	// Ack returns the last tick the client acknowledged receiving, if
	// any.
	Ack() (world.Tick, bool)
	// History returns the session's baseline history for delta
	// encoding.
	History() *delta.History
	// RateLimiter returns the session's distance-aware rate limiter
	// state.
	RateLimiter() *delta.RateState
	// Deliver hands the session its encoded update for this tick. Deliver
	// must not block the scheduler goroutine; a session backed by a
	// network connection should queue the update to its own writer.
	Deliver(update delta.Update)
	// DeliverEvent hands the session one already-encoded gameplay event
	// frame, broadcast to every session regardless of AOI. Like Deliver,
	// must not block.
	DeliverEvent(frame []byte)
}

// Registry enumerates the currently connected sessions. ForEach must be
// safe to call from the scheduler's goroutine while other goroutines
// add or remove sessions concurrently.
type Registry interface {
	ForEach(fn func(Session))
}

// Scheduler owns the World and drives it at a fixed tick rate. Catch-up
// policy: a slow tick is never followed by multiple ticks run back to
// back to "catch up" on wall-clock time. time.Ticker already has this
// property in Go (its channel holds at most one pending tick), so a
// burst of slow ticks simply coalesces into running at a lower
// effective rate instead of spiking CPU trying to replay missed ticks.
type Scheduler struct {
	mu sync.RWMutex

	world    *world.World
	cfg      config.AppConfig
	baseLOD  config.LODConfig
	queue    *inputqueue.Queue
	bots     *bots.Engine
	monitor  *governor.Monitor
	grid     *spatial.Grid
	rng      *rand.Rand
	sessions Registry
	logf     func(format string, args ...any)

	playerList []*world.Player // reused across ticks to avoid per-tick allocation

	running   bool
	ticker    *time.Ticker
	stopCh    chan struct{}
	tickCount int64
}

// New builds a scheduler around a fresh world using cfg, ready to drive
// the given session registry once Start is called.
func New(cfg config.AppConfig, sessions Registry, logf func(format string, args ...any)) *Scheduler {
	if logf == nil {
		logf = log.Printf
	}
	seed := time.Now().UnixNano()
	return &Scheduler{
		world:    world.NewWorld(cfg),
		cfg:      cfg,
		baseLOD:  cfg.LOD,
		queue:    inputqueue.New(cfg.Server.InputQueueCap),
		bots:     bots.NewEngine(cfg.LOD, cfg.AI, rand.New(rand.NewSource(seed)), cfg.AI.Count),
		monitor:  governor.New(cfg.Governor, cfg.Physics.TickRate),
		grid:     spatial.NewGrid(simsys.CollisionCellSize),
		rng:      rand.New(rand.NewSource(seed ^ 0x5bd1e995)),
		sessions: sessions,
		logf:     logf,
		stopCh:   make(chan struct{}),
	}
}

// SubmitInput forwards a client or bot input into the lock-free input
// pipeline. Safe to call from any goroutine.
func (s *Scheduler) SubmitInput(player world.PlayerId, in world.PlayerInput) bool {
	return s.queue.TrySubmit(player, in)
}

// InputQueueStats exposes the input pipeline's counters for metrics.
func (s *Scheduler) InputQueueStats() inputqueue.Stats { return s.queue.Stats() }

// Monitor returns the performance governor driving this scheduler.
func (s *Scheduler) Monitor() *governor.Monitor { return s.monitor }

// TickCount reports how many ticks have run so far.
func (s *Scheduler) TickCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickCount
}

// Bots returns the bot engine, for admission/spawn logic that needs to
// register or unregister bots.
func (s *Scheduler) Bots() *bots.Engine { return s.bots }

// AddPlayer admits a new player or bot into the world under the
// scheduler's lock and returns its assigned id and current tick. Bots
// are also registered with the bot engine so they receive LOD tiering
// and generated input from the next tick onward.
func (s *Scheduler) AddPlayer(name string, isBot bool) (world.PlayerId, world.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.world.AddPlayer(name, isBot)
	if isBot {
		s.bots.Register(p.ID, p.Pos, p.Vel, p.Mass)
	}
	return p.ID, s.world.Tick
}

// RemovePlayer evicts a player (human disconnect or bot despawn) under
// the scheduler's lock.
func (s *Scheduler) RemovePlayer(id world.PlayerId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bots.Unregister(id)
	s.world.RemovePlayer(id)
}

// PlayerCounts reports the current number of human and bot players,
// for admission decisions.
func (s *Scheduler) PlayerCounts() (humans, botCount int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.world.Players {
		if p.IsBot {
			botCount++
		} else {
			humans++
		}
	}
	return humans, botCount
}

// Player looks up a player's current state under the scheduler's lock,
// safe for callers outside the tick goroutine (e.g. a join handler
// building the initial JoinAccepted response).
func (s *Scheduler) Player(id world.PlayerId) (world.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.world.Players[id]
	if !ok {
		return world.Player{}, false
	}
	return *p, true
}

// PlayerPtr returns the live *world.Player for id, for a session to
// attach itself to (SetPlayer/SetSpectateTarget). The pointer is only
// safe to dereference from the tick goroutine itself afterward, which
// is exactly how sessions use it: Center() and deliverSessions both
// run there.
func (s *Scheduler) PlayerPtr(id world.PlayerId) (*world.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.world.Players[id]
	return p, ok
}

// Start begins running ticks at the configured rate on a new goroutine.
// A no-op if already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	period := time.Second / time.Duration(s.cfg.Physics.TickRate)
	s.ticker = time.NewTicker(period)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.runTick()
			case <-s.stopCh:
				return
			}
		}
	}()

	s.logf("tick scheduler started at %d Hz", s.cfg.Physics.TickRate)
}

// Stop halts the tick loop. A no-op if not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.ticker.Stop()
	close(s.stopCh)
	s.logf("tick scheduler stopped after %d ticks", s.tickCount)
}

// WithWorld grants read-only access to the world under the scheduler's
// lock, for collaborators (metrics, admission) that need a consistent
// snapshot of aggregate state without racing the tick goroutine. fn
// must not retain w or mutate it.
func (s *Scheduler) WithWorld(fn func(w *world.World)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.world)
}

// runTick executes exactly one tick's worth of simulation, in the fixed
// stage order: drain input, apply input, physics, gravity, collision,
// arena, projectile expiry, bot engine, per-session AOI+delta+send,
// governor update.
func (s *Scheduler) runTick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.monitor.TickStart()
	w := s.world
	dt := 1.0 / float64(s.cfg.Physics.TickRate)

	for _, in := range s.queue.Drain() {
		p, ok := w.Players[in.Player]
		if !ok || !p.Alive {
			continue
		}
		simsys.ApplyInput(w, p, in, s.cfg.Boost, s.cfg.Eject, s.cfg.Mass, dt)
	}

	simsys.PhysicsStep(w, s.cfg.Physics, dt)
	simsys.GravityStep(w, s.cfg.Physics, dt)

	s.playerList = s.playerList[:0]
	for _, id := range w.PlayerOrder {
		p := w.Players[id]
		if p.Alive {
			s.playerList = append(s.playerList, p)
		}
	}
	simsys.BuildCollisionGrid(s.grid, w, s.playerList)
	simsys.CollisionStep(w, s.grid, s.playerList, s.cfg.Collision, s.cfg.Mass, s.cfg.Spawn.RespawnDelay)

	simsys.ArenaStep(w, s.rng, s.cfg.Arena, s.cfg.GravityWaves, s.cfg.Mass, s.cfg.Spawn.RespawnDelay, s.cfg.Arena.MaxWellsBase, dt)
	simsys.ExpireStep(w)

	w.Tick++

	for _, in := range s.bots.Update(w, w.Tick, dt) {
		s.queue.TrySubmit(in.Player, in)
	}

	entityCount := len(w.Players) + len(w.Projectiles) + len(w.Debris)
	s.deliverSessions(w)
	s.broadcastEvents(w)

	s.monitor.TickEnd(entityCount)
	s.monitor.AdaptLOD(&s.cfg.LOD, s.baseLOD)
	s.bots.SetLOD(s.cfg.LOD)

	s.tickCount++
}

// deliverSessions runs the AOI filter and delta encoder for every
// connected session and hands each its update. Sessions are isolated
// from each other: one session's encoding never affects another's.
func (s *Scheduler) deliverSessions(w *world.World) {
	if s.sessions == nil {
		return
	}
	s.sessions.ForEach(func(sess Session) {
		self, hasSelf := sess.PlayerID()
		center := sess.Center()
		radius := aoi.Radius(s.cfg.AOI, sess.Zoom())

		snap := aoi.Filter(w, s.cfg.AOI, self, hasSelf, center, radius)
		ackedTick, hasAck := sess.Ack()
		update := delta.BuildUpdate(s.cfg.Delta, sess.History(), sess.RateLimiter(), ackedTick, hasAck, snap, center)
		sess.Deliver(update)
	})
}

// broadcastEvents hands every session this tick's gameplay events
// (kills, joins/leaves, well lifecycle, zone collapse). Events aren't
// AOI-filtered: a kill feed or zone-collapse warning is relevant to
// every connected client regardless of where its view is centered.
func (s *Scheduler) broadcastEvents(w *world.World) {
	if s.sessions == nil {
		return
	}
	events := w.DrainEvents()
	if len(events) == 0 {
		return
	}
	frames := make([][]byte, len(events))
	for i, ev := range events {
		frames[i] = wire.PutFrame(wire.EncodeWorldEvent(ev))
	}
	s.sessions.ForEach(func(sess Session) {
		for _, frame := range frames {
			sess.DeliverEvent(frame)
		}
	})
}

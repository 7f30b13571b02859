// Package inputqueue decouples per-connection goroutines from the tick
// scheduler: every connection holds a cheap handle that submits inputs
// without blocking, and the scheduler drains everything pending once per
// tick. A channel is Go's lock-free MPSC primitive — no custom ring
// buffer is needed the way a bare stdlib language might require one.
package inputqueue

import (
	"sync/atomic"

	"github.com/hknc0/orbit-core/internal/world"
)

// message is one submitted input, tagged with its player so the drain
// step can resolve last-input-wins per player.
type message struct {
	player world.PlayerId
	input  world.PlayerInput
}

// Queue is a bounded multi-producer single-consumer input channel.
// TrySubmit is safe to call from any number of goroutines; Drain must
// only be called from the tick scheduler's single goroutine.
type Queue struct {
	ch chan message

	enqueued atomic.Uint64
	dropped  atomic.Uint64
	drained  atomic.Uint64

	lastSeq map[world.PlayerId]uint64
}

// DefaultCapacity matches the input pipeline's minimum required bound:
// enough to absorb a burst of per-player inputs between ticks without
// blocking a connection goroutine.
const DefaultCapacity = 1024

// New builds a queue with the given channel capacity. Capacity <= 0
// falls back to DefaultCapacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		ch:      make(chan message, capacity),
		lastSeq: make(map[world.PlayerId]uint64, 256),
	}
}

// TrySubmit enqueues an input without blocking. It returns false if the
// queue is full, in which case the input is dropped: this is correct
// because inputs are idempotent control-state snapshots and the next
// tick's input supersedes whatever was lost.
func (q *Queue) TrySubmit(player world.PlayerId, in world.PlayerInput) bool {
	select {
	case q.ch <- message{player: player, input: in}:
		q.enqueued.Add(1)
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Drain empties everything currently pending and resolves it to at most
// one PlayerInput per player: the highest-sequence input wins within the
// tick regardless of drain order, and any input whose sequence number
// regresses behind what that player already submitted is rejected as a
// likely replay. Iteration order over the returned slice is
// otherwise unspecified.
func (q *Queue) Drain() []world.PlayerInput {
	latest := make(map[world.PlayerId]world.PlayerInput)

	for {
		select {
		case m := <-q.ch:
			q.drained.Add(1)
			if m.input.Sequence < q.lastSeq[m.player] {
				continue // sequence regression: reject as replay
			}
			if cur, ok := latest[m.player]; !ok || m.input.Sequence >= cur.Sequence {
				latest[m.player] = m.input
			}
		default:
			out := make([]world.PlayerInput, 0, len(latest))
			for player, in := range latest {
				q.lastSeq[player] = in.Sequence
				out = append(out, in)
			}
			return out
		}
	}
}

// ForgetPlayer clears a disconnected player's sequence-tracking state so
// a later rejoin starts fresh instead of being rejected as a regression
// against a prior session's sequence numbers.
func (q *Queue) ForgetPlayer(player world.PlayerId) {
	delete(q.lastSeq, player)
}

// Stats is a point-in-time snapshot of queue activity, exposed to the
// metrics collector.
type Stats struct {
	Enqueued uint64
	Dropped  uint64
	Drained  uint64
	Pending  int
	Capacity int
}

// Stats returns current counters. Safe to call from any goroutine.
func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued: q.enqueued.Load(),
		Dropped:  q.dropped.Load(),
		Drained:  q.drained.Load(),
		Pending:  len(q.ch),
		Capacity: cap(q.ch),
	}
}

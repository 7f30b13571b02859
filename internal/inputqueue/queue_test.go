package inputqueue

import (
	"testing"

	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

func TestTrySubmitAndDrain(t *testing.T) {
	q := New(10)
	p := world.NewPlayerId()

	if !q.TrySubmit(p, world.PlayerInput{Player: p, Sequence: 1}) {
		t.Fatal("TrySubmit should succeed under capacity")
	}

	out := q.Drain()
	if len(out) != 1 {
		t.Fatalf("Drain returned %d inputs, want 1", len(out))
	}
	if out[0].Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", out[0].Sequence)
	}
}

func TestTrySubmitDropsWhenFull(t *testing.T) {
	q := New(1)
	p := world.NewPlayerId()

	if !q.TrySubmit(p, world.PlayerInput{Sequence: 1}) {
		t.Fatal("first submit should succeed")
	}
	if q.TrySubmit(p, world.PlayerInput{Sequence: 2}) {
		t.Fatal("submit into a full queue should fail, not block")
	}

	stats := q.Stats()
	if stats.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", stats.Dropped)
	}
}

func TestDrainLastInputWinsPerPlayer(t *testing.T) {
	q := New(10)
	p := world.NewPlayerId()

	q.TrySubmit(p, world.PlayerInput{Sequence: 1, Thrust: vecmath.Vec2{X: 1}})
	q.TrySubmit(p, world.PlayerInput{Sequence: 3, Thrust: vecmath.Vec2{X: 3}})
	q.TrySubmit(p, world.PlayerInput{Sequence: 2, Thrust: vecmath.Vec2{X: 2}})

	out := q.Drain()
	if len(out) != 1 {
		t.Fatalf("Drain returned %d inputs, want 1 (one per player)", len(out))
	}
	if out[0].Sequence != 3 {
		t.Errorf("Sequence = %d, want 3 (highest sequence wins)", out[0].Sequence)
	}
}

func TestDrainRejectsSequenceRegression(t *testing.T) {
	q := New(10)
	p := world.NewPlayerId()

	q.TrySubmit(p, world.PlayerInput{Sequence: 10})
	first := q.Drain()
	if len(first) != 1 || first[0].Sequence != 10 {
		t.Fatalf("first drain = %+v, want one input with sequence 10", first)
	}

	q.TrySubmit(p, world.PlayerInput{Sequence: 5}) // replay of an old sequence
	second := q.Drain()
	if len(second) != 0 {
		t.Fatalf("second drain returned %d inputs, want 0 (regression should be rejected)", len(second))
	}
}

func TestForgetPlayerResetsSequenceTracking(t *testing.T) {
	q := New(10)
	p := world.NewPlayerId()

	q.TrySubmit(p, world.PlayerInput{Sequence: 10})
	q.Drain()

	q.ForgetPlayer(p)

	q.TrySubmit(p, world.PlayerInput{Sequence: 1}) // rejoin starts sequence over
	out := q.Drain()
	if len(out) != 1 {
		t.Fatalf("Drain after ForgetPlayer returned %d inputs, want 1", len(out))
	}
}

func TestDrainIsEmptyOnEmptyQueue(t *testing.T) {
	q := New(10)
	if out := q.Drain(); len(out) != 0 {
		t.Errorf("Drain on empty queue returned %d inputs, want 0", len(out))
	}
}

func TestDrainMultiplePlayersIndependent(t *testing.T) {
	q := New(10)
	a, b := world.NewPlayerId(), world.NewPlayerId()

	q.TrySubmit(a, world.PlayerInput{Sequence: 1})
	q.TrySubmit(b, world.PlayerInput{Sequence: 1})
	q.TrySubmit(a, world.PlayerInput{Sequence: 2})

	out := q.Drain()
	if len(out) != 2 {
		t.Fatalf("Drain returned %d inputs, want 2 (one per distinct player)", len(out))
	}
}

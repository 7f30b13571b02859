package transport

import "testing"

func TestConnLimiterEnforcesPerIPCap(t *testing.T) {
	l := newConnLimiter(2)

	if !l.Allow("1.2.3.4") {
		t.Fatal("expected first connection to be allowed")
	}
	if !l.Allow("1.2.3.4") {
		t.Fatal("expected second connection to be allowed")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("expected third connection to be rejected")
	}

	l.Release("1.2.3.4")
	if !l.Allow("1.2.3.4") {
		t.Fatal("expected a slot to free up after Release")
	}
}

func TestConnLimiterTracksIPsIndependently(t *testing.T) {
	l := newConnLimiter(1)

	if !l.Allow("1.1.1.1") {
		t.Fatal("expected first IP to be allowed")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatal("expected second IP to be allowed independently")
	}
	if l.Allow("1.1.1.1") {
		t.Fatal("expected first IP to be at its own cap")
	}
}

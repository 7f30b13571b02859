package transport

import (
	"sync"
	"sync/atomic"
)

// connLimiter caps the number of simultaneously open connections per
// source IP, independent of the server-wide admission caps in
// internal/admission (which gate players/spectators, not raw sockets).
type connLimiter struct {
	counts   sync.Map // map[string]*int32
	maxPerIP int
}

func newConnLimiter(maxPerIP int) *connLimiter {
	return &connLimiter{maxPerIP: maxPerIP}
}

// Allow attempts to reserve a connection slot for ip, returning false
// if it is already at its per-IP limit.
func (l *connLimiter) Allow(ip string) bool {
	actual, _ := l.counts.LoadOrStore(ip, new(int32))
	counter := actual.(*int32)
	for {
		current := atomic.LoadInt32(counter)
		if int(current) >= l.maxPerIP {
			return false
		}
		if atomic.CompareAndSwapInt32(counter, current, current+1) {
			return true
		}
	}
}

// Release frees the slot reserved by a prior successful Allow.
func (l *connLimiter) Release(ip string) {
	if val, ok := l.counts.Load(ip); ok {
		atomic.AddInt32(val.(*int32), -1)
	}
}

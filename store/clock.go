package store

import (
	"sync/atomic"
	"time"
)

var lastTimestamp int64

// monotonicNow returns the current instant with a strictly increasing
// nanosecond component, so two tasks created back to back never share a
// CreatedAt and the newest-first tie break stays deterministic.
func monotonicNow() time.Time {
	for {
		now := time.Now().UnixNano()
		last := atomic.LoadInt64(&lastTimestamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastTimestamp, last, now) {
			return time.Unix(0, now)
		}
	}
}

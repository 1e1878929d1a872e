package ratelimit

import (
	"sync"
	"time"
)

// Limiter answers whether a request identified by key may proceed.
// When allowed is false, retryAfterSec suggests a Retry-After header
// value in seconds (0 = omit the header).
type Limiter interface {
	Allow(key string) (allowed bool, retryAfterSec int)
}

// Noop permits every request. Used when rate limiting is disabled.
type Noop struct{}

func (Noop) Allow(string) (bool, int) { return true, 0 }

// SlidingWindow tracks request timestamps per key and allows at most
// limit requests inside the trailing window. State lives in process
// memory, so limits apply per instance.
type SlidingWindow struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
	clock  func() time.Time
}

// NewSlidingWindow allows up to limit requests per key per window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		clock:  time.Now,
	}
}

func (l *SlidingWindow) Allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	cutoff := now.Add(-l.window)

	stamps := l.seen[key]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.seen[key] = kept
		wait := kept[0].Add(l.window).Sub(now)
		retry := int(wait.Seconds())
		if wait > 0 && retry < 1 {
			retry = 1
		}
		if retry < 0 {
			retry = 0
		}
		return false, retry
	}

	l.seen[key] = append(kept, now)
	return true, 0
}

// Sweep drops keys whose every timestamp has aged out of the window,
// bounding memory when many distinct clients come and go.
func (l *SlidingWindow) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.clock().Add(-l.window)
	for key, stamps := range l.seen {
		live := false
		for _, ts := range stamps {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.seen, key)
		}
	}
}

package ratelimit

import (
	"testing"
	"time"
)

func TestNoopAlwaysAllows(t *testing.T) {
	var lim Noop
	for i := 0; i < 50; i++ {
		allowed, retry := lim.Allow("anyone")
		if !allowed || retry != 0 {
			t.Fatalf("Allow = (%v, %d), want (true, 0)", allowed, retry)
		}
	}
}

func TestSlidingWindowWithinLimit(t *testing.T) {
	lim := NewSlidingWindow(3, time.Minute)
	for i := 0; i < 3; i++ {
		allowed, retry := lim.Allow("client")
		if !allowed || retry != 0 {
			t.Fatalf("request %d: Allow = (%v, %d), want (true, 0)", i+1, allowed, retry)
		}
	}
}

func TestSlidingWindowRejectsOverLimit(t *testing.T) {
	lim := NewSlidingWindow(2, time.Minute)
	lim.Allow("client")
	lim.Allow("client")
	allowed, retry := lim.Allow("client")
	if allowed {
		t.Error("third request inside the window should be rejected")
	}
	if retry <= 0 {
		t.Errorf("retry after = %d, want positive", retry)
	}
}

func TestSlidingWindowKeysIndependent(t *testing.T) {
	lim := NewSlidingWindow(1, time.Minute)
	lim.Allow("a")
	if allowed, _ := lim.Allow("b"); !allowed {
		t.Error("separate key should have its own budget")
	}
	if allowed, _ := lim.Allow("a"); allowed {
		t.Error("exhausted key should stay rejected")
	}
}

func TestSlidingWindowExpiry(t *testing.T) {
	lim := NewSlidingWindow(1, time.Minute)
	now := time.Now()
	lim.clock = func() time.Time { return now }

	lim.Allow("client")
	if allowed, _ := lim.Allow("client"); allowed {
		t.Fatal("second request should be rejected")
	}

	now = now.Add(time.Minute + time.Second)
	if allowed, _ := lim.Allow("client"); !allowed {
		t.Error("request after the window elapses should be allowed")
	}
}

func TestSweepDropsIdleKeys(t *testing.T) {
	lim := NewSlidingWindow(2, time.Minute)
	now := time.Now()
	lim.clock = func() time.Time { return now }

	lim.Allow("idle")
	lim.Allow("busy")
	now = now.Add(30 * time.Second)
	lim.Allow("busy")

	now = now.Add(45 * time.Second)
	lim.Sweep()

	lim.mu.Lock()
	_, idleKept := lim.seen["idle"]
	_, busyKept := lim.seen["busy"]
	lim.mu.Unlock()

	if idleKept {
		t.Error("fully aged-out key should be swept")
	}
	if !busyKept {
		t.Error("key with live timestamps should survive the sweep")
	}
}

package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/beratoz/vampireville/internal/monitor"
)

func newTestClient(hub *Hub, code string, buffer int) *Client {
	return &Client{
		hub:         hub,
		send:        make(chan *Envelope, buffer),
		SessionCode: code,
		Role:        "spectator",
	}
}

func waitForEnvelope(t *testing.T, c *Client) *Envelope {
	t.Helper()
	select {
	case env := <-c.send:
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for envelope")
		return nil
	}
}

func waitForCount(t *testing.T, hub *Hub, code string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(code) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("ClientCount(%q) = %d, want %d", code, hub.ClientCount(code), want)
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(monitor.Nop())
	go hub.Run()

	a := newTestClient(hub, "AAAA11", 8)
	b := newTestClient(hub, "AAAA11", 8)
	hub.register <- a
	hub.register <- b
	waitForCount(t, hub, "AAAA11", 2)

	hub.unregister <- a
	waitForCount(t, hub, "AAAA11", 1)

	// Unregistering twice must not panic or close send again.
	hub.unregister <- a
	waitForCount(t, hub, "AAAA11", 1)

	hub.unregister <- b
	waitForCount(t, hub, "AAAA11", 0)
}

func TestHubBroadcastChangeReachesSessionOnly(t *testing.T) {
	hub := NewHub(monitor.Nop())
	go hub.Run()

	watcher := newTestClient(hub, "AAAA11", 8)
	stranger := newTestClient(hub, "BBBB22", 8)
	hub.register <- watcher
	hub.register <- stranger
	waitForCount(t, hub, "AAAA11", 1)
	waitForCount(t, hub, "BBBB22", 1)

	hub.BroadcastChange("AAAA11", "phase", json.RawMessage(`"VOTING"`))

	env := waitForEnvelope(t, watcher)
	if env.Type != TypeChange || env.Key != "phase" {
		t.Errorf("envelope = %+v, want change/phase", env)
	}
	if string(env.Value) != `"VOTING"` {
		t.Errorf("value = %s, want \"VOTING\"", env.Value)
	}

	select {
	case env := <-stranger.send:
		t.Errorf("other session received %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastState(t *testing.T) {
	hub := NewHub(monitor.Nop())
	go hub.Run()

	c := newTestClient(hub, "AAAA11", 8)
	hub.register <- c
	waitForCount(t, hub, "AAAA11", 1)

	hub.BroadcastState("AAAA11", map[string]json.RawMessage{
		"phase": json.RawMessage(`"SETUP"`),
		"turn":  json.RawMessage(`0`),
	})

	env := waitForEnvelope(t, c)
	if env.Type != TypeState {
		t.Fatalf("type = %q, want %q", env.Type, TypeState)
	}
	if string(env.State["phase"]) != `"SETUP"` {
		t.Errorf("state phase = %s", env.State["phase"])
	}
}

func TestTrySendAfterEvictionIsDropped(t *testing.T) {
	hub := NewHub(monitor.Nop())
	go hub.Run()

	slow := newTestClient(hub, "AAAA11", 1)
	hub.register <- slow
	waitForCount(t, hub, "AAAA11", 1)

	hub.BroadcastChange("AAAA11", "turn", json.RawMessage(`1`))
	hub.BroadcastChange("AAAA11", "turn", json.RawMessage(`2`))
	waitForCount(t, hub, "AAAA11", 0)

	// A stalled reader can still be answering a sync_state request when
	// the hub drops it; the reply must be discarded, not sent on the
	// closed channel.
	slow.trySend(&Envelope{Type: TypeError, Error: "late"})
	slow.trySend(stateEnvelope(map[string]json.RawMessage{"phase": json.RawMessage(`"SETUP"`)}))

	// Unregistering after eviction stays a no-op as well.
	hub.unregister <- slow
	waitForCount(t, hub, "AAAA11", 0)
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewHub(monitor.Nop())
	go hub.Run()

	slow := newTestClient(hub, "AAAA11", 1)
	hub.register <- slow
	waitForCount(t, hub, "AAAA11", 1)

	// First fills the buffer, second finds it full and evicts the client.
	hub.BroadcastChange("AAAA11", "turn", json.RawMessage(`1`))
	hub.BroadcastChange("AAAA11", "turn", json.RawMessage(`2`))
	waitForCount(t, hub, "AAAA11", 0)
}

package websocket

import "encoding/json"

// Envelope is the wire format for every server-to-client message.
// Type "state" carries a full snapshot, "change" a single key update,
// "error" a human-readable reason.
type Envelope struct {
	Type  string                     `json:"type"`
	Key   string                     `json:"key,omitempty"`
	Value json.RawMessage            `json:"value,omitempty"`
	State map[string]json.RawMessage `json:"state,omitempty"`
	Error string                     `json:"error,omitempty"`
}

// ClientMessage is the envelope for client-to-server messages. The
// socket is an observer channel, so the only accepted type is a
// request to resend the full state.
type ClientMessage struct {
	Type string `json:"type"`
}

// Server envelope types.
const (
	TypeState  = "state"
	TypeChange = "change"
	TypeError  = "error"
)

// Client message types.
const ClientTypeSyncState = "sync_state"

// MaxClientMessageSize bounds inbound frames; observers have nothing
// large to say.
const MaxClientMessageSize = 1024

func stateEnvelope(state map[string]json.RawMessage) *Envelope {
	return &Envelope{Type: TypeState, State: state}
}

func changeEnvelope(key string, value json.RawMessage) *Envelope {
	return &Envelope{Type: TypeChange, Key: key, Value: value}
}

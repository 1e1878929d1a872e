// Package storage persists session records and game state as a flat
// key→JSON-value set, one record per state entity. The session layer treats
// it as a write-through mirror: in-memory state stays authoritative and a
// failed write never rolls a command back.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a session record does not exist.
var ErrNotFound = errors.New("session not found")

// SessionRecord identifies a hosted game session.
type SessionRecord struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is the persistence surface the session layer depends on.
type Store interface {
	// PutSession creates or replaces a session record.
	PutSession(ctx context.Context, rec SessionRecord) error
	// GetSession looks a session up by its code.
	GetSession(ctx context.Context, code string) (*SessionRecord, error)
	// SaveStateKey upserts a single state record for a session.
	SaveStateKey(ctx context.Context, code, key string, value json.RawMessage) error
	// SaveStateSnapshot upserts every record of a full state snapshot.
	SaveStateSnapshot(ctx context.Context, code string, snap map[string]json.RawMessage) error
	// LoadState returns every persisted state record for a session. A
	// session with no state yields an empty map, not an error.
	LoadState(ctx context.Context, code string) (map[string]json.RawMessage, error)
}

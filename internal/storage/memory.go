package storage

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-memory Store for single-instance deployments and tests.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]SessionRecord
	state    map[string]map[string]json.RawMessage
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]SessionRecord),
		state:    make(map[string]map[string]json.RawMessage),
	}
}

func (m *Memory) PutSession(_ context.Context, rec SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[rec.Code] = rec
	return nil
}

func (m *Memory) GetSession(_ context.Context, code string) (*SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) SaveStateKey(_ context.Context, code, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state[code] == nil {
		m.state[code] = make(map[string]json.RawMessage)
	}
	m.state[code][key] = append(json.RawMessage(nil), value...)
	return nil
}

func (m *Memory) SaveStateSnapshot(ctx context.Context, code string, snap map[string]json.RawMessage) error {
	for key, value := range snap {
		if err := m.SaveStateKey(ctx, code, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) LoadState(_ context.Context, code string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(m.state[code]))
	for key, value := range m.state[code] {
		out[key] = append(json.RawMessage(nil), value...)
	}
	return out, nil
}

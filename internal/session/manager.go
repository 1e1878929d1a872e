package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/beratoz/vampireville/internal/storage"
)

// ErrBadPassword is returned when moderator authentication fails.
var ErrBadPassword = errors.New("wrong moderator password")

// Manager is the registry of hosted sessions, keyed by their join code.
// Sessions evicted from memory (restart) are revived from storage on access.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	store    storage.Store
	notify   NotifyFunc
	rng      *rand.Rand
}

// NewManager creates a manager on top of a storage backend.
func NewManager(store storage.Store) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetNotifier wires the observer broadcast; called once at startup before
// traffic arrives.
func (m *Manager) SetNotifier(fn NotifyFunc) {
	m.notify = fn
}

// generateCode produces a human-readable join code, avoiding the easily
// confused characters.
func (m *Manager) generateCode() string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 6
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = charset[m.rng.Intn(len(charset))]
	}
	return string(code)
}

// Create hosts a new session. A non-empty password gates moderator access.
func (m *Manager) Create(ctx context.Context, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var code string
	for i := 0; i < 10; i++ {
		candidate := m.generateCode()
		if _, taken := m.sessions[candidate]; taken {
			continue
		}
		if _, err := m.store.GetSession(ctx, candidate); errors.Is(err, storage.ErrNotFound) {
			code = candidate
			break
		}
	}
	if code == "" {
		// Never upsert over a live session; a collision here would hand
		// its moderator password to someone else.
		return nil, errors.New("could not allocate a free session code")
	}

	rec := storage.SessionRecord{ID: uuid.NewString(), Code: code, PasswordHash: []byte{}, CreatedAt: time.Now().UTC()}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		rec.PasswordHash = hash
	}
	if err := m.store.PutSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s := New(rec.ID, code, m.store, m.notify)
	if err := m.store.SaveStateSnapshot(ctx, code, s.Snapshot()); err != nil {
		return nil, fmt.Errorf("persist initial state: %w", err)
	}
	m.sessions[code] = s
	return s, nil
}

// Get returns the session with the given code, reviving it from storage
// when it is not in memory. Returns storage.ErrNotFound when unknown.
func (m *Manager) Get(ctx context.Context, code string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[code]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	rec, err := m.store.GetSession(ctx, code)
	if err != nil {
		return nil, err
	}
	snap, err := m.store.LoadState(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load session state: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[code]; ok {
		return s, nil
	}
	s = Restore(rec.ID, code, snap, m.store, m.notify)
	m.sessions[code] = s
	return s, nil
}

// Authenticate verifies the moderator password for a session. Sessions
// created without a password accept any.
func (m *Manager) Authenticate(ctx context.Context, code, password string) error {
	rec, err := m.store.GetSession(ctx, code)
	if err != nil {
		return err
	}
	if len(rec.PasswordHash) == 0 {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}

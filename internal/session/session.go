// Package session owns all mutable game state and exposes the moderator
// command surface. Every command runs to completion under a single lock,
// applies fully or rejects with no partial effect, and mirrors the keys it
// touched to storage and to connected observers.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/beratoz/vampireville/internal/game"
	"github.com/beratoz/vampireville/internal/logger"
)

// Command rejection errors. None of these leave partial state behind.
var (
	ErrEmptyName   = errors.New("player name must not be empty")
	ErrDuplicate   = errors.New("player name already exists")
	ErrRosterFull  = errors.New("roster is at the maximum of 30 players")
	ErrDeadVoter   = errors.New("dead players cast no votes")
	ErrInvalidRole = errors.New("role has no night action")
)

// ReasonCode maps a rejection to a stable machine-readable code for the
// command API.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrEmptyName):
		return "empty_name"
	case errors.Is(err, ErrDuplicate):
		return "duplicate_name"
	case errors.Is(err, ErrRosterFull):
		return "roster_full"
	case errors.Is(err, ErrDeadVoter):
		return "dead_voter"
	case errors.Is(err, ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, game.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, game.ErrTerminalPhase):
		return "game_over"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "not_enough_players"
	case errors.Is(err, game.ErrUnknownPlayer):
		return "unknown_player"
	default:
		return "invalid_config"
	}
}

// Change is one (key, newValue) pair of a committed state update.
type Change struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// StateWriter is the slice of the storage layer a session needs.
type StateWriter interface {
	SaveStateKey(ctx context.Context, code, key string, value json.RawMessage) error
	SaveStateSnapshot(ctx context.Context, code string, snap map[string]json.RawMessage) error
}

// NotifyFunc delivers committed changes to observers of a session.
type NotifyFunc func(code string, changes []Change)

// Session hosts one game: the authoritative state, the phase machine, and
// the write-through mirror to storage and observers.
type Session struct {
	ID   string
	Code string

	mu      sync.Mutex
	state   *game.SessionState
	machine *game.Machine
	writer  StateWriter
	notify  NotifyFunc
}

// New creates a session with fresh initial state.
func New(id, code string, writer StateWriter, notify NotifyFunc) *Session {
	return &Session{
		ID:      id,
		Code:    code,
		state:   game.NewState(),
		machine: game.NewMachine(time.Now().UnixNano()),
		writer:  writer,
		notify:  notify,
	}
}

// Restore creates a session from a persisted snapshot. Corrupt or missing
// keys fall back to their defaults inside StateFromSnapshot.
func Restore(id, code string, snap map[string]json.RawMessage, writer StateWriter, notify NotifyFunc) *Session {
	s := New(id, code, writer, notify)
	s.state = game.StateFromSnapshot(snap)
	return s
}

// State returns a deep copy of the current state.
func (s *Session) State() *game.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Snapshot returns the current state as a flat key→JSON set.
func (s *Session) Snapshot() map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// BalanceScore returns the advisory balance score for the current setup.
func (s *Session) BalanceScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return game.BalanceScore(len(s.state.Players), s.state.Config)
}

// commit mirrors the given keys to storage and observers. The in-memory
// state is authoritative; a failed write is logged, never rolled back.
func (s *Session) commit(ctx context.Context, keys ...string) {
	changes := make([]Change, 0, len(keys))
	for _, key := range keys {
		value := s.state.MarshalKey(key)
		if s.writer != nil {
			if err := s.writer.SaveStateKey(ctx, s.Code, key, value); err != nil {
				logger.Log.Warnw("persist state key failed", "session", s.Code, "key", key, "error", err)
			}
		}
		changes = append(changes, Change{Key: key, Value: value})
	}
	if s.notify != nil {
		s.notify(s.Code, changes)
	}
}

// AddPlayer registers a new player during setup. Names are trimmed, must be
// non-empty, and unique case-insensitively. The recommended config is
// recomputed on every roster change.
func (s *Session) AddPlayer(ctx context.Context, name string) (game.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != game.PhaseSetup {
		return game.Player{}, game.ErrWrongPhase
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return game.Player{}, ErrEmptyName
	}
	for _, p := range s.state.Players {
		if strings.EqualFold(p.Name, trimmed) {
			return game.Player{}, ErrDuplicate
		}
	}
	if len(s.state.Players) >= game.MaxPlayers {
		return game.Player{}, ErrRosterFull
	}

	player := game.Player{ID: uuid.NewString(), Name: trimmed, Alive: true}
	s.state.Players = append(s.state.Players, player)
	s.state.Config = game.DefaultConfig(len(s.state.Players))
	s.commit(ctx, game.KeyPlayers, game.KeyGameConfig)
	return player, nil
}

// RemovePlayer drops a player from the roster during setup.
func (s *Session) RemovePlayer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != game.PhaseSetup {
		return game.ErrWrongPhase
	}
	kept := s.state.Players[:0]
	found := false
	for _, p := range s.state.Players {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return game.ErrUnknownPlayer
	}
	s.state.Players = kept
	s.state.Config = game.DefaultConfig(len(s.state.Players))
	s.commit(ctx, game.KeyPlayers, game.KeyGameConfig)
	return nil
}

// UpdateConfig merges a validated partial config before the game starts.
func (s *Session) UpdateConfig(ctx context.Context, patch game.ConfigPatch) (game.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != game.PhaseSetup {
		return s.state.Config, game.ErrWrongPhase
	}
	next, err := s.state.Config.Apply(patch, len(s.state.Players))
	if err != nil {
		return s.state.Config, err
	}
	s.state.Config = next
	s.commit(ctx, game.KeyGameConfig)
	return next, nil
}

// Start deals roles and begins the game. The narrative pause before the
// first day belongs to the UI; the caller advances when it ends.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.Start(s.state); err != nil {
		return err
	}
	s.commit(ctx, game.KeyPhase, game.KeyTurn, game.KeyPlayers, game.KeyRoleActions, game.KeyEvents)
	return nil
}

// SetNightTarget records a night action for role. An empty target clears
// the entry (an explicit "no action"). For the sheriff the investigation
// result is computed and cached; investigating a dead player is a logged
// no-op.
func (s *Session) SetNightTarget(ctx context.Context, role game.Role, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch role {
	case game.RoleVampire:
		s.state.NightAction.VampireTarget = targetID
	case game.RoleDoctor:
		s.state.NightAction.DoctorTarget = targetID
	case game.RoleSheriff:
		if targetID == "" {
			s.state.NightAction.SheriffTarget = ""
			s.state.NightAction.SheriffResult = ""
			break
		}
		target, ok := s.state.FindPlayer(targetID)
		if !ok || !target.Alive {
			logger.Log.Infow("sheriff cannot investigate a dead player", "session", s.Code, "target", targetID)
			return nil
		}
		s.state.NightAction.SheriffTarget = targetID
		if target.Role == game.RoleVampire {
			s.state.NightAction.SheriffResult = "vampire"
		} else {
			s.state.NightAction.SheriffResult = "villager"
		}
	default:
		return ErrInvalidRole
	}
	s.commit(ctx, game.KeyNightAction)
	return nil
}

// UseRoleAction decrements the remaining-use counter for a role, floored
// at zero.
func (s *Session) UseRoleAction(ctx context.Context, role game.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if role != game.RoleDoctor && role != game.RoleSheriff {
		return ErrInvalidRole
	}
	if n := s.state.RoleActions[role]; n > 0 {
		s.state.RoleActions[role] = n - 1
	}
	s.commit(ctx, game.KeyRoleActions)
	return nil
}

// CastVote inserts or overwrites the voter's ledger entry. Dead or unknown
// voters are rejected. Per-player tallies are recomputed for display.
func (s *Session) CastVote(ctx context.Context, voterID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	voter, ok := s.state.FindPlayer(voterID)
	if !ok {
		return game.ErrUnknownPlayer
	}
	if !voter.Alive {
		return ErrDeadVoter
	}
	if _, ok := s.state.FindPlayer(targetID); !ok {
		return game.ErrUnknownPlayer
	}
	s.state.Votes[voterID] = targetID
	s.refreshVoteCounts()
	s.commit(ctx, game.KeyVotes, game.KeyPlayers)
	return nil
}

// ClearVotes empties the ledger and resets the per-player tallies.
func (s *Session) ClearVotes(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Votes = map[string]string{}
	for i := range s.state.Players {
		s.state.Players[i].Votes = 0
	}
	s.commit(ctx, game.KeyVotes, game.KeyPlayers)
	return nil
}

// SetActiveVoter points the views at the player currently casting a vote.
// An empty id clears the pointer.
func (s *Session) SetActiveVoter(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if playerID != "" {
		if _, ok := s.state.FindPlayer(playerID); !ok {
			return game.ErrUnknownPlayer
		}
	}
	s.state.ActiveVoter = playerID
	s.commit(ctx, game.KeyActiveVoter)
	return nil
}

// Eliminate kills a player by moderator decision and runs the jester-first
// win check. Returns whether the game ended.
func (s *Session) Eliminate(ctx context.Context, playerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gameOver, err := s.machine.Eliminate(s.state, playerID)
	if err != nil {
		return false, err
	}
	s.commit(ctx, game.KeyPlayers, game.KeyVotes, game.KeyEvents,
		game.KeyWinner, game.KeyWinReason, game.KeyPhase)
	return gameOver, nil
}

// AdvancePhase executes one step of the phase machine, including the
// resolution engines on their edges.
func (s *Session) AdvancePhase(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.Advance(s.state); err != nil {
		return err
	}
	// Advance can touch most of the state; mirror everything but the
	// roster-derived config and role counters, which it never changes.
	s.commit(ctx, game.KeyPhase, game.KeyTurn, game.KeyPlayers, game.KeyNightAction,
		game.KeyEvents, game.KeyWinner, game.KeyWinReason, game.KeyVotes,
		game.KeyNightResult, game.KeyActiveVoter)
	return nil
}

// ResetRound returns to setup for a next round with the same people: every
// session scalar clears, while the roster survives with roles, alive flags,
// and tallies wiped in place.
func (s *Session) ResetRound(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Players {
		s.state.Players[i].Role = ""
		s.state.Players[i].Alive = true
		s.state.Players[i].Votes = 0
	}
	s.resetScalars()
	s.state.Config = game.DefaultConfig(len(s.state.Players))
	s.commit(ctx, game.StateKeys...)
	return nil
}

// ResetAll wipes the session completely, roster included.
func (s *Session) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Players = []game.Player{}
	s.resetScalars()
	s.state.Config = game.DefaultConfig(0)
	s.commit(ctx, game.StateKeys...)
	return nil
}

func (s *Session) resetScalars() {
	s.state.Phase = game.PhaseSetup
	s.state.Turn = 0
	s.state.NightAction = game.NightAction{}
	s.state.Events = []game.Event{}
	s.state.Winner = ""
	s.state.WinReason = ""
	s.state.Votes = map[string]string{}
	s.state.RoleActions = map[game.Role]int{game.RoleDoctor: 1, game.RoleSheriff: 1}
	s.state.NightResult = nil
	s.state.ActiveVoter = ""
}

// ApplyExternal absorbs a change notification produced elsewhere (another
// instance mirroring the same session). Last writer wins: the value
// replaces the key outright, and nothing is re-persisted or re-broadcast.
func (s *Session) ApplyExternal(key string, value json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ApplyUpdate(key, value)
}

// ReplaceState swaps the entire in-memory state for an external snapshot.
func (s *Session) ReplaceState(snap map[string]json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = game.StateFromSnapshot(snap)
}

// refreshVoteCounts recomputes the display tallies from living voters.
func (s *Session) refreshVoteCounts() {
	counts := make(map[string]int)
	alive := make(map[string]bool, len(s.state.Players))
	for _, p := range s.state.Players {
		if p.Alive {
			alive[p.ID] = true
		}
	}
	for voterID, targetID := range s.state.Votes {
		if alive[voterID] {
			counts[targetID]++
		}
	}
	for i := range s.state.Players {
		s.state.Players[i].Votes = counts[s.state.Players[i].ID]
	}
}

package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Machine-level errors. Commands hitting these leave the state untouched.
var (
	ErrWrongPhase       = errors.New("command not allowed in current phase")
	ErrTerminalPhase    = errors.New("game is over; reset to continue")
	ErrNotEnoughPlayers = fmt.Errorf("at least %d players are required to start", MinPlayersToStart)
	ErrUnknownPlayer    = errors.New("unknown player")
)

// Machine drives phase transitions and triggers the resolution engines at
// the correct edges. It is the only code that advances SessionState through
// the game cycle; everything it calls is a pure function.
type Machine struct {
	rng *rand.Rand
	now func() time.Time
}

// NewMachine creates a machine seeded for role shuffling.
func NewMachine(seed int64) *Machine {
	return &Machine{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Start validates the roster and config, deals roles, and moves the game
// into DISTRIBUTING_ROLES with turn 1. The caller sequences the narrative
// pause before the first Advance; Start itself completes synchronously.
func (m *Machine) Start(s *SessionState) error {
	if s.Phase != PhaseSetup {
		return ErrWrongPhase
	}
	if len(s.Players) < MinPlayersToStart {
		return ErrNotEnoughPlayers
	}
	if err := s.Config.Validate(len(s.Players)); err != nil {
		return err
	}

	deck := AssignRoles(len(s.Players), s.Config, m.rng)
	for i := range s.Players {
		s.Players[i].Role = deck[i]
		s.Players[i].Alive = true
		s.Players[i].Votes = 0
	}

	s.Turn = 1
	s.RoleActions = map[Role]int{
		RoleDoctor:  s.Config.DoctorLimit,
		RoleSheriff: s.Config.SheriffLimit,
	}
	s.Phase = PhaseDistributingRoles
	m.appendEvent(s, "The game has started. Roles have been dealt.")
	return nil
}

// Advance moves the game to the next phase, running the resolution engines
// on the edges that require them. A winner produced on any edge forces
// GAME_OVER and suppresses the normal transition.
func (m *Machine) Advance(s *SessionState) error {
	if s.Phase == PhaseGameOver {
		return ErrTerminalPhase
	}
	next, ok := NextPhase(s.Phase, s.Turn, s.Config)
	if !ok {
		return ErrWrongPhase
	}

	// Leaving VOTING: tally the ledger. A unique winner is eliminated and
	// may end the game; a tie or an empty ballot proceeds without a death.
	if s.Phase == PhaseVoting {
		outcome := ResolveVotes(s.Votes, s.Players)
		if outcome.EliminatedID != "" {
			gameOver, err := m.Eliminate(s, outcome.EliminatedID)
			if err != nil {
				return err
			}
			if gameOver {
				return nil
			}
		} else {
			m.appendEvent(s, "The vote ended in a tie. Nobody was eliminated.")
			s.Votes = map[string]string{}
			clearVoteCounts(s)
		}
	}

	// Entering MORNING_ANNOUNCEMENT: compute (but do not apply) the night
	// result, clear the action record, and advance the turn counter.
	if s.Phase.IsNight() && next == PhaseMorning {
		res := ResolveNight(s.NightAction.VampireTarget, s.NightAction.DoctorTarget, s.Players)
		s.NightResult = &res
		s.NightAction = NightAction{}
		s.Turn++
	}

	// Leaving MORNING_ANNOUNCEMENT: apply the previously computed result,
	// then check for a winner.
	if s.Phase == PhaseMorning && next == PhaseDayDiscussion {
		var result NightResult
		if s.NightResult != nil {
			result = *s.NightResult
		}
		players, desc := ApplyNightResult(result, s.Players)
		s.Players = players
		m.appendEvent(s, desc)
		if winner, reason, over := EvaluateWin(s.Players, nil); over {
			m.finish(s, winner, reason)
			return nil
		}
	}

	// Entering VOTING: the ledger and per-player tallies start empty.
	if next == PhaseVoting {
		s.Votes = map[string]string{}
		clearVoteCounts(s)
		s.ActiveVoter = ""
	}

	s.Phase = next
	return nil
}

// Eliminate marks the player dead, clears the ledger and tallies, logs the
// event, and runs the jester-first win check. Returns whether the game
// ended.
func (m *Machine) Eliminate(s *SessionState, playerID string) (bool, error) {
	eliminated, ok := s.FindPlayer(playerID)
	if !ok {
		return false, ErrUnknownPlayer
	}
	for i := range s.Players {
		if s.Players[i].ID == playerID {
			s.Players[i].Alive = false
		}
		s.Players[i].Votes = 0
	}
	s.Votes = map[string]string{}
	m.appendEvent(s, fmt.Sprintf("%s was eliminated by the village vote.", eliminated.Name))

	if winner, reason, over := EvaluateWin(s.Players, &eliminated); over {
		m.finish(s, winner, reason)
		return true, nil
	}
	return false, nil
}

func (m *Machine) finish(s *SessionState, winner Winner, reason string) {
	s.Winner = winner
	s.WinReason = reason
	m.appendEvent(s, reason)
	s.Phase = PhaseGameOver
}

func (m *Machine) appendEvent(s *SessionState, description string) {
	s.Events = append(s.Events, Event{
		Turn:        s.Turn,
		Phase:       s.Phase,
		Description: description,
		Timestamp:   m.now().UnixMilli(),
	})
}

func clearVoteCounts(s *SessionState) {
	for i := range s.Players {
		s.Players[i].Votes = 0
	}
}

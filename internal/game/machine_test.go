package game

import (
	"errors"
	"testing"
)

func startedState(t *testing.T, m *Machine, names []string, cfg Config) *SessionState {
	t.Helper()
	s := NewState()
	for i, name := range names {
		s.Players = append(s.Players, Player{ID: "p" + string(rune('1'+i)), Name: name, Alive: true})
	}
	s.Config = cfg
	if err := m.Start(s); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func setRole(s *SessionState, id string, role Role) {
	for i := range s.Players {
		if s.Players[i].ID == id {
			s.Players[i].Role = role
		} else if s.Players[i].Role == role {
			s.Players[i].Role = RoleVillager
		}
	}
}

func TestStartRequiresSetupPhase(t *testing.T) {
	m := NewMachine(1)
	s := startedState(t, m, []string{"A", "B", "C", "D"}, Config{VampireCount: 1, DoctorLimit: 1, SheriffLimit: 1, DiscussionDuration: 3})
	if err := m.Start(s); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("second start should fail with ErrWrongPhase, got %v", err)
	}
}

func TestStartRequiresFourPlayers(t *testing.T) {
	m := NewMachine(1)
	s := NewState()
	s.Players = []Player{{ID: "p1", Name: "A", Alive: true}, {ID: "p2", Name: "B", Alive: true}, {ID: "p3", Name: "C", Alive: true}}
	s.Config = Config{VampireCount: 1, DoctorLimit: 1, SheriffLimit: 1, DiscussionDuration: 3}
	if err := m.Start(s); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("expected ErrNotEnoughPlayers, got %v", err)
	}
	if s.Phase != PhaseSetup || s.Turn != 0 {
		t.Error("failed start must not mutate state")
	}
}

func TestStartDealsRolesAndCounters(t *testing.T) {
	m := NewMachine(7)
	cfg := Config{VampireCount: 1, HasDoctor: true, DoctorLimit: 2, SheriffLimit: 1, DiscussionDuration: 3}
	s := startedState(t, m, []string{"A", "B", "C", "D", "E"}, cfg)

	if s.Phase != PhaseDistributingRoles {
		t.Errorf("phase %s, want DISTRIBUTING_ROLES", s.Phase)
	}
	if s.Turn != 1 {
		t.Errorf("turn %d, want 1", s.Turn)
	}
	if s.RoleActions[RoleDoctor] != 2 || s.RoleActions[RoleSheriff] != 1 {
		t.Errorf("role counters wrong: %v", s.RoleActions)
	}
	counts := map[Role]int{}
	for _, p := range s.Players {
		if p.Role == "" {
			t.Fatalf("player %s has no role", p.ID)
		}
		counts[p.Role]++
	}
	if counts[RoleVampire] != 1 || counts[RoleDoctor] != 1 || counts[RoleVillager] != 3 {
		t.Errorf("role multiset wrong: %v", counts)
	}
	if len(s.Events) != 1 {
		t.Errorf("expected one start event, got %d", len(s.Events))
	}
}

func TestAdvanceFromGameOverIsIdempotent(t *testing.T) {
	m := NewMachine(1)
	s := NewState()
	s.Phase = PhaseGameOver
	s.Winner = WinnerVampires
	before := s.Clone()

	for i := 0; i < 2; i++ {
		if err := m.Advance(s); !errors.Is(err, ErrTerminalPhase) {
			t.Fatalf("advance %d: expected ErrTerminalPhase, got %v", i, err)
		}
	}
	if s.Phase != before.Phase || s.Winner != before.Winner || len(s.Events) != len(before.Events) {
		t.Error("advance from GAME_OVER must not change state")
	}
}

func TestAdvanceVotingTieProceedsToNight(t *testing.T) {
	m := NewMachine(3)
	cfg := Config{VampireCount: 1, DoctorLimit: 1, SheriffLimit: 1, DiscussionDuration: 3}
	s := startedState(t, m, []string{"A", "B", "C", "D", "E"}, cfg)
	s.Phase = PhaseVoting
	s.Turn = 2
	s.Votes = map[string]string{"p1": "p2", "p3": "p4"}

	if err := m.Advance(s); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if s.Phase != PhaseNight {
		t.Errorf("tie should proceed to NIGHT, got %s", s.Phase)
	}
	if len(s.Votes) != 0 {
		t.Error("ledger must be cleared after resolution")
	}
	for _, p := range s.Players {
		if !p.Alive {
			t.Error("nobody should die on a tie")
		}
	}
}

func TestAdvanceVotingJesterElimination(t *testing.T) {
	m := NewMachine(3)
	cfg := Config{VampireCount: 1, HasJester: true, DoctorLimit: 1, SheriffLimit: 1, DiscussionDuration: 3}
	s := startedState(t, m, []string{"A", "B", "C", "D", "E"}, cfg)
	setRole(s, "p1", RoleJester)
	s.Phase = PhaseVoting
	s.Turn = 2
	s.Votes = map[string]string{"p2": "p1", "p3": "p1", "p4": "p2"}

	if err := m.Advance(s); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if s.Phase != PhaseGameOver {
		t.Fatalf("phase %s, want GAME_OVER", s.Phase)
	}
	if s.Winner != WinnerJester {
		t.Errorf("winner %s, want JESTER", s.Winner)
	}
}

// The end-to-end scenario: 4 players, 1 vampire, no specials. Night kill on
// turn 1, then the village votes out the vampire.
func TestFullGameScenario(t *testing.T) {
	m := NewMachine(11)
	cfg := Config{VampireCount: 1, DoctorLimit: 1, SheriffLimit: 1, DiscussionDuration: 3}
	s := startedState(t, m, []string{"A", "B", "C", "D"}, cfg)
	// Pin the vampire to p4 so the script below is deterministic.
	setRole(s, "p4", RoleVampire)

	counts := map[Role]int{}
	for _, p := range s.Players {
		counts[p.Role]++
	}
	if counts[RoleVampire] != 1 || counts[RoleVillager] != 3 {
		t.Fatalf("role multiset wrong: %v", counts)
	}

	mustAdvance := func(want Phase) {
		t.Helper()
		if err := m.Advance(s); err != nil {
			t.Fatalf("advance to %s: %v", want, err)
		}
		if s.Phase != want {
			t.Fatalf("phase %s, want %s", s.Phase, want)
		}
	}

	mustAdvance(PhaseDayDiscussion) // narrative pause ends
	mustAdvance(PhaseNight)         // turn 1: voting skipped
	mustAdvance(PhaseNightVampire)

	s.NightAction.VampireTarget = "p1" // vampire targets A
	mustAdvance(PhaseMorning)

	if s.Turn != 2 {
		t.Errorf("turn %d after morning, want 2", s.Turn)
	}
	if s.NightResult == nil || s.NightResult.Type != NightDeath || s.NightResult.VictimID != "p1" {
		t.Fatalf("night result wrong: %+v", s.NightResult)
	}
	if p, _ := s.FindPlayer("p1"); !p.Alive {
		t.Fatal("death must not be applied before morning is narrated")
	}

	mustAdvance(PhaseDayDiscussion) // death applied here
	if p, _ := s.FindPlayer("p1"); p.Alive {
		t.Fatal("A should be dead after the announcement")
	}
	found := false
	for _, e := range s.Events {
		if e.Description == "A was killed by the vampires during the night." {
			found = true
		}
	}
	if !found {
		t.Error("event log missing the night kill")
	}

	// 1 vampire vs 2 villagers: no winner yet.
	if s.Winner != "" {
		t.Fatalf("unexpected winner %s", s.Winner)
	}

	mustAdvance(PhaseVoting) // turn 2: voting happens now
	s.Votes = map[string]string{"p2": "p4", "p3": "p4"}

	if err := m.Advance(s); err != nil {
		t.Fatalf("final advance: %v", err)
	}
	if s.Phase != PhaseGameOver {
		t.Fatalf("phase %s, want GAME_OVER", s.Phase)
	}
	if s.Winner != WinnerVillagers {
		t.Errorf("winner %s, want VILLAGERS", s.Winner)
	}
	if p, _ := s.FindPlayer("p4"); p.Alive {
		t.Error("the vampire should be dead")
	}
}

package game

import "strings"

// Phase is a state of the game cycle.
type Phase string

const (
	PhaseSetup             Phase = "SETUP"
	PhaseDistributingRoles Phase = "DISTRIBUTING_ROLES"
	PhaseNight             Phase = "NIGHT"
	PhaseNightVampire      Phase = "NIGHT_VAMPIRE"
	PhaseNightDoctor       Phase = "NIGHT_DOCTOR"
	PhaseNightSheriff      Phase = "NIGHT_SHERIFF"
	PhaseMorning           Phase = "MORNING_ANNOUNCEMENT"
	PhaseDayDiscussion     Phase = "DAY_DISCUSSION"
	PhaseVoting            Phase = "VOTING"
	PhaseGameOver          Phase = "GAME_OVER"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhaseSetup, PhaseDistributingRoles, PhaseNight, PhaseNightVampire,
		PhaseNightDoctor, PhaseNightSheriff, PhaseMorning, PhaseDayDiscussion,
		PhaseVoting, PhaseGameOver:
		return true
	}
	return false
}

// IsNight reports whether p is the night phase or one of its sub-phases.
func (p Phase) IsNight() bool {
	return strings.HasPrefix(string(p), "NIGHT")
}

// transitionRule is one row of the phase transition table: from the given
// phase, if the guard passes (nil guard always passes), go to the given
// phase. Rules are evaluated in order; the first match wins.
type transitionRule struct {
	from  Phase
	guard func(turn int, cfg Config) bool
	to    Phase
}

func isFirstTurn(turn int, _ Config) bool { return turn == 1 }

func hasDoctor(_ int, cfg Config) bool { return cfg.HasDoctor }

func hasSheriff(_ int, cfg Config) bool { return cfg.HasSheriff }

// transitionTable is the full phase cycle. SETUP leaves only through
// StartGame, and GAME_OVER has no outgoing rule at all: it is terminal
// until a reset.
var transitionTable = []transitionRule{
	{PhaseDistributingRoles, nil, PhaseDayDiscussion},
	{PhaseDayDiscussion, isFirstTurn, PhaseNight}, // no vote on the opening day
	{PhaseDayDiscussion, nil, PhaseVoting},
	{PhaseVoting, nil, PhaseNight},
	{PhaseNight, nil, PhaseNightVampire},
	{PhaseNightVampire, hasDoctor, PhaseNightDoctor},
	{PhaseNightVampire, hasSheriff, PhaseNightSheriff},
	{PhaseNightVampire, nil, PhaseMorning},
	{PhaseNightDoctor, hasSheriff, PhaseNightSheriff},
	{PhaseNightDoctor, nil, PhaseMorning},
	{PhaseNightSheriff, nil, PhaseMorning},
	{PhaseMorning, nil, PhaseDayDiscussion},
}

// NextPhase computes the phase following current for the given turn and
// config. ok is false when current has no outgoing transition (SETUP,
// GAME_OVER, or an unknown phase).
func NextPhase(current Phase, turn int, cfg Config) (next Phase, ok bool) {
	for _, rule := range transitionTable {
		if rule.from != current {
			continue
		}
		if rule.guard == nil || rule.guard(turn, cfg) {
			return rule.to, true
		}
	}
	return "", false
}

package game

import "encoding/json"

// Player is one entry in the roster.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role,omitempty"`
	Alive bool   `json:"isAlive"`
	// Votes is the transient per-round tally shown next to the player
	// during voting; reset whenever the ledger clears.
	Votes int `json:"votes"`
}

// NightAction is the transient per-round record of night targets, plus the
// sheriff's cached investigation result for display.
type NightAction struct {
	VampireTarget string `json:"vampireTarget,omitempty"`
	DoctorTarget  string `json:"doctorTarget,omitempty"`
	SheriffTarget string `json:"sheriffTarget,omitempty"`
	// SheriffResult is "vampire" or "villager" once an investigation ran.
	SheriffResult string `json:"sheriffResult,omitempty"`
}

// Event is one entry of the append-only narrative log.
type Event struct {
	Turn        int    `json:"turn"`
	Phase       Phase  `json:"phase"`
	Description string `json:"description"`
	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// SessionState is the full authoritative game state. Both views render from
// it; only the session store mutates it.
type SessionState struct {
	Phase       Phase             `json:"phase"`
	Turn        int               `json:"turn"`
	Players     []Player          `json:"players"`
	NightAction NightAction       `json:"nightAction"`
	Events      []Event           `json:"events"`
	Winner      Winner            `json:"winner,omitempty"`
	WinReason   string            `json:"winReason,omitempty"`
	Config      Config            `json:"gameConfig"`
	Votes       map[string]string `json:"votes"`
	RoleActions map[Role]int      `json:"roleActions"`
	NightResult *NightResult      `json:"nightResult"`
	ActiveVoter string            `json:"activeVoter,omitempty"`
}

// Persisted state keys. Each maps to one independently (de)serialized JSON
// value; unknown keys in a snapshot are ignored.
const (
	KeyPhase       = "phase"
	KeyTurn        = "turn"
	KeyPlayers     = "players"
	KeyNightAction = "nightAction"
	KeyEvents      = "events"
	KeyWinner      = "winner"
	KeyWinReason   = "winReason"
	KeyGameConfig  = "gameConfig"
	KeyVotes       = "votes"
	KeyRoleActions = "roleActions"
	KeyNightResult = "nightResult"
	KeyActiveVoter = "activeVoter"
)

// StateKeys lists every persisted key in a stable order.
var StateKeys = []string{
	KeyPhase, KeyTurn, KeyPlayers, KeyNightAction, KeyEvents, KeyWinner,
	KeyWinReason, KeyGameConfig, KeyVotes, KeyRoleActions, KeyNightResult,
	KeyActiveVoter,
}

// NewState returns the initial session state: SETUP, turn 0, empty roster.
func NewState() *SessionState {
	return &SessionState{
		Phase:       PhaseSetup,
		Turn:        0,
		Players:     []Player{},
		Events:      []Event{},
		Config:      DefaultConfig(0),
		Votes:       map[string]string{},
		RoleActions: map[Role]int{RoleDoctor: 1, RoleSheriff: 1},
	}
}

// Clone returns a deep copy of the state.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	out.Players = make([]Player, len(s.Players))
	copy(out.Players, s.Players)
	out.Events = make([]Event, len(s.Events))
	copy(out.Events, s.Events)
	out.Votes = make(map[string]string, len(s.Votes))
	for k, v := range s.Votes {
		out.Votes[k] = v
	}
	out.RoleActions = make(map[Role]int, len(s.RoleActions))
	for k, v := range s.RoleActions {
		out.RoleActions[k] = v
	}
	if s.NightResult != nil {
		nr := *s.NightResult
		out.NightResult = &nr
	}
	return &out
}

// Snapshot serializes the state as a flat key→JSON-value set, one record per
// persisted entity.
func (s *SessionState) Snapshot() map[string]json.RawMessage {
	m := make(map[string]json.RawMessage, len(StateKeys))
	for _, key := range StateKeys {
		m[key] = s.MarshalKey(key)
	}
	return m
}

// MarshalKey serializes a single persisted key.
func (s *SessionState) MarshalKey(key string) json.RawMessage {
	var v interface{}
	switch key {
	case KeyPhase:
		v = s.Phase
	case KeyTurn:
		v = s.Turn
	case KeyPlayers:
		v = s.Players
	case KeyNightAction:
		v = s.NightAction
	case KeyEvents:
		v = s.Events
	case KeyWinner:
		v = s.Winner
	case KeyWinReason:
		v = s.WinReason
	case KeyGameConfig:
		v = s.Config
	case KeyVotes:
		v = s.Votes
	case KeyRoleActions:
		v = s.RoleActions
	case KeyNightResult:
		v = s.NightResult
	case KeyActiveVoter:
		v = s.ActiveVoter
	default:
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// StateFromSnapshot reconstructs a SessionState from a flat key→JSON set.
// Each key loads independently: a missing or corrupt value falls back to its
// documented default and never aborts the whole load.
func StateFromSnapshot(m map[string]json.RawMessage) *SessionState {
	s := NewState()
	if m == nil {
		return s
	}
	for key, value := range m {
		s.ApplyUpdate(key, value)
	}
	return s
}

// ApplyUpdate absorbs one external (key, newValue) change notification into
// the state. Unknown keys are ignored; an unparseable value resets that key
// to its default.
func (s *SessionState) ApplyUpdate(key string, value json.RawMessage) {
	switch key {
	case KeyPhase:
		var p Phase
		if unmarshal(value, &p) && p.Valid() {
			s.Phase = p
		} else {
			s.Phase = PhaseSetup
		}
	case KeyTurn:
		var n int
		if unmarshal(value, &n) {
			s.Turn = n
		} else {
			s.Turn = 0
		}
	case KeyPlayers:
		var players []Player
		if unmarshal(value, &players) && players != nil {
			s.Players = players
		} else {
			s.Players = []Player{}
		}
	case KeyNightAction:
		var na NightAction
		if unmarshal(value, &na) {
			s.NightAction = na
		} else {
			s.NightAction = NightAction{}
		}
	case KeyEvents:
		var events []Event
		if unmarshal(value, &events) && events != nil {
			s.Events = events
		} else {
			s.Events = []Event{}
		}
	case KeyWinner:
		var w Winner
		if unmarshal(value, &w) {
			s.Winner = w
		} else {
			s.Winner = ""
		}
	case KeyWinReason:
		var r string
		if unmarshal(value, &r) {
			s.WinReason = r
		} else {
			s.WinReason = ""
		}
	case KeyGameConfig:
		var cfg Config
		if unmarshal(value, &cfg) {
			s.Config = cfg
		} else {
			s.Config = DefaultConfig(len(s.Players))
		}
	case KeyVotes:
		var votes map[string]string
		if unmarshal(value, &votes) && votes != nil {
			s.Votes = votes
		} else {
			s.Votes = map[string]string{}
		}
	case KeyRoleActions:
		var actions map[Role]int
		if unmarshal(value, &actions) && actions != nil {
			s.RoleActions = actions
		} else {
			s.RoleActions = map[Role]int{RoleDoctor: 1, RoleSheriff: 1}
		}
	case KeyNightResult:
		var nr *NightResult
		if unmarshal(value, &nr) {
			s.NightResult = nr
		} else {
			s.NightResult = nil
		}
	case KeyActiveVoter:
		var id string
		if unmarshal(value, &id) {
			s.ActiveVoter = id
		} else {
			s.ActiveVoter = ""
		}
	}
}

func unmarshal(raw json.RawMessage, dst interface{}) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// AlivePlayers returns the living subset of the roster.
func (s *SessionState) AlivePlayers() []Player {
	out := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// FindPlayer returns the roster entry with the given id.
func (s *SessionState) FindPlayer(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

package game

import "fmt"

// NightOutcome is the kind of result a resolved night produces.
type NightOutcome string

const (
	NightQuiet NightOutcome = "QUIET"
	NightDeath NightOutcome = "DEATH"
)

// NightResult is the single outcome of one resolved night. Computed once per
// night, applied once on the following morning transition.
type NightResult struct {
	Type       NightOutcome `json:"type"`
	VictimID   string       `json:"victimId,omitempty"`
	VictimName string       `json:"victimName,omitempty"`
}

// ResolveNight computes the pending outcome of a night from the collected
// targets. It never mutates player state.
//
// An unset vampire target means the vampires skipped: quiet. A vampire
// target matched by the doctor is a save: quiet. Anything else is a death.
func ResolveNight(vampireTargetID, doctorTargetID string, players []Player) NightResult {
	if vampireTargetID == "" {
		return NightResult{Type: NightQuiet}
	}
	if vampireTargetID == doctorTargetID {
		return NightResult{Type: NightQuiet}
	}
	res := NightResult{Type: NightDeath, VictimID: vampireTargetID}
	for _, p := range players {
		if p.ID == vampireTargetID {
			res.VictimName = p.Name
			break
		}
	}
	return res
}

// ApplyNightResult performs the alive-flag flip for a previously computed
// night result and returns the narrative event text. Must be invoked exactly
// once per night, after the result has been narrated.
func ApplyNightResult(res NightResult, players []Player) ([]Player, string) {
	if res.Type != NightDeath || res.VictimID == "" {
		return players, "The night passed quietly. Nobody died."
	}
	out := make([]Player, len(players))
	copy(out, players)
	name := res.VictimName
	for i := range out {
		if out[i].ID == res.VictimID {
			out[i].Alive = false
			if name == "" {
				name = out[i].Name
			}
		}
	}
	return out, fmt.Sprintf("%s was killed by the vampires during the night.", name)
}

package game

// Winner identifies the winning side of a finished game.
type Winner string

const (
	WinnerVillagers Winner = "VILLAGERS"
	WinnerVampires  Winner = "VAMPIRES"
	WinnerJester    Winner = "JESTER"
)

// Win reason texts, also appended to the event log.
const (
	ReasonVillagersWin = "All vampires have been eliminated. The villagers win!"
	ReasonVampiresWin  = "The vampires outnumber the village. The vampires win!"
	ReasonJesterWin    = "The jester was voted out by the village. The jester wins!"
)

// EvaluateWin decides whether the game has ended, given the current roster
// and, for vote eliminations, the player just eliminated. Pass nil for
// eliminated after a night death.
//
// A jester eliminated by vote wins immediately and overrides every other
// check. Otherwise the vampires win once they are at least as numerous as
// all remaining non-vampires combined, and the villagers win once no
// vampire is left alive.
func EvaluateWin(players []Player, eliminated *Player) (Winner, string, bool) {
	if eliminated != nil && eliminated.Role == RoleJester {
		return WinnerJester, ReasonJesterWin, true
	}

	vampires, nonVampires := 0, 0
	for _, p := range players {
		if !p.Alive {
			continue
		}
		if p.Role == RoleVampire {
			vampires++
		} else {
			nonVampires++
		}
	}

	if vampires == 0 {
		return WinnerVillagers, ReasonVillagersWin, true
	}
	if vampires >= nonVampires {
		return WinnerVampires, ReasonVampiresWin, true
	}
	return "", "", false
}

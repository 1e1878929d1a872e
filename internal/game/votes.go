package game

// VoteOutcome is the result of tallying one voting round.
type VoteOutcome struct {
	// EliminatedID is the unique top target, or empty on a tie or when no
	// living player voted.
	EliminatedID string
	Tie          bool
	// Counts holds the per-target tallies from living voters, for display.
	Counts map[string]int
}

// ResolveVotes tallies the ledger against the current roster. Only votes cast
// by living voters count; stale entries from players who died since voting
// are ignored. A unique maximum target with at least one vote is eliminated;
// two or more targets sharing the maximum is a tie and nobody is eliminated.
func ResolveVotes(votes map[string]string, players []Player) VoteOutcome {
	alive := make(map[string]bool, len(players))
	for _, p := range players {
		if p.Alive {
			alive[p.ID] = true
		}
	}

	counts := make(map[string]int)
	for voterID, targetID := range votes {
		if alive[voterID] {
			counts[targetID]++
		}
	}

	max := 0
	var top []string
	for targetID, n := range counts {
		switch {
		case n > max:
			max = n
			top = []string{targetID}
		case n == max:
			top = append(top, targetID)
		}
	}

	out := VoteOutcome{Counts: counts}
	if len(top) == 1 && max >= 1 {
		out.EliminatedID = top[0]
	} else if len(top) > 1 {
		out.Tie = true
	}
	return out
}

package game

import "math/rand"

// AssignRoles builds the role deck for a roster: the configured vampire
// count, one entry per enabled special role, and villagers for the rest,
// then returns an unbiased permutation of it.
//
// The villager fill clamps at zero: a config claiming more special roles
// than players yields a deck longer than the roster instead of crashing;
// callers zip the deck against the roster in order and ignore the excess.
func AssignRoles(playerCount int, cfg Config, rng *rand.Rand) []Role {
	deck := make([]Role, 0, playerCount)
	for i := 0; i < cfg.VampireCount; i++ {
		deck = append(deck, RoleVampire)
	}
	if cfg.HasDoctor {
		deck = append(deck, RoleDoctor)
	}
	if cfg.HasSheriff {
		deck = append(deck, RoleSheriff)
	}
	if cfg.HasJester {
		deck = append(deck, RoleJester)
	}
	for len(deck) < playerCount {
		deck = append(deck, RoleVillager)
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

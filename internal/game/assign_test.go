package game

import (
	"math/rand"
	"testing"
)

func countRoles(deck []Role) map[Role]int {
	counts := make(map[Role]int)
	for _, r := range deck {
		counts[r]++
	}
	return counts
}

func TestAssignRolesMultiset(t *testing.T) {
	cfg := Config{VampireCount: 2, HasDoctor: true, HasSheriff: true, HasJester: true,
		DoctorLimit: 1, SheriffLimit: 1, DiscussionDuration: 3}

	deck := AssignRoles(10, cfg, rand.New(rand.NewSource(1)))
	if len(deck) != 10 {
		t.Fatalf("deck length %d, want 10", len(deck))
	}
	counts := countRoles(deck)
	if counts[RoleVampire] != 2 {
		t.Errorf("vampires %d, want 2", counts[RoleVampire])
	}
	if counts[RoleDoctor] != 1 || counts[RoleSheriff] != 1 || counts[RoleJester] != 1 {
		t.Errorf("special counts wrong: %v", counts)
	}
	if counts[RoleVillager] != 5 {
		t.Errorf("villagers %d, want 5", counts[RoleVillager])
	}
}

func TestAssignRolesMultisetInvariantAcrossSeeds(t *testing.T) {
	cfg := Config{VampireCount: 1, HasDoctor: true, DoctorLimit: 1, SheriffLimit: 1, DiscussionDuration: 3}
	want := countRoles(AssignRoles(6, cfg, rand.New(rand.NewSource(0))))
	for seed := int64(1); seed < 20; seed++ {
		got := countRoles(AssignRoles(6, cfg, rand.New(rand.NewSource(seed))))
		for role, n := range want {
			if got[role] != n {
				t.Fatalf("seed %d: role %s count %d, want %d", seed, role, got[role], n)
			}
		}
	}
}

func TestAssignRolesShufflesOrder(t *testing.T) {
	cfg := Config{VampireCount: 3, HasDoctor: true, HasSheriff: true, HasJester: true,
		DoctorLimit: 1, SheriffLimit: 1, DiscussionDuration: 3}
	first := AssignRoles(12, cfg, rand.New(rand.NewSource(1)))
	differs := false
	for seed := int64(2); seed < 10 && !differs; seed++ {
		other := AssignRoles(12, cfg, rand.New(rand.NewSource(seed)))
		for i := range first {
			if first[i] != other[i] {
				differs = true
				break
			}
		}
	}
	if !differs {
		t.Error("decks identical across seeds; shuffle appears inert")
	}
}

func TestAssignRolesClampsVillagerFill(t *testing.T) {
	// Pathological config: more special roles than players. The villager
	// fill clamps at zero and the deck runs long instead of crashing.
	cfg := Config{VampireCount: 3, HasDoctor: true, HasSheriff: true, HasJester: true,
		DoctorLimit: 1, SheriffLimit: 1, DiscussionDuration: 3}
	deck := AssignRoles(4, cfg, rand.New(rand.NewSource(1)))
	if len(deck) != 6 {
		t.Fatalf("deck length %d, want 6", len(deck))
	}
	if countRoles(deck)[RoleVillager] != 0 {
		t.Errorf("expected no villagers in oversubscribed deck, got %v", countRoles(deck))
	}
}

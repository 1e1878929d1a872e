package game

import "testing"

func nightRoster() []Player {
	return []Player{
		{ID: "p1", Name: "Ada", Role: RoleVampire, Alive: true},
		{ID: "p2", Name: "Burak", Role: RoleDoctor, Alive: true},
		{ID: "p3", Name: "Cem", Role: RoleVillager, Alive: true},
	}
}

func TestResolveNightVampireSkipped(t *testing.T) {
	res := ResolveNight("", "p3", nightRoster())
	if res.Type != NightQuiet {
		t.Errorf("expected quiet night, got %+v", res)
	}
}

func TestResolveNightDoctorSave(t *testing.T) {
	res := ResolveNight("p3", "p3", nightRoster())
	if res.Type != NightQuiet {
		t.Errorf("expected save to yield quiet night, got %+v", res)
	}
	if res.VictimID != "" {
		t.Errorf("quiet night must carry no victim, got %q", res.VictimID)
	}
}

func TestResolveNightDeath(t *testing.T) {
	res := ResolveNight("p3", "p2", nightRoster())
	if res.Type != NightDeath {
		t.Fatalf("expected death, got %+v", res)
	}
	if res.VictimID != "p3" || res.VictimName != "Cem" {
		t.Errorf("victim p3/Cem, got %s/%s", res.VictimID, res.VictimName)
	}
}

func TestResolveNightDeathWithoutDoctor(t *testing.T) {
	res := ResolveNight("p2", "", nightRoster())
	if res.Type != NightDeath || res.VictimID != "p2" {
		t.Errorf("expected death of p2, got %+v", res)
	}
}

func TestResolveNightDoesNotMutate(t *testing.T) {
	players := nightRoster()
	ResolveNight("p3", "", players)
	for _, p := range players {
		if !p.Alive {
			t.Fatalf("ResolveNight mutated alive flag of %s", p.ID)
		}
	}
}

func TestApplyNightResultDeath(t *testing.T) {
	players := nightRoster()
	res := NightResult{Type: NightDeath, VictimID: "p3", VictimName: "Cem"}
	updated, desc := ApplyNightResult(res, players)

	if players[2].Alive != true {
		t.Error("input slice must not be mutated")
	}
	if updated[2].Alive {
		t.Error("victim should be dead in the result")
	}
	if desc == "" {
		t.Error("expected a narrative event")
	}
}

func TestApplyNightResultQuiet(t *testing.T) {
	players := nightRoster()
	updated, desc := ApplyNightResult(NightResult{Type: NightQuiet}, players)
	for i, p := range updated {
		if !p.Alive {
			t.Errorf("player %d died on a quiet night", i)
		}
	}
	if desc == "" {
		t.Error("quiet nights still get a narrative event")
	}
}

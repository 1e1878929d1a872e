package game

import "testing"

func TestDefaultConfigScaling(t *testing.T) {
	cases := []struct {
		players    int
		vampires   int
		hasDoctor  bool
		hasJester  bool
		hasSheriff bool
	}{
		{0, 1, false, false, false},
		{3, 1, false, false, false},
		{4, 1, true, false, false},
		{5, 1, true, true, false},
		{6, 1, true, true, true},
		{7, 2, true, true, true},
		{11, 2, true, true, true},
		{12, 3, true, true, true},
		{30, 3, true, true, true},
	}
	for _, tc := range cases {
		cfg := DefaultConfig(tc.players)
		if cfg.VampireCount != tc.vampires {
			t.Errorf("%d players: vampires %d, want %d", tc.players, cfg.VampireCount, tc.vampires)
		}
		if cfg.HasDoctor != tc.hasDoctor {
			t.Errorf("%d players: doctor %v, want %v", tc.players, cfg.HasDoctor, tc.hasDoctor)
		}
		if cfg.HasJester != tc.hasJester {
			t.Errorf("%d players: jester %v, want %v", tc.players, cfg.HasJester, tc.hasJester)
		}
		if cfg.HasSheriff != tc.hasSheriff {
			t.Errorf("%d players: sheriff %v, want %v", tc.players, cfg.HasSheriff, tc.hasSheriff)
		}
		if cfg.DoctorLimit != 1 || cfg.SheriffLimit != 1 {
			t.Errorf("%d players: expected default limits of 1", tc.players)
		}
		if cfg.DiscussionDuration != 3 {
			t.Errorf("%d players: discussion duration %d, want 3", tc.players, cfg.DiscussionDuration)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	base := DefaultConfig(6)

	if err := base.Validate(6); err != nil {
		t.Fatalf("default config for 6 should validate: %v", err)
	}

	tooManyVampires := base
	tooManyVampires.VampireCount = 4
	if err := tooManyVampires.Validate(6); err == nil {
		t.Error("expected error for vampire count above half the roster")
	}

	zeroVampires := base
	zeroVampires.VampireCount = 0
	if err := zeroVampires.Validate(6); err == nil {
		t.Error("expected error for zero vampires")
	}

	badLimit := base
	badLimit.DoctorLimit = 11
	if err := badLimit.Validate(6); err == nil {
		t.Error("expected error for doctor limit above 10")
	}

	badDuration := base
	badDuration.DiscussionDuration = 0
	if err := badDuration.Validate(6); err == nil {
		t.Error("expected error for zero discussion duration")
	}
}

func TestConfigApply(t *testing.T) {
	cfg := DefaultConfig(8)

	two := 2
	yes := true
	next, err := cfg.Apply(ConfigPatch{VampireCount: &two, HasJester: &yes}, 8)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if next.VampireCount != 2 || !next.HasJester {
		t.Errorf("patch not applied: %+v", next)
	}
	// Untouched fields survive the merge.
	if next.HasDoctor != cfg.HasDoctor || next.DiscussionDuration != cfg.DiscussionDuration {
		t.Errorf("unpatched fields changed: %+v", next)
	}

	five := 5
	same, err := cfg.Apply(ConfigPatch{VampireCount: &five}, 8)
	if err == nil {
		t.Error("expected validation error for 5 vampires among 8 players")
	}
	if same != cfg {
		t.Error("failed apply must leave config unchanged")
	}
}

func TestBalanceScore(t *testing.T) {
	// 6 players, 1 vampire (-4), doctor (+3), sheriff (+3), jester (0),
	// 2 villagers (+2) -> +4.
	cfg := DefaultConfig(6)
	if got := BalanceScore(6, cfg); got != 4 {
		t.Errorf("balance score %d, want 4", got)
	}

	// Empty roster is always neutral.
	if got := BalanceScore(0, cfg); got != 0 {
		t.Errorf("balance score for empty roster %d, want 0", got)
	}

	// Specials exceeding the roster clamp the villager fill at zero.
	crowded := Config{VampireCount: 3, HasDoctor: true, HasSheriff: true, HasJester: true,
		DoctorLimit: 1, SheriffLimit: 1, DiscussionDuration: 3}
	want := 3*Catalog[RoleVampire].Weight + Catalog[RoleDoctor].Weight + Catalog[RoleSheriff].Weight
	if got := BalanceScore(4, crowded); got != want {
		t.Errorf("balance score %d, want %d", got, want)
	}
}

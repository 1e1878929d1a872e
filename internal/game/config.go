package game

import "fmt"

// Limits for configurable fields.
const (
	MinPlayersToStart  = 4
	MaxPlayers         = 30
	MaxRoleActionLimit = 10
	MinDiscussionMin   = 1
	MaxDiscussionMin   = 10
)

// Config is the per-game rules configuration. All fields carry named,
// range-validated values; use Apply to merge a patch.
type Config struct {
	VampireCount       int  `json:"vampireCount"`
	HasDoctor          bool `json:"hasDoctor"`
	HasSheriff         bool `json:"hasSheriff"`
	HasJester          bool `json:"hasJester"`
	DoctorLimit        int  `json:"doctorLimit"`
	SheriffLimit       int  `json:"sheriffLimit"`
	DiscussionDuration int  `json:"discussionDuration"` // minutes
}

// DefaultConfig derives the recommended configuration for a roster size.
// Vampires scale with headcount; special roles unlock as the party grows.
func DefaultConfig(playerCount int) Config {
	vampires := 1
	if playerCount >= 7 {
		vampires = 2
	}
	if playerCount >= 12 {
		vampires = 3
	}
	return Config{
		VampireCount:       vampires,
		HasDoctor:          playerCount >= 4,
		HasSheriff:         playerCount >= 6,
		HasJester:          playerCount >= 5,
		DoctorLimit:        1,
		SheriffLimit:       1,
		DiscussionDuration: 3,
	}
}

// SpecialCount returns the number of non-villager slots the config claims.
func (c Config) SpecialCount() int {
	n := c.VampireCount
	if c.HasDoctor {
		n++
	}
	if c.HasSheriff {
		n++
	}
	if c.HasJester {
		n++
	}
	return n
}

// Validate checks the config against a roster size. A zero playerCount skips
// the roster-dependent checks (setup screen with an empty roster).
func (c Config) Validate(playerCount int) error {
	if c.VampireCount < 1 {
		return fmt.Errorf("vampire count must be at least 1, got %d", c.VampireCount)
	}
	if playerCount > 0 && c.VampireCount > playerCount/2 {
		return fmt.Errorf("vampire count %d exceeds half the roster (%d players)", c.VampireCount, playerCount)
	}
	if c.DoctorLimit < 1 || c.DoctorLimit > MaxRoleActionLimit {
		return fmt.Errorf("doctor limit must be between 1 and %d, got %d", MaxRoleActionLimit, c.DoctorLimit)
	}
	if c.SheriffLimit < 1 || c.SheriffLimit > MaxRoleActionLimit {
		return fmt.Errorf("sheriff limit must be between 1 and %d, got %d", MaxRoleActionLimit, c.SheriffLimit)
	}
	if c.DiscussionDuration < MinDiscussionMin || c.DiscussionDuration > MaxDiscussionMin {
		return fmt.Errorf("discussion duration must be between %d and %d minutes, got %d", MinDiscussionMin, MaxDiscussionMin, c.DiscussionDuration)
	}
	return nil
}

// ConfigPatch is a partial config update. Nil fields are left unchanged.
type ConfigPatch struct {
	VampireCount       *int  `json:"vampireCount,omitempty"`
	HasDoctor          *bool `json:"hasDoctor,omitempty"`
	HasSheriff         *bool `json:"hasSheriff,omitempty"`
	HasJester          *bool `json:"hasJester,omitempty"`
	DoctorLimit        *int  `json:"doctorLimit,omitempty"`
	SheriffLimit       *int  `json:"sheriffLimit,omitempty"`
	DiscussionDuration *int  `json:"discussionDuration,omitempty"`
}

// Apply merges the patch into c and validates the result against playerCount.
// On validation failure the original config is returned unchanged.
func (c Config) Apply(p ConfigPatch, playerCount int) (Config, error) {
	next := c
	if p.VampireCount != nil {
		next.VampireCount = *p.VampireCount
	}
	if p.HasDoctor != nil {
		next.HasDoctor = *p.HasDoctor
	}
	if p.HasSheriff != nil {
		next.HasSheriff = *p.HasSheriff
	}
	if p.HasJester != nil {
		next.HasJester = *p.HasJester
	}
	if p.DoctorLimit != nil {
		next.DoctorLimit = *p.DoctorLimit
	}
	if p.SheriffLimit != nil {
		next.SheriffLimit = *p.SheriffLimit
	}
	if p.DiscussionDuration != nil {
		next.DiscussionDuration = *p.DiscussionDuration
	}
	if err := next.Validate(playerCount); err != nil {
		return c, err
	}
	return next, nil
}

// BalanceScore computes the advisory balance score for a roster size and
// config. Zero reads as balanced, positive favors the good side, negative the
// vampires. Purely advisory; never blocks a start.
func BalanceScore(playerCount int, c Config) int {
	if playerCount == 0 {
		return 0
	}
	score := c.VampireCount * Catalog[RoleVampire].Weight
	if c.HasDoctor {
		score += Catalog[RoleDoctor].Weight
	}
	if c.HasSheriff {
		score += Catalog[RoleSheriff].Weight
	}
	if c.HasJester {
		score += Catalog[RoleJester].Weight
	}
	villagers := playerCount - c.SpecialCount()
	if villagers < 0 {
		villagers = 0
	}
	score += villagers * Catalog[RoleVillager].Weight
	return score
}

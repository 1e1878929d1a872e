package game

// Role identifies one of the hidden role kinds a player can hold.
type Role string

// Role kinds.
const (
	RoleVillager Role = "VILLAGER"
	RoleVampire  Role = "VAMPIRE"
	RoleDoctor   Role = "DOCTOR"
	RoleSheriff  Role = "SHERIFF"
	RoleJester   Role = "JESTER"
)

// Alignment is the side a role plays for.
type Alignment string

const (
	AlignmentGood    Alignment = "good"
	AlignmentEvil    Alignment = "evil"
	AlignmentNeutral Alignment = "neutral"
)

// RoleInfo describes the static properties of a role kind.
// Weight is the advisory balance weight used only by the setup-time
// balance score; it never affects gameplay.
type RoleInfo struct {
	Name        string    `json:"name"`
	Alignment   Alignment `json:"alignment"`
	NightAction bool      `json:"night_action"`
	Weight      int       `json:"weight"`
	Description string    `json:"description"`
}

// Catalog holds the static definitions of every role kind.
var Catalog = map[Role]RoleInfo{
	RoleVillager: {
		Name:        "Villager",
		Alignment:   AlignmentGood,
		NightAction: false,
		Weight:      1,
		Description: "An innocent villager. Your goal is to survive and vote out the vampires.",
	},
	RoleVampire: {
		Name:        "Vampire",
		Alignment:   AlignmentEvil,
		NightAction: true,
		Weight:      -4,
		Description: "A creature of the night. Kill villagers at night and deceive them during the day.",
	},
	RoleDoctor: {
		Name:        "Doctor",
		Alignment:   AlignmentGood,
		NightAction: true,
		Weight:      3,
		Description: "Can save one person each night from a vampire attack. Can save themselves.",
	},
	RoleSheriff: {
		Name:        "Sheriff",
		Alignment:   AlignmentGood,
		NightAction: true,
		Weight:      3,
		Description: "Can investigate one person each night to reveal their true identity.",
	},
	RoleJester: {
		Name:        "Jester",
		Alignment:   AlignmentNeutral,
		NightAction: false,
		Weight:      0,
		Description: "A chaotic neutral. Your ONLY goal is to get voted out by the village during the day.",
	},
}

// AllRoles lists every role kind in a stable order.
var AllRoles = []Role{RoleVillager, RoleVampire, RoleDoctor, RoleSheriff, RoleJester}

// Valid reports whether r is a known role kind.
func (r Role) Valid() bool {
	_, ok := Catalog[r]
	return ok
}

// Info returns the catalog entry for r. Unknown roles return a zero RoleInfo.
func (r Role) Info() RoleInfo {
	return Catalog[r]
}

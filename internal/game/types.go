package game

// Character is one combatant on the roster: resource pools with their
// maximums, flat armor, and the condition flags the rules track.
type Character struct {
	Name string

	Vigor      int
	MaxVigor   int
	Clarity    int
	MaxClarity int
	Spirit     int
	MaxSpirit  int
	Guard      int
	MaxGuard   int
	Armor      int

	MortallyWounded bool
	Wounded         bool
	Impaired        bool
	Fatigued        bool
	Scarred         bool
	Alive           bool

	Notes        string
	ProfileImage []byte
}

// DamageReport describes what a single hit did to a character. Events are
// in the order the mitigation steps ran.
type DamageReport struct {
	OriginalDamage int
	FinalDamage    int
	Events         []string

	Wounded     bool // vigor was lost on this hit
	MortalWound bool // the hit removed at least half of the vigor it found
	Scar        bool // guard went from positive to exactly zero
	Slain       bool // the character is dead after the hit
}

// Condition names a flag that can be toggled by hand.
type Condition string

const (
	ConditionImpaired Condition = "impaired"
	ConditionFatigued Condition = "fatigued"
	ConditionScarred  Condition = "scarred"
)

// HealthStatus is the headline status shown for a character.
type HealthStatus string

const (
	StatusHealthy         HealthStatus = "healthy"
	StatusWounded         HealthStatus = "wounded"
	StatusMortallyWounded HealthStatus = "mortally wounded"
	StatusSlain           HealthStatus = "slain"
)

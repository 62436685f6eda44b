package game

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLen is the longest character name the roster accepts, in runes.
const MaxNameLen = 64

// NewCharacter returns a living character with every pool full.
func NewCharacter(name string, vigor, clarity, spirit, guard, armor int) *Character {
	return &Character{
		Name:       name,
		Vigor:      vigor,
		MaxVigor:   vigor,
		Clarity:    clarity,
		MaxClarity: clarity,
		Spirit:     spirit,
		MaxSpirit:  spirit,
		Guard:      guard,
		MaxGuard:   guard,
		Armor:      armor,
		Alive:      true,
	}
}

// ValidateName trims name and checks it is usable as a roster key.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return "", fmt.Errorf("%w: max %d characters", ErrNameTooLong, MaxNameLen)
	}
	return name, nil
}

// HealVigor adds amount to vigor up to the maximum. Reaching the maximum
// clears both wound flags; a partial heal leaves them alone.
func HealVigor(c *Character, amount int) {
	c.Vigor = clamp(c.Vigor+amount, 0, c.MaxVigor)
	if c.Vigor == c.MaxVigor {
		c.Wounded = false
		c.MortallyWounded = false
	}
}

// RestoreGuard adds amount to guard up to the maximum. It never clears a scar.
func RestoreGuard(c *Character, amount int) {
	c.Guard = clamp(c.Guard+amount, 0, c.MaxGuard)
}

// ResetToFull refills every pool and clears every condition. It is the only
// way back from death short of editing the record by hand.
func ResetToFull(c *Character) {
	c.Vigor = c.MaxVigor
	c.Clarity = c.MaxClarity
	c.Spirit = c.MaxSpirit
	c.Guard = c.MaxGuard
	c.MortallyWounded = false
	c.Wounded = false
	c.Impaired = false
	c.Fatigued = false
	c.Scarred = false
	c.Alive = true
}

// SetMaximums replaces the pool maximums and armor, pulling each current
// value down if it no longer fits.
func SetMaximums(c *Character, maxVigor, maxClarity, maxSpirit, maxGuard, armor int) {
	c.MaxVigor = maxVigor
	c.MaxClarity = maxClarity
	c.MaxSpirit = maxSpirit
	c.MaxGuard = maxGuard
	c.Armor = armor

	c.Vigor = clamp(c.Vigor, 0, c.MaxVigor)
	c.Clarity = clamp(c.Clarity, 0, c.MaxClarity)
	c.Spirit = clamp(c.Spirit, 0, c.MaxSpirit)
	c.Guard = clamp(c.Guard, 0, c.MaxGuard)
}

// ValidateMaximums checks the values SetMaximums would accept from a form.
func ValidateMaximums(maxVigor, maxClarity, maxSpirit, maxGuard, armor int) error {
	switch {
	case maxVigor < 1:
		return fmt.Errorf("%w: max vigor must be at least 1", ErrInvalidStat)
	case maxClarity < 1:
		return fmt.Errorf("%w: max clarity must be at least 1", ErrInvalidStat)
	case maxSpirit < 1:
		return fmt.Errorf("%w: max spirit must be at least 1", ErrInvalidStat)
	case maxGuard < 0:
		return fmt.Errorf("%w: max guard must not be negative", ErrInvalidStat)
	case armor < 0:
		return fmt.Errorf("%w: armor must not be negative", ErrInvalidStat)
	}
	return nil
}

// AdjustVigor applies a signed manual change. Dropping to zero kills the
// character; landing on the maximum clears the wound flags.
func AdjustVigor(c *Character, delta int) {
	c.Vigor = clamp(c.Vigor+delta, 0, c.MaxVigor)
	if c.Vigor <= 0 {
		c.Alive = false
	} else if c.Vigor == c.MaxVigor {
		c.Wounded = false
		c.MortallyWounded = false
	}
}

// AdjustGuard applies a signed manual change to guard.
func AdjustGuard(c *Character, delta int) {
	c.Guard = clamp(c.Guard+delta, 0, c.MaxGuard)
}

// ToggleCondition flips one of the hand-managed condition flags.
func ToggleCondition(c *Character, cond Condition) error {
	switch cond {
	case ConditionImpaired:
		c.Impaired = !c.Impaired
	case ConditionFatigued:
		c.Fatigued = !c.Fatigued
	case ConditionScarred:
		c.Scarred = !c.Scarred
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCondition, cond)
	}
	return nil
}

// Status picks the headline status, worst first.
func Status(c *Character) HealthStatus {
	switch {
	case !c.Alive:
		return StatusSlain
	case c.MortallyWounded:
		return StatusMortallyWounded
	case c.Wounded:
		return StatusWounded
	default:
		return StatusHealthy
	}
}

// Clone returns a deep copy of c.
func (c *Character) Clone() *Character {
	cp := *c
	if c.ProfileImage != nil {
		cp.ProfileImage = append([]byte(nil), c.ProfileImage...)
	}
	return &cp
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

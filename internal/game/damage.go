package game

import "fmt"

// ApplyDamage resolves one hit against c. Damage is taken off by armor
// first, then guard, then vigor; each step only sees what the previous one
// let through. Armor is never reduced. A negative amount is a caller bug;
// validate with ValidateAmount first.
func ApplyDamage(c *Character, amount int) DamageReport {
	if amount < 0 {
		panic(fmt.Sprintf("game: ApplyDamage called with negative amount %d", amount))
	}

	rep := DamageReport{OriginalDamage: amount}
	remaining := amount

	if remaining > 0 && c.Armor > 0 {
		absorbed := min(remaining, c.Armor)
		remaining -= absorbed
		rep.Events = append(rep.Events, fmt.Sprintf("Armor absorbed %d damage", absorbed))
	}

	if remaining > 0 && c.Guard > 0 {
		loss := min(remaining, c.Guard)
		c.Guard -= loss
		remaining -= loss
		rep.Events = append(rep.Events, fmt.Sprintf("Guard reduced by %d (now %d)", loss, c.Guard))

		// guard was positive on entry to this step
		if c.Guard == 0 {
			c.Scarred = true
			rep.Scar = true
			rep.Events = append(rep.Events, "SCAR inflicted! (Guard reduced to 0)")
		}
	}

	if remaining > 0 {
		before := c.Vigor
		loss := min(remaining, c.Vigor)
		c.Vigor -= loss
		remaining -= loss
		rep.Events = append(rep.Events, fmt.Sprintf("Vigor reduced by %d (now %d)", loss, c.Vigor))

		if loss > 0 {
			c.Wounded = true
			rep.Wounded = true
			rep.Events = append(rep.Events, "Character is now WOUNDED!")
		}

		// loss >= before/2 without truncating odd values
		if 2*loss >= before {
			c.MortallyWounded = true
			rep.MortalWound = true
			rep.Events = append(rep.Events, "MORTAL WOUND inflicted!")
		}

		if c.Vigor <= 0 {
			c.Alive = false
			rep.Events = append(rep.Events, "CHARACTER SLAIN!")
		}
	}

	rep.FinalDamage = amount - remaining
	rep.Slain = !c.Alive
	return rep
}

// ValidateAmount reports whether amount can be passed to ApplyDamage,
// HealVigor or RestoreGuard.
func ValidateAmount(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeAmount, amount)
	}
	return nil
}

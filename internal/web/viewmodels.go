package web

import "bastion/internal/game"

// RosterViewModel contains data for the roster overview.
type RosterViewModel struct {
	Characters []CharacterRow
	Summary    game.Summary
	Filter     game.Filter
	Sort       game.SortOrder
	Filters    []game.Filter
	Sorts      []game.SortOrder
	Empty      bool // roster has nobody at all, as opposed to nobody matching
}

// CharacterRow is one line of the roster table.
type CharacterRow struct {
	*game.Character
	Status game.HealthStatus
	Path   string
}

// CharacterViewModel contains data for a character's management panel.
type CharacterViewModel struct {
	Character *game.Character
	Status    game.HealthStatus
	Path      string
	Report    *game.DamageReport
	Message   string
}

// CreateViewModel contains data for the character creation form.
type CreateViewModel struct {
	Form    CreateForm
	Message string
}

// CreateForm echoes the submitted values back when validation fails.
type CreateForm struct {
	Name    string
	Vigor   int
	Clarity int
	Spirit  int
	Guard   int
	Armor   int
	Notes   string
}

var defaultCreateForm = CreateForm{Vigor: 10, Clarity: 10, Spirit: 10, Guard: 5, Armor: 1}

func newRosterViewModel(r *game.Roster, f game.Filter, order game.SortOrder) RosterViewModel {
	chars := r.List(f, order)
	rows := make([]CharacterRow, 0, len(chars))
	for _, c := range chars {
		rows = append(rows, CharacterRow{Character: c, Status: game.Status(c), Path: characterPath(c.Name)})
	}
	return RosterViewModel{
		Characters: rows,
		Summary:    game.Summarize(chars),
		Filter:     f,
		Sort:       order,
		Filters:    game.Filters,
		Sorts:      game.SortOrders,
		Empty:      r.Len() == 0,
	}
}

func newCharacterViewModel(c *game.Character, rep *game.DamageReport, msg string) CharacterViewModel {
	return CharacterViewModel{
		Character: c,
		Status:    game.Status(c),
		Path:      characterPath(c.Name),
		Report:    rep,
		Message:   msg,
	}
}

// CombatViewModel contains data for the combat resolution page.
type CombatViewModel struct {
	Empty        bool // roster has nobody at all
	Targets      []CharacterRow
	Target       *CharacterRow
	Conditions   []game.Condition
	Report       *game.DamageReport
	ReportTarget string
}

// newCombatViewModel lists the living characters. The selected target falls
// back to the first of them when target is empty, unknown or slain.
func newCombatViewModel(r *game.Roster, target string, rep *game.DamageReport, reportTarget string) CombatViewModel {
	alive := r.Alive()
	vm := CombatViewModel{
		Empty:        r.Len() == 0,
		Targets:      make([]CharacterRow, 0, len(alive)),
		Conditions:   combatConditions,
		Report:       rep,
		ReportTarget: reportTarget,
	}
	for _, c := range alive {
		vm.Targets = append(vm.Targets, CharacterRow{Character: c, Status: game.Status(c), Path: characterPath(c.Name)})
	}
	for i := range vm.Targets {
		if vm.Targets[i].Name == target {
			vm.Target = &vm.Targets[i]
		}
	}
	if vm.Target == nil && len(vm.Targets) > 0 {
		vm.Target = &vm.Targets[0]
	}
	return vm
}

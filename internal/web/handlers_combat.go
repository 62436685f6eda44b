package web

import (
	"fmt"
	"net/http"
	"strings"

	"bastion/internal/game"
)

var combatConditions = []game.Condition{game.ConditionImpaired, game.ConditionFatigued}

// GET /combat?target=
func (s *Server) handleCombat(w http.ResponseWriter, r *http.Request) {
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.showCombat(w, r, ros, r.URL.Query().Get("target"), nil, "")
}

func (s *Server) showCombat(w http.ResponseWriter, r *http.Request, ros *game.Roster, target string, rep *game.DamageReport, reportTarget string) {
	vm := newCombatViewModel(ros, target, rep, reportTarget)
	if isHTMX(r) {
		s.render(w, r, "combat.html", vm)
		return
	}
	s.render(w, r, "layout.html", map[string]any{"Combat": vm})
}

// combatTarget reads the target field and checks it names a living character.
func combatTarget(r *http.Request, ros *game.Roster) (string, error) {
	name := r.FormValue("target")
	c, ok := ros.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", game.ErrNotFound, name)
	}
	if !c.Alive {
		return "", fmt.Errorf("%w: %s has been slain", errBadForm, name)
	}
	return name, nil
}

// POST /combat/damage (fields target, amount)
func (s *Server) handleCombatDamage(w http.ResponseWriter, r *http.Request) {
	amount, err := amountField(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name, err := combatTarget(r, ros)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rep, err := ros.Damage(name, amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.showCombat(w, r, ros, name, &rep, name)
}

// POST /combat/toggle/{condition} (field target)
func (s *Server) handleCombatToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	cond := game.Condition(strings.ToLower(muxVar(r, "condition")))
	if cond != game.ConditionImpaired && cond != game.ConditionFatigued {
		s.fail(w, r, fmt.Errorf("%w: %q", game.ErrUnknownCondition, cond))
		return
	}
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name, err := combatTarget(r, ros)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var toggleErr error
	if err := ros.Update(name, func(c *game.Character) { toggleErr = game.ToggleCondition(c, cond) }); err != nil {
		s.fail(w, r, err)
		return
	}
	if toggleErr != nil {
		s.fail(w, r, toggleErr)
		return
	}
	s.showCombat(w, r, ros, name, nil, "")
}

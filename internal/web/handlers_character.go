package web

import (
	"fmt"
	"net/http"
	"strings"

	"bastion/internal/game"
)

const maxNotesLen = 4000

// GET /characters/new
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if _, err := s.roster(r.Context(), w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	vm := CreateViewModel{Form: defaultCreateForm}
	if isHTMX(r) {
		s.render(w, r, "create.html", vm)
		return
	}
	s.render(w, r, "layout.html", map[string]any{"Create": vm})
}

// POST /characters
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	form, err := parseCreateForm(r)
	if err == nil {
		c := game.NewCharacter(form.Name, form.Vigor, form.Clarity, form.Spirit, form.Guard, form.Armor)
		c.Notes = form.Notes
		err = ros.Add(c)
		if err == nil {
			redirect(w, r, characterPath(c.Name))
			return
		}
	}
	if errorStatus(err) != http.StatusBadRequest {
		s.fail(w, r, err)
		return
	}

	vm := CreateViewModel{Form: form, Message: err.Error()}
	if isHTMX(r) {
		s.render(w, r, "create.html", vm)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	s.render(w, r, "layout.html", map[string]any{"Create": vm})
}

func parseCreateForm(r *http.Request) (CreateForm, error) {
	form := CreateForm{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Notes: limitNotes(r.FormValue("notes")),
	}
	fields := []struct {
		key     string
		dst     *int
		def     int
		lo, hi  int
		display string
	}{
		{"vigor", &form.Vigor, defaultCreateForm.Vigor, 1, 50, "Vigor"},
		{"clarity", &form.Clarity, defaultCreateForm.Clarity, 1, 50, "Clarity"},
		{"spirit", &form.Spirit, defaultCreateForm.Spirit, 1, 50, "Spirit"},
		{"guard", &form.Guard, defaultCreateForm.Guard, 0, 50, "Guard"},
		{"armor", &form.Armor, defaultCreateForm.Armor, 0, 20, "Armor"},
	}
	for _, f := range fields {
		v, err := intField(r, f.key, f.def)
		if err != nil {
			return form, err
		}
		*f.dst = v
		if v < f.lo || v > f.hi {
			return form, fmt.Errorf("%w: %s must be between %d and %d", game.ErrInvalidStat, f.display, f.lo, f.hi)
		}
	}
	if _, err := game.ValidateName(form.Name); err != nil {
		return form, err
	}
	return form, nil
}

func limitNotes(s string) string {
	r := []rune(s)
	if len(r) > maxNotesLen {
		return string(r[:maxNotesLen])
	}
	return s
}

// GET /characters/{name}
func (s *Server) handleCharacter(w http.ResponseWriter, r *http.Request) {
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.showCharacter(w, r, ros, nameVar(r), nil, "")
}

func (s *Server) showCharacter(w http.ResponseWriter, r *http.Request, ros *game.Roster, name string, rep *game.DamageReport, msg string) {
	c, ok := ros.Get(name)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: %q", game.ErrNotFound, name))
		return
	}
	vm := newCharacterViewModel(c, rep, msg)
	if isHTMX(r) {
		s.render(w, r, "character.html", vm)
		return
	}
	s.render(w, r, "layout.html", map[string]any{"Character": vm})
}

// apply runs fn on the named character under its lock and re-renders the
// panel with msg.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, msg string, fn func(c *game.Character) error) {
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := nameVar(r)
	var fnErr error
	if err := ros.Update(name, func(c *game.Character) { fnErr = fn(c) }); err != nil {
		s.fail(w, r, err)
		return
	}
	if fnErr != nil {
		s.fail(w, r, fnErr)
		return
	}
	s.showCharacter(w, r, ros, name, nil, msg)
}

// amountField reads a non-negative amount from the form.
func amountField(r *http.Request) (int, error) {
	if err := r.ParseForm(); err != nil {
		return 0, fmt.Errorf("%w: %v", errBadForm, err)
	}
	n, err := intField(r, "amount", 0)
	if err != nil {
		return 0, err
	}
	return n, game.ValidateAmount(n)
}

// POST /characters/{name}/damage
func (s *Server) handleDamage(w http.ResponseWriter, r *http.Request) {
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
	name := nameVar(r)
	rep, err := ros.Damage(name, amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.showCharacter(w, r, ros, name, &rep, "")
}

// POST /characters/{name}/heal
func (s *Server) handleHeal(w http.ResponseWriter, r *http.Request) {
	amount, err := amountField(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.apply(w, r, fmt.Sprintf("Healed %d vigor.", amount), func(c *game.Character) error {
		game.HealVigor(c, amount)
		return nil
	})
}

// POST /characters/{name}/restore-guard
func (s *Server) handleRestoreGuard(w http.ResponseWriter, r *http.Request) {
	amount, err := amountField(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.apply(w, r, fmt.Sprintf("Restored %d guard.", amount), func(c *game.Character) error {
		game.RestoreGuard(c, amount)
		return nil
	})
}

// POST /characters/{name}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, "Character fully healed!", func(c *game.Character) error {
		game.ResetToFull(c)
		return nil
	})
}

// POST /characters/{name}/adjust
func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f := formInts{r: r}
	vigor := f.get("vigor", 0)
	guard := f.get("guard", 0)
	if f.err != nil {
		s.fail(w, r, f.err)
		return
	}
	s.apply(w, r, "Adjusted.", func(c *game.Character) error {
		if vigor != 0 {
			game.AdjustVigor(c, vigor)
		}
		if guard != 0 {
			game.AdjustGuard(c, guard)
		}
		return nil
	})
}

// POST /characters/{name}/toggle/{condition}
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	cond := game.Condition(strings.ToLower(muxVar(r, "condition")))
	s.apply(w, r, "", func(c *game.Character) error {
		return game.ToggleCondition(c, cond)
	})
}

// POST /characters/{name}/maximums
func (s *Server) handleMaximums(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := nameVar(r)
	cur, ok := ros.Get(name)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: %q", game.ErrNotFound, name))
		return
	}

	f := formInts{r: r}
	mv := f.get("max_vigor", cur.MaxVigor)
	mc := f.get("max_clarity", cur.MaxClarity)
	ms := f.get("max_spirit", cur.MaxSpirit)
	mg := f.get("max_guard", cur.MaxGuard)
	ar := f.get("armor", cur.Armor)
	if f.err != nil {
		s.fail(w, r, f.err)
		return
	}
	if err := game.ValidateMaximums(mv, mc, ms, mg, ar); err != nil {
		s.fail(w, r, err)
		return
	}
	s.apply(w, r, "Maximum values updated.", func(c *game.Character) error {
		game.SetMaximums(c, mv, mc, ms, mg, ar)
		return nil
	})
}

// POST /characters/{name}/notes
func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	notes := limitNotes(r.FormValue("notes"))
	msg := "Notes saved."
	if r.FormValue("clear") != "" {
		notes = ""
		msg = "Notes cleared."
	}
	s.apply(w, r, msg, func(c *game.Character) error {
		c.Notes = notes
		return nil
	})
}

// POST /characters/{name}/delete
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := nameVar(r)
	if !ros.Delete(name) {
		s.fail(w, r, fmt.Errorf("%w: %q", game.ErrNotFound, name))
		return
	}
	redirect(w, r, "/")
}

package game

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Roster is the set of characters in play, keyed by name. Each record has
// its own lock so a hit, heal or reset on one character runs as a unit.
// Reads hand out copies; all writes go through Add, Update or Delete.
type Roster struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu sync.Mutex
	c  *Character
}

func NewRoster() *Roster {
	return &Roster{entries: map[string]*entry{}}
}

// Add validates the name and inserts c. The roster takes ownership of c.
func (r *Roster) Add(c *Character) error {
	name, err := ValidateName(c.Name)
	if err != nil {
		return err
	}
	c.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.entries[name] = &entry{c: c}
	return nil
}

// Get returns a copy of the named character.
func (r *Roster) Get(name string) (*Character, bool) {
	e := r.lookup(name)
	if e == nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.c.Clone(), true
}

// Update runs fn on the named character while holding its lock.
func (r *Roster) Update(name string, fn func(c *Character)) error {
	e := r.lookup(name)
	if e == nil {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.c)
	return nil
}

// Damage validates amount and applies it to the named character.
func (r *Roster) Damage(name string, amount int) (DamageReport, error) {
	if err := ValidateAmount(amount); err != nil {
		return DamageReport{}, err
	}
	var rep DamageReport
	err := r.Update(name, func(c *Character) {
		rep = ApplyDamage(c, amount)
	})
	return rep, err
}

// Delete removes the named character and reports whether it was present.
func (r *Roster) Delete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	return true
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Characters returns copies of every character, sorted by name.
func (r *Roster) Characters() []*Character {
	return r.List(FilterAll, SortByName)
}

// Alive returns the characters that can still be targeted, sorted by name.
func (r *Roster) Alive() []*Character {
	return r.List(FilterAlive, SortByName)
}

// Clone returns an independent copy of the roster.
func (r *Roster) Clone() *Roster {
	out := NewRoster()
	for _, c := range r.snapshot() {
		out.entries[c.Name] = &entry{c: c}
	}
	return out
}

// Replace swaps in the contents of other.
func (r *Roster) Replace(other *Roster) {
	fresh := other.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = fresh.entries
}

func (r *Roster) lookup(name string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[name]
}

func (r *Roster) snapshot() []*Character {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]*Character, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.c.Clone())
		e.mu.Unlock()
	}
	return out
}

// Filter selects which characters a roster listing shows.
type Filter string

const (
	FilterAll             Filter = "all"
	FilterAlive           Filter = "alive"
	FilterDead            Filter = "dead"
	FilterWounded         Filter = "wounded"
	FilterMortallyWounded Filter = "mortally_wounded"
	FilterImpaired        Filter = "impaired"
	FilterFatigued        Filter = "fatigued"
	FilterScarred         Filter = "scarred"
)

// Filters lists every filter in display order.
var Filters = []Filter{
	FilterAll, FilterAlive, FilterDead, FilterWounded,
	FilterMortallyWounded, FilterImpaired, FilterFatigued, FilterScarred,
}

// ParseFilter maps a query value to a Filter; empty means FilterAll.
func ParseFilter(s string) (Filter, bool) {
	if s == "" {
		return FilterAll, true
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Match reports whether c passes the filter. Condition filters only match
// living characters.
func (f Filter) Match(c *Character) bool {
	switch f {
	case FilterAll:
		return true
	case FilterAlive:
		return c.Alive
	case FilterDead:
		return !c.Alive
	case FilterWounded:
		return c.Alive && c.Wounded
	case FilterMortallyWounded:
		return c.Alive && c.MortallyWounded
	case FilterImpaired:
		return c.Alive && c.Impaired
	case FilterFatigued:
		return c.Alive && c.Fatigued
	case FilterScarred:
		return c.Alive && c.Scarred
	}
	return false
}

// SortOrder selects how a roster listing is ordered.
type SortOrder string

const (
	SortByName  SortOrder = "name"
	SortByVigor SortOrder = "vigor"
	SortByGuard SortOrder = "guard"
)

var SortOrders = []SortOrder{SortByName, SortByVigor, SortByGuard}

// ParseSortOrder maps a query value to a SortOrder; empty means SortByName.
func ParseSortOrder(s string) (SortOrder, bool) {
	if s == "" {
		return SortByName, true
	}
	for _, o := range SortOrders {
		if string(o) == s {
			return o, true
		}
	}
	return "", false
}

// List returns copies of the characters matching f in the given order.
// Vigor and guard sort highest first; name breaks ties.
func (r *Roster) List(f Filter, order SortOrder) []*Character {
	all := r.snapshot()
	out := all[:0]
	for _, c := range all {
		if f.Match(c) {
			out = append(out, c)
		}
	}

	col := collate.New(language.English, collate.IgnoreCase)
	byName := func(a, b *Character) bool {
		if n := col.CompareString(a.Name, b.Name); n != 0 {
			return n < 0
		}
		return a.Name < b.Name
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch order {
		case SortByVigor:
			if a.Vigor != b.Vigor {
				return a.Vigor > b.Vigor
			}
		case SortByGuard:
			if a.Guard != b.Guard {
				return a.Guard > b.Guard
			}
		}
		return byName(a, b)
	})
	return out
}

// Summary counts characters by state. Condition counts cover the living only.
type Summary struct {
	Total           int
	Alive           int
	Dead            int
	Wounded         int
	MortallyWounded int
	Impaired        int
	Fatigued        int
	Scarred         int
}

func Summarize(chars []*Character) Summary {
	var s Summary
	s.Total = len(chars)
	for _, c := range chars {
		if !c.Alive {
			s.Dead++
			continue
		}
		s.Alive++
		if c.Wounded {
			s.Wounded++
		}
		if c.MortallyWounded {
			s.MortallyWounded++
		}
		if c.Impaired {
			s.Impaired++
		}
		if c.Fatigued {
			s.Fatigued++
		}
		if c.Scarred {
			s.Scarred++
		}
	}
	return s
}

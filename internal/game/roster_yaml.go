package game

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// rosterFile is the on-disk shape of a roster. Pointer fields distinguish
// "absent" from zero so a hand-written file can leave out maximums.
type rosterFile struct {
	Characters []characterFile `yaml:"characters"`
}

type characterFile struct {
	Name string `yaml:"name"`

	Vigor      int  `yaml:"vigor"`
	MaxVigor   *int `yaml:"max_vigor,omitempty"`
	Clarity    int  `yaml:"clarity"`
	MaxClarity *int `yaml:"max_clarity,omitempty"`
	Spirit     int  `yaml:"spirit"`
	MaxSpirit  *int `yaml:"max_spirit,omitempty"`
	Guard      int  `yaml:"guard"`
	MaxGuard   *int `yaml:"max_guard,omitempty"`
	Armor      int  `yaml:"armor"`

	MortallyWounded bool  `yaml:"mortally_wounded,omitempty"`
	Wounded         bool  `yaml:"wounded,omitempty"`
	Impaired        bool  `yaml:"impaired,omitempty"`
	Fatigued        bool  `yaml:"fatigued,omitempty"`
	Scarred         bool  `yaml:"scarred,omitempty"`
	Alive           *bool `yaml:"alive,omitempty"`

	Notes    string `yaml:"notes,omitempty"`
	Portrait string `yaml:"portrait,omitempty"` // base64
}

// LoadRoster reads a roster from a YAML file.
func LoadRoster(path string) (*Roster, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, err
	}
	r, err := ParseRoster(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return r, nil
}

// ParseRoster decodes a YAML roster. Missing maximums default to the
// current value (at least 1 for vigor, clarity and spirit), a missing alive
// flag defaults to true, and every pool is clamped into range. A character
// with no vigor left is dead. Portraits must be PNG, JPEG or GIF.
func ParseRoster(b []byte) (*Roster, error) {
	var f rosterFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	r := NewRoster()
	for i, cf := range f.Characters {
		c, err := cf.character()
		if err != nil {
			return nil, fmt.Errorf("character %d: %w", i+1, err)
		}
		if err := r.Add(c); err != nil {
			return nil, fmt.Errorf("character %d: %w", i+1, err)
		}
	}
	return r, nil
}

// MarshalRoster encodes r as YAML, characters sorted by name.
func MarshalRoster(r *Roster) ([]byte, error) {
	chars := r.Characters()
	f := rosterFile{Characters: make([]characterFile, 0, len(chars))}
	for _, c := range chars {
		f.Characters = append(f.Characters, fileFromCharacter(c))
	}
	return yaml.Marshal(f)
}

func (cf characterFile) character() (*Character, error) {
	c := &Character{
		Name:            cf.Name,
		Vigor:           cf.Vigor,
		MaxVigor:        orDefault(cf.MaxVigor, max(cf.Vigor, 1)),
		Clarity:         cf.Clarity,
		MaxClarity:      orDefault(cf.MaxClarity, max(cf.Clarity, 1)),
		Spirit:          cf.Spirit,
		MaxSpirit:       orDefault(cf.MaxSpirit, max(cf.Spirit, 1)),
		Guard:           cf.Guard,
		MaxGuard:        orDefault(cf.MaxGuard, max(cf.Guard, 0)),
		Armor:           cf.Armor,
		MortallyWounded: cf.MortallyWounded,
		Wounded:         cf.Wounded,
		Impaired:        cf.Impaired,
		Fatigued:        cf.Fatigued,
		Scarred:         cf.Scarred,
		Alive:           cf.Alive == nil || *cf.Alive,
		Notes:           cf.Notes,
	}
	if err := ValidateMaximums(c.MaxVigor, c.MaxClarity, c.MaxSpirit, c.MaxGuard, c.Armor); err != nil {
		return nil, err
	}
	if cf.Portrait != "" {
		img, err := base64.StdEncoding.DecodeString(cf.Portrait)
		if err != nil {
			return nil, fmt.Errorf("portrait: %w", err)
		}
		if _, err := ValidatePortrait(img); err != nil {
			return nil, err
		}
		c.ProfileImage = img
	}
	SetMaximums(c, c.MaxVigor, c.MaxClarity, c.MaxSpirit, c.MaxGuard, c.Armor)
	if c.Vigor <= 0 {
		c.Alive = false
	}
	return c, nil
}

func fileFromCharacter(c *Character) characterFile {
	alive := c.Alive
	cf := characterFile{
		Name:            c.Name,
		Vigor:           c.Vigor,
		MaxVigor:        &c.MaxVigor,
		Clarity:         c.Clarity,
		MaxClarity:      &c.MaxClarity,
		Spirit:          c.Spirit,
		MaxSpirit:       &c.MaxSpirit,
		Guard:           c.Guard,
		MaxGuard:        &c.MaxGuard,
		Armor:           c.Armor,
		MortallyWounded: c.MortallyWounded,
		Wounded:         c.Wounded,
		Impaired:        c.Impaired,
		Fatigued:        c.Fatigued,
		Scarred:         c.Scarred,
		Alive:           &alive,
		Notes:           c.Notes,
	}
	if len(c.ProfileImage) > 0 {
		cf.Portrait = base64.StdEncoding.EncodeToString(c.ProfileImage)
	}
	return cf
}

func orDefault(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

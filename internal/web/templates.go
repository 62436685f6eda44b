package web

import (
	"html/template"
	"path/filepath"
	"strings"

	"bastion/internal/game"
)

var templateFuncs = template.FuncMap{
	"title": func(s any) string {
		str := strings.ReplaceAll(toString(s), "_", " ")
		if str == "" {
			return str
		}
		return strings.ToUpper(str[:1]) + str[1:]
	},
	"conditions": func() []game.Condition {
		return []game.Condition{game.ConditionImpaired, game.ConditionFatigued, game.ConditionScarred}
	},
	"flag": func(c *game.Character, cond game.Condition) bool {
		switch cond {
		case game.ConditionImpaired:
			return c.Impaired
		case game.ConditionFatigued:
			return c.Fatigued
		case game.ConditionScarred:
			return c.Scarred
		}
		return false
	},
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case game.Filter:
		return string(s)
	case game.SortOrder:
		return string(s)
	case game.Condition:
		return string(s)
	case game.HealthStatus:
		return string(s)
	}
	return ""
}

// LoadTemplates parses every *.html file in dir.
func LoadTemplates(dir string) (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseGlob(filepath.Join(dir, "*.html"))
}

// Package theme turns a theme selection into the style variables the presentation layer reads.
package theme

import (
	"fmt"
	"sort"
	"sync"

	"quizmaster/internal/domain"
)

// Palette is an RGB triple set, each value formatted "r, g, b".
type Palette struct {
	Primary   string
	Secondary string
	Accent    string
}

var palettes = map[domain.ColorScheme]Palette{
	domain.SchemePurple: {"168, 85, 247", "147, 51, 234", "126, 34, 206"},
	domain.SchemeBlue:   {"59, 130, 246", "37, 99, 235", "29, 78, 216"},
	domain.SchemeGreen:  {"34, 197, 94", "22, 163, 74", "21, 128, 61"},
	domain.SchemeRed:    {"239, 68, 68", "220, 38, 38", "185, 28, 28"},
	domain.SchemeOrange: {"249, 115, 22", "234, 88, 12", "194, 65, 12"},
	domain.SchemePink:   {"236, 72, 153", "219, 39, 119", "190, 24, 93"},
}

// PaletteFor returns the palette of scheme; unknown schemes fall back to purple.
func PaletteFor(scheme domain.ColorScheme) Palette {
	if p, ok := palettes[scheme]; ok {
		return p
	}
	return palettes[domain.SchemePurple]
}

// ModeAttribute is the attribute carrying the resolved light/dark mode.
const ModeAttribute = "data-theme-mode"

// Variables is the full set of style variables for one theme selection.
type Variables struct {
	Mode       domain.ThemeMode  `json:"mode"` // resolved, never auto
	Properties map[string]string `json:"properties"`
}

// Resolve computes the variables for t. systemDark decides the mode when t.Mode is auto.
func Resolve(t domain.ThemeConfig, systemDark bool) Variables {
	colors := PaletteFor(t.ColorScheme)

	mode := t.Mode
	if mode == domain.ThemeAuto {
		mode = domain.ThemeLight
		if systemDark {
			mode = domain.ThemeDark
		}
	}
	if mode != domain.ThemeDark {
		mode = domain.ThemeLight
	}

	props := map[string]string{
		"--color-primary":   colors.Primary,
		"--color-secondary": colors.Secondary,
		"--color-accent":    colors.Accent,
	}
	if mode == domain.ThemeDark {
		props["--bg-base"] = "10, 10, 10"
		props["--bg-elevated"] = "20, 20, 25"
		props["--text-primary"] = "255, 255, 255"
		props["--text-secondary"] = "156, 163, 175"
		props["--card-bg"] = "rgba(255, 255, 255, 0.05)"
		props["--card-border"] = "rgba(255, 255, 255, 0.1)"
	} else {
		props["--bg-base"] = "248, 250, 252"
		props["--bg-elevated"] = "255, 255, 255"
		props["--text-primary"] = "15, 23, 42"
		props["--text-secondary"] = "71, 85, 105"
		props["--card-bg"] = "rgba(255, 255, 255, 0.85)"
		props["--card-border"] = fmt.Sprintf("rgba(%s, 0.1)", colors.Primary)
	}
	return Variables{Mode: mode, Properties: props}
}

// CSS renders the variables as a :root rule, properties sorted by name.
func (v Variables) CSS() string {
	names := make([]string, 0, len(v.Properties))
	for name := range v.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ":root[" + ModeAttribute + "=\"" + string(v.Mode) + "\"] {\n"
	for _, name := range names {
		out += "  " + name + ": " + v.Properties[name] + ";\n"
	}
	return out + "}\n"
}

// Target receives applied variables.
type Target interface {
	SetProperty(name, value string)
	SetAttribute(name, value string)
}

// Applier writes the current theme into a Target. Applying is idempotent.
type Applier struct {
	mu         sync.Mutex
	target     Target
	current    domain.ThemeConfig
	systemDark bool
}

func NewApplier(target Target) *Applier {
	return &Applier{target: target}
}

// Apply resolves t and writes every variable and the mode attribute.
func (a *Applier) Apply(t domain.ThemeConfig) Variables {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = t
	return a.applyLocked()
}

// SetSystemDark records the system preference and re-applies when following it.
func (a *Applier) SetSystemDark(dark bool) (Variables, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.systemDark = dark
	if a.current.Mode != domain.ThemeAuto {
		return Variables{}, false
	}
	return a.applyLocked(), true
}

// Current returns the variables for the last applied theme.
func (a *Applier) Current() Variables {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Resolve(a.current, a.systemDark)
}

func (a *Applier) applyLocked() Variables {
	vars := Resolve(a.current, a.systemDark)
	if a.target != nil {
		for name, value := range vars.Properties {
			a.target.SetProperty(name, value)
		}
		a.target.SetAttribute(ModeAttribute, string(vars.Mode))
	}
	return vars
}

// VariableSet is an in-memory Target.
type VariableSet struct {
	mu         sync.RWMutex
	properties map[string]string
	attributes map[string]string
}

func NewVariableSet() *VariableSet {
	return &VariableSet{
		properties: make(map[string]string),
		attributes: make(map[string]string),
	}
}

func (s *VariableSet) SetProperty(name, value string) {
	s.mu.Lock()
	s.properties[name] = value
	s.mu.Unlock()
}

func (s *VariableSet) SetAttribute(name, value string) {
	s.mu.Lock()
	s.attributes[name] = value
	s.mu.Unlock()
}

func (s *VariableSet) Property(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.properties[name]
}

func (s *VariableSet) Attribute(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attributes[name]
}

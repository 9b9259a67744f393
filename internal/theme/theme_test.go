package theme

import (
	"strings"
	"testing"

	"quizmaster/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDarkAndLight(t *testing.T) {
	dark := Resolve(domain.ThemeConfig{Mode: domain.ThemeDark, ColorScheme: domain.SchemeBlue}, false)
	assert.Equal(t, domain.ThemeDark, dark.Mode)
	assert.Equal(t, "59, 130, 246", dark.Properties["--color-primary"])
	assert.Equal(t, "10, 10, 10", dark.Properties["--bg-base"])
	assert.Equal(t, "rgba(255, 255, 255, 0.1)", dark.Properties["--card-border"])

	light := Resolve(domain.ThemeConfig{Mode: domain.ThemeLight, ColorScheme: domain.SchemeBlue}, true)
	assert.Equal(t, domain.ThemeLight, light.Mode)
	assert.Equal(t, "248, 250, 252", light.Properties["--bg-base"])
	assert.Equal(t, "rgba(59, 130, 246, 0.1)", light.Properties["--card-border"])
}

func TestResolveAutoFollowsSystem(t *testing.T) {
	auto := domain.ThemeConfig{Mode: domain.ThemeAuto, ColorScheme: domain.SchemeGreen}
	assert.Equal(t, domain.ThemeDark, Resolve(auto, true).Mode)
	assert.Equal(t, domain.ThemeLight, Resolve(auto, false).Mode)
}

func TestResolveUnknownSchemeFallsBack(t *testing.T) {
	vars := Resolve(domain.ThemeConfig{Mode: domain.ThemeDark, ColorScheme: "teal"}, false)
	assert.Equal(t, PaletteFor(domain.SchemePurple).Primary, vars.Properties["--color-primary"])
}

func TestApplierWritesTargetAndReappliesInAutoMode(t *testing.T) {
	target := NewVariableSet()
	applier := NewApplier(target)

	applier.Apply(domain.ThemeConfig{Mode: domain.ThemeAuto, ColorScheme: domain.SchemeRed})
	assert.Equal(t, "light", target.Attribute(ModeAttribute))
	assert.Equal(t, "239, 68, 68", target.Property("--color-primary"))

	vars, reapplied := applier.SetSystemDark(true)
	require.True(t, reapplied)
	assert.Equal(t, domain.ThemeDark, vars.Mode)
	assert.Equal(t, "dark", target.Attribute(ModeAttribute))
	assert.Equal(t, "10, 10, 10", target.Property("--bg-base"))

	applier.Apply(domain.ThemeConfig{Mode: domain.ThemeLight, ColorScheme: domain.SchemeRed})
	_, reapplied = applier.SetSystemDark(false)
	assert.False(t, reapplied)
	assert.Equal(t, "light", target.Attribute(ModeAttribute))
}

func TestCSSIsSorted(t *testing.T) {
	css := Resolve(domain.DefaultConfig().Theme, false).CSS()
	assert.True(t, strings.HasPrefix(css, `:root[data-theme-mode="dark"] {`))
	assert.Less(t, strings.Index(css, "--bg-base"), strings.Index(css, "--text-primary"))
}

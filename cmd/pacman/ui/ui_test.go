package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"pacman/internal/rules"
)

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("PACMAN_DARK_MODE", "1")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme when PACMAN_DARK_MODE=1")
	}

	t.Setenv("PACMAN_DARK_MODE", "")
	if DetectTheme().IsDark {
		t.Fatalf("expected light theme when PACMAN_DARK_MODE is unset")
	}

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme for a black background")
	}
}

func TestSimpleTable(t *testing.T) {
	table := NewSimpleTable("Submissions", []string{"ID", "User"})
	table.AddRow("0", "labas")

	view := table.View(NewStyles(LightTheme()), "none")
	if !strings.Contains(view, "Submissions") {
		t.Error("View missing title")
	}
	if !strings.Contains(view, "labas") {
		t.Error("View missing cell content")
	}

	empty := NewSimpleTable("Submissions", []string{"ID", "User"}).View(NewStyles(LightTheme()), "none")
	if !strings.Contains(empty, "none") {
		t.Errorf("empty table should show marker, got %q", empty)
	}
}

func TestAssetPath(t *testing.T) {
	assert.Equal(t, "/images/ghost.png", AssetPath(IconGhost))
	assert.Equal(t, "/images/stateC.png", AssetPath(StateIcon(rules.StateC)))
}

func TestFieldIcons(t *testing.T) {
	r := rules.NewRule()
	for _, f := range []rules.Field{rules.FieldState, rules.FieldUp, rules.FieldBerry} {
		assert.Equal(t, IconAny, FieldIcon(r, f), f.String())
	}
	assert.Equal(t, IconWait, FieldIcon(r, rules.FieldNextMove))
	assert.Equal(t, Icon("stateA"), FieldIcon(r, rules.FieldNextState))

	r = r.Cycle(rules.FieldUp).Cycle(rules.FieldBerry).Cycle(rules.FieldNextMove)
	assert.Equal(t, IconWall, FieldIcon(r, rules.FieldUp))
	assert.Equal(t, IconTick, FieldIcon(r, rules.FieldBerry))
	assert.Equal(t, IconUp, FieldIcon(r, rules.FieldNextMove))

	r.Berry = rules.Ptr(rules.BerryNotTaken)
	assert.Equal(t, IconCross, FieldIcon(r, rules.FieldBerry))
}

func TestGlyphs(t *testing.T) {
	assert.Equal(t, "C", Glyph(Icon("stateC")))
	assert.Equal(t, "?", Glyph(Icon("nonsense")))
	for icon := range glyphs {
		assert.NotEmpty(t, Glyph(icon), string(icon))
	}
}

func TestRenderRuleGrid(t *testing.T) {
	styles := NewStyles(DarkTheme())

	empty := RenderRuleGrid(styles, nil, Cursor{})
	assert.Contains(t, empty, "no rules yet")

	p := rules.Program{}.Append().Append().CycleField(1, rules.FieldLeft).CycleField(1, rules.FieldLeft)
	view := RenderRuleGrid(styles, p, Cursor{Row: 1, Field: rules.FieldLeft})
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], Glyph(IconEmpty))
	assert.Contains(t, lines[1], Glyph(IconWait))
	assert.Contains(t, lines[1], "A")
}

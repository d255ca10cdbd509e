package ui

import (
	"pacman/internal/rules"
)

// Icon is the name of one picture in the game's image set.
type Icon string

const (
	IconAny    Icon = "any"
	IconWall   Icon = "wall"
	IconEmpty  Icon = "empty"
	IconGhost  Icon = "ghost"
	IconBerry  Icon = "berry"
	IconTick   Icon = "tick"
	IconCross  Icon = "cross"
	IconPacman Icon = "pacman"
	IconPlus   Icon = "plus"
	IconUp     Icon = "up"
	IconDown   Icon = "down"
	IconLeft   Icon = "left"
	IconRight  Icon = "right"
	IconWait   Icon = "wait"
)

// AssetPath is where the web build serves the icon's image.
func AssetPath(icon Icon) string {
	return "/images/" + string(icon) + ".png"
}

var glyphs = map[Icon]string{
	IconAny:    "*",
	IconWall:   "▓",
	IconEmpty:  "·",
	IconGhost:  "ᗣ",
	IconBerry:  "●",
	IconTick:   "✓",
	IconCross:  "✗",
	IconPacman: "ᗧ",
	IconPlus:   "+",
	IconUp:     "↑",
	IconDown:   "↓",
	IconLeft:   "←",
	IconRight:  "→",
	IconWait:   "○",
}

// Glyph is the terminal rendering of an icon.
func Glyph(icon Icon) string {
	if g, ok := glyphs[icon]; ok {
		return g
	}
	if s, ok := stateOfIcon(icon); ok {
		return s.Label()
	}
	return "?"
}

// StateIcon is the icon of a state label, e.g. stateA.
func StateIcon(s rules.State) Icon {
	return Icon("state" + s.Label())
}

func stateOfIcon(icon Icon) (rules.State, bool) {
	for _, s := range rules.States() {
		if StateIcon(s) == icon {
			return s, true
		}
	}
	return "", false
}

// CellIcon is the icon of a cell sensor; nil renders as "any".
func CellIcon(c *rules.Cell) Icon {
	if c == nil {
		return IconAny
	}
	switch *c {
	case rules.CellWall:
		return IconWall
	case rules.CellEmpty:
		return IconEmpty
	case rules.CellGhost:
		return IconGhost
	case rules.CellBerry:
		return IconBerry
	}
	return IconAny
}

// BerryIcon is the icon of the berry sensor.
func BerryIcon(b *rules.Berry) Icon {
	if b == nil {
		return IconAny
	}
	switch *b {
	case rules.BerryTaken:
		return IconTick
	case rules.BerryNotTaken:
		return IconCross
	}
	return IconAny
}

// StateSensorIcon is the icon of the optional state precondition.
func StateSensorIcon(s *rules.State) Icon {
	if s == nil || !s.Valid() {
		return IconAny
	}
	return StateIcon(*s)
}

// MoveIcon is the icon of a move.
func MoveIcon(m rules.Move) Icon {
	switch m {
	case rules.MoveUp:
		return IconUp
	case rules.MoveDown:
		return IconDown
	case rules.MoveLeft:
		return IconLeft
	case rules.MoveRight:
		return IconRight
	}
	return IconWait
}

// FieldIcon is the icon shown for field f of rule r.
func FieldIcon(r rules.Rule, f rules.Field) Icon {
	switch f {
	case rules.FieldState:
		return StateSensorIcon(r.State)
	case rules.FieldUp:
		return CellIcon(r.Up)
	case rules.FieldDown:
		return CellIcon(r.Down)
	case rules.FieldLeft:
		return CellIcon(r.Left)
	case rules.FieldRight:
		return CellIcon(r.Right)
	case rules.FieldBerry:
		return BerryIcon(r.Berry)
	case rules.FieldNextMove:
		return MoveIcon(r.NextMove)
	case rules.FieldNextState:
		if !r.NextState.Valid() {
			return IconAny
		}
		return StateIcon(r.NextState)
	}
	return IconAny
}

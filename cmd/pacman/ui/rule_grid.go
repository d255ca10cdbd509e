package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pacman/internal/rules"
)

// Cursor addresses one field of one rule.
type Cursor struct {
	Row   int
	Field rules.Field
}

// gridHeaders are drawn above the columns, in rules.Fields order, with the
// arrow column between sensors and actions.
var gridHeaders = []Icon{
	IconPacman, IconUp, IconDown, IconLeft, IconRight, IconBerry,
	IconRight, IconPacman,
}

const arrowAfter = rules.FieldBerry

// RenderRuleGrid draws the program one rule per row. The cell under cursor
// is highlighted; a negative cursor row highlights nothing.
func RenderRuleGrid(styles Styles, program rules.Program, cursor Cursor) string {
	var sb strings.Builder

	header := make([]string, 0, len(rules.Fields)+2)
	header = append(header, styles.Muted.Render("   "))
	for i, f := range rules.Fields {
		header = append(header, styles.Muted.Padding(0, 1).Render(Glyph(gridHeaders[i])))
		if f == arrowAfter {
			header = append(header, styles.Arrow.Render(" "))
		}
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	sb.WriteString("\n")

	if program.Len() == 0 {
		sb.WriteString(styles.Muted.Render("   no rules yet, press a to add one"))
		sb.WriteString("\n")
		return sb.String()
	}

	for row, rule := range program {
		cells := make([]string, 0, len(rules.Fields)+2)
		cells = append(cells, styles.Muted.Render(fmt.Sprintf("%3d", row+1)))
		for _, f := range rules.Fields {
			style := styles.Cell
			if cursor.Row == row && cursor.Field == f {
				style = styles.CursorCell
			}
			cells = append(cells, style.Render(Glyph(FieldIcon(rule, f))))
			if f == arrowAfter {
				cells = append(cells, styles.Arrow.Render("⇒"))
			}
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		sb.WriteString("\n")
	}
	return sb.String()
}

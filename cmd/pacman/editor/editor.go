// Package editor is the rule editor page: a grid of rules the user edits
// with the keyboard and submits to the game server.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"pacman/cmd/pacman/ui"
	"pacman/internal/client"
	"pacman/internal/logging"
	"pacman/internal/rules"
)

// Submitter sends a program and reports the outcome.
type Submitter interface {
	Submit(ctx context.Context, p rules.Program) client.Outcome
}

// SubmitResultMsg carries the outcome of one submission back into Update.
type SubmitResultMsg struct {
	Outcome client.Outcome
}

// Model is the editor page state.
type Model struct {
	width  int
	height int

	program rules.Program
	cursor  ui.Cursor
	status  client.SubmitStatus

	submitter  Submitter
	spinner    spinner.Model
	help       help.Model
	keys       keyMap
	showLegend bool
	legend     string

	styles ui.Styles
}

// New creates an editor with an empty program.
func New(submitter Submitter, styles ui.Styles) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		submitter: submitter,
		spinner:   sp,
		help:      help.New(),
		keys:      defaultKeyMap(),
		styles:    styles,
		legend:    renderLegend(styles, 72),
	}
}

// Program returns the program being edited.
func (m Model) Program() rules.Program { return m.program }

// Cursor returns the cursor position.
func (m Model) Cursor() ui.Cursor { return m.cursor }

// Status returns the latest submission status.
func (m Model) Status() client.SubmitStatus { return m.status }

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case SubmitResultMsg:
		m.status = m.status.Finish(msg.Outcome)
		logging.Editor("submission finished: %s", msg.Outcome)
		if msg.Outcome.Kind == client.Unauthorised {
			return m, ui.Navigate(ui.PageLogin)
		}
		return m, nil

	case spinner.TickMsg:
		if m.status.Phase != client.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.showLegend {
		// Any key closes the legend; quit still quits.
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.showLegend = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Legend):
		m.showLegend = true

	case key.Matches(msg, m.keys.Up):
		if m.cursor.Row > 0 {
			m.cursor.Row--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor.Row < m.program.Len()-1 {
			m.cursor.Row++
		}

	case key.Matches(msg, m.keys.Left):
		m.cursor.Field = shiftField(m.cursor.Field, -1)

	case key.Matches(msg, m.keys.Right):
		m.cursor.Field = shiftField(m.cursor.Field, 1)

	case key.Matches(msg, m.keys.Cycle):
		m.program = m.program.CycleField(m.cursor.Row, m.cursor.Field)

	case key.Matches(msg, m.keys.Append):
		m.program = m.program.Append()
		m.cursor.Row = m.program.Len() - 1
		logging.EditorDebug("appended rule %d", m.cursor.Row)

	case key.Matches(msg, m.keys.Remove):
		m.program = m.program.Remove(m.cursor.Row)
		if m.cursor.Row >= m.program.Len() && m.cursor.Row > 0 {
			m.cursor.Row = m.program.Len() - 1
		}

	case key.Matches(msg, m.keys.MoveUp):
		if m.cursor.Row > 0 && m.cursor.Row < m.program.Len() {
			m.program = m.program.MoveUp(m.cursor.Row)
			m.cursor.Row--
		}

	case key.Matches(msg, m.keys.MoveDown):
		if m.cursor.Row < m.program.Len()-1 {
			m.program = m.program.MoveDown(m.cursor.Row)
			m.cursor.Row++
		}

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}
	return m, nil
}

// submit enters Pending and starts one request. A submit while another is
// in flight starts a second request; whichever answers last is shown.
func (m Model) submit() (Model, tea.Cmd) {
	m.status = m.status.Start()
	logging.Editor("submitting %d rules", m.program.Len())

	program := m.program
	submitter := m.submitter
	send := func() tea.Msg {
		return SubmitResultMsg{Outcome: submitter.Submit(context.Background(), program)}
	}
	return m, tea.Batch(send, m.spinner.Tick)
}

func shiftField(f rules.Field, delta int) rules.Field {
	i := int(f) + delta
	if i < 0 {
		i = 0
	}
	if i >= len(rules.Fields) {
		i = len(rules.Fields) - 1
	}
	return rules.Fields[i]
}

// View renders the page.
func (m Model) View() string {
	if m.showLegend {
		return m.styles.Content.Render(m.legend + "\n" + m.styles.Muted.Render("press any key to close"))
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("pacman rule editor"))
	sb.WriteString("\n\n")
	sb.WriteString(ui.RenderRuleGrid(m.styles, m.program, m.cursor))
	sb.WriteString("\n")
	if m.program.Len() > 0 {
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("rule %d/%d, %s", m.cursor.Row+1, m.program.Len(), m.cursor.Field)))
		sb.WriteString("\n")
	}
	sb.WriteString(m.statusLine())
	sb.WriteString("\n\n")
	sb.WriteString(m.help.View(m.keys))

	return m.styles.Content.Render(sb.String())
}

func (m Model) statusLine() string {
	switch m.status.Phase {
	case client.Pending:
		return m.spinner.View() + " " + m.styles.Info.Render("Submitting...")
	case client.Finished:
		text := m.status.Result.String()
		switch m.status.Result.Kind {
		case client.Success:
			return m.styles.Success.Render(text)
		case client.Fail:
			return m.styles.Error.Render(text)
		default:
			return m.styles.Warning.Render(text)
		}
	default:
		return m.styles.Muted.Render("Not submitted yet")
	}
}

// legendMarkdown documents the icons. It is rendered once with glamour.
func legendMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Legend\n\n")
	sb.WriteString("Each row is a rule. The first matching rule from the top decides the move.\n\n")
	sb.WriteString("| Icon | Meaning |\n|---|---|\n")
	rows := []struct {
		icon    ui.Icon
		meaning string
	}{
		{ui.IconAny, "anything (sensor ignored)"},
		{ui.IconWall, "wall"},
		{ui.IconEmpty, "empty square"},
		{ui.IconGhost, "ghost"},
		{ui.IconBerry, "berry"},
		{ui.IconTick, "berry already taken"},
		{ui.IconCross, "berry not taken yet"},
		{ui.IconUp, "move up"},
		{ui.IconDown, "move down"},
		{ui.IconLeft, "move left"},
		{ui.IconRight, "move right"},
		{ui.IconWait, "wait"},
	}
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", ui.Glyph(r.icon), r.meaning))
	}
	sb.WriteString("| `A`..`H` | bot state |\n")
	sb.WriteString("\nColumns: state, up, down, left, right, berry ⇒ move, next state.\n")
	return sb.String()
}

func renderLegend(styles ui.Styles, width int) string {
	md := legendMarkdown()
	style := "light"
	if styles.Theme.IsDark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

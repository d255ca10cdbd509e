package editor

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pacman/cmd/pacman/ui"
	"pacman/internal/client"
	"pacman/internal/rules"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	outcome  client.Outcome
	received []rules.Program
}

func (f *fakeSubmitter) Submit(_ context.Context, p rules.Program) client.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, p)
	return f.outcome
}

func newTestEditor(outcome client.Outcome) (Model, *fakeSubmitter) {
	sub := &fakeSubmitter{outcome: outcome}
	return New(sub, ui.NewStyles(ui.LightTheme())), sub
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findResult(t *testing.T, cmd tea.Cmd) SubmitResultMsg {
	t.Helper()
	for _, msg := range collect(cmd) {
		if r, ok := msg.(SubmitResultMsg); ok {
			return r
		}
	}
	t.Fatal("no SubmitResultMsg produced")
	return SubmitResultMsg{}
}

func TestAppendAndCycle(t *testing.T) {
	m, _ := newTestEditor(client.Outcome{Kind: client.Success})

	m = press(t, m, runes("a"), runes("+"))
	require.Equal(t, 2, m.Program().Len())
	assert.Equal(t, 1, m.Cursor().Row)
	assert.True(t, m.Program()[0].Equal(rules.NewRule()))

	// Cursor starts on the state sensor; move to "up" and cycle twice.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeySpace}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, rules.FieldUp, m.Cursor().Field)
	require.NotNil(t, m.Program()[1].Up)
	assert.Equal(t, rules.CellEmpty, *m.Program()[1].Up)
	assert.Nil(t, m.Program()[0].Up)
}

func TestCursorClamps(t *testing.T) {
	m, _ := newTestEditor(client.Outcome{})

	m = press(t, m, runes("k"), runes("h"))
	assert.Equal(t, ui.Cursor{Row: 0, Field: rules.FieldState}, m.Cursor())

	for i := 0; i < 20; i++ {
		m = press(t, m, runes("l"))
	}
	assert.Equal(t, rules.FieldNextState, m.Cursor().Field)

	m = press(t, m, runes("a"), runes("j"), runes("j"))
	assert.Equal(t, 0, m.Cursor().Row)
}

func TestRemoveAdjustsCursor(t *testing.T) {
	m, _ := newTestEditor(client.Outcome{})
	m = press(t, m, runes("a"), runes("a"), runes("a"))
	require.Equal(t, 2, m.Cursor().Row)

	m = press(t, m, runes("x"))
	assert.Equal(t, 2, m.Program().Len())
	assert.Equal(t, 1, m.Cursor().Row)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDelete}, runes("x"))
	assert.Equal(t, 0, m.Program().Len())
	assert.Equal(t, 0, m.Cursor().Row)

	// Removing from an empty program is a no-op.
	m = press(t, m, runes("x"))
	assert.Equal(t, 0, m.Program().Len())
}

func TestMoveRuleFollowsCursor(t *testing.T) {
	m, _ := newTestEditor(client.Outcome{})
	m = press(t, m, runes("a"), runes("a"))
	// Mark rule 1 (cursor row) with a wait->up move.
	m = press(t, m, runes("l"), runes("l"), runes("l"), runes("l"), runes("l"), runes("l"), runes(" "))
	require.Equal(t, rules.FieldNextMove, m.Cursor().Field)
	require.Equal(t, rules.MoveUp, m.Program()[1].NextMove)

	m = press(t, m, runes("K"))
	assert.Equal(t, 0, m.Cursor().Row)
	assert.Equal(t, rules.MoveUp, m.Program()[0].NextMove)

	// Already at the top: no-op.
	m = press(t, m, runes("K"))
	assert.Equal(t, rules.MoveUp, m.Program()[0].NextMove)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftDown})
	assert.Equal(t, 1, m.Cursor().Row)
	assert.Equal(t, rules.MoveUp, m.Program()[1].NextMove)

	m = press(t, m, runes("J"))
	assert.Equal(t, 1, m.Cursor().Row)
}

func TestSubmitSendsProgramOnce(t *testing.T) {
	m, sub := newTestEditor(client.Outcome{Kind: client.Success})
	m = press(t, m, runes("a"))

	m, cmd := m.Update(runes("s"))
	assert.Equal(t, client.Pending, m.Status().Phase)
	assert.Contains(t, m.View(), "Submitting")

	result := findResult(t, cmd)
	require.Len(t, sub.received, 1)
	assert.Equal(t, 1, sub.received[0].Len())

	m, cmd = m.Update(result)
	assert.Nil(t, cmd)
	assert.Equal(t, client.SubmitStatus{Phase: client.Finished, Result: client.Outcome{Kind: client.Success}}, m.Status())
	assert.Contains(t, m.View(), "Submitted")
}

func TestUnauthorisedNavigatesToLogin(t *testing.T) {
	m, _ := newTestEditor(client.Outcome{Kind: client.Unauthorised})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m, cmd = m.Update(findResult(t, cmd))

	require.NotNil(t, cmd)
	assert.Equal(t, ui.NavigateMsg{Page: ui.PageLogin}, cmd())
	assert.Equal(t, client.Unauthorised, m.Status().Result.Kind)
}

func TestOtherOutcomesDoNotNavigate(t *testing.T) {
	for _, o := range []client.Outcome{
		{Kind: client.RateLimitExceeded},
		{Kind: client.LevelClosed},
		client.Failed("bad status: 500"),
	} {
		m, _ := newTestEditor(o)
		m, cmd := m.Update(SubmitResultMsg{Outcome: o})
		assert.Nil(t, cmd, o.String())
		assert.Contains(t, m.View(), o.String())
	}
}

func TestLastResultWins(t *testing.T) {
	m, _ := newTestEditor(client.Outcome{})
	m = press(t, m, runes("s"), runes("s"))

	m = press(t, m, SubmitResultMsg{Outcome: client.Outcome{Kind: client.LevelClosed}})
	m = press(t, m, SubmitResultMsg{Outcome: client.Outcome{Kind: client.Success}})
	assert.Equal(t, client.Success, m.Status().Result.Kind)
}

func TestLegendToggle(t *testing.T) {
	m, _ := newTestEditor(client.Outcome{})

	m = press(t, m, runes("?"))
	view := m.View()
	assert.True(t, strings.Contains(view, "Legend") || strings.Contains(view, "LEGEND"), view)

	// Keys close the legend without editing.
	m = press(t, m, runes("a"))
	assert.Equal(t, 0, m.Program().Len())
	assert.NotContains(t, m.View(), "press any key to close")
}

func TestQuit(t *testing.T) {
	m, _ := newTestEditor(client.Outcome{})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWindowSize(t *testing.T) {
	m, _ := newTestEditor(client.Outcome{})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 30, m.height)
}

// Package app routes between the login and editor pages.
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"pacman/cmd/pacman/editor"
	"pacman/cmd/pacman/login"
	"pacman/cmd/pacman/ui"
	"pacman/internal/logging"
)

// Backend is what the pages need from the game server client.
type Backend interface {
	login.Authenticator
	editor.Submitter
}

// Model owns the current page and both page models.
type Model struct {
	page   ui.Page
	login  login.Model
	editor editor.Model
	width  int
	height int
}

// New creates the router on the login page.
func New(backend Backend, styles ui.Styles) Model {
	return Model{
		page:   ui.PageLogin,
		login:  login.New(backend, styles),
		editor: editor.New(backend, styles),
	}
}

// Page returns the page being shown.
func (m Model) Page() ui.Page { return m.page }

// Login returns the login page model.
func (m Model) Login() login.Model { return m.login }

// Editor returns the editor page model.
func (m Model) Editor() editor.Model { return m.editor }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.login.Init()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.NavigateMsg:
		logging.EditorDebug("navigate %s -> %s", m.page, msg.Page)
		m.page = msg.Page
		if m.page == ui.PageLogin {
			m.login = m.login.Reset()
			return m, m.login.Init()
		}
		return m, nil

	case tea.WindowSizeMsg:
		// Both pages track the size so switching does not lose it.
		m.width, m.height = msg.Width, msg.Height
		var c1, c2 tea.Cmd
		m.login, c1 = m.login.Update(msg)
		m.editor, c2 = m.editor.Update(msg)
		return m, tea.Batch(c1, c2)

	case editor.SubmitResultMsg:
		// Results may arrive after the user has left the editor.
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd

	case login.ResultMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.page {
	case ui.PageEditor:
		m.editor, cmd = m.editor.Update(msg)
	default:
		m.login, cmd = m.login.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.page == ui.PageEditor {
		return m.editor.View()
	}
	return m.login.View()
}

// Package login is the login form page.
package login

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pacman/cmd/pacman/ui"
	"pacman/internal/client"
	"pacman/internal/logging"
)

// Authenticator checks credentials against the game server.
type Authenticator interface {
	Authenticate(ctx context.Context, user, password string) error
}

// ResultMsg carries the authentication result back into Update.
type ResultMsg struct {
	Err error
}

type field int

const (
	fieldName field = iota
	fieldPassword
)

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Submit, k.Quit}}
}

// Model is the login form state.
type Model struct {
	name     textinput.Model
	password textinput.Model
	focus    field
	message  string

	auth   Authenticator
	keys   keyMap
	help   help.Model
	styles ui.Styles
}

// New creates an empty login form focused on the name field.
func New(auth Authenticator, styles ui.Styles) Model {
	name := textinput.New()
	name.Placeholder = "name"
	name.Prompt = "│ "
	name.CharLimit = 128
	name.Width = 32
	name.PromptStyle = styles.FocusedLabel
	name.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "│ "
	password.CharLimit = 128
	password.Width = 32
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.PromptStyle = styles.Label

	return Model{
		name:     name,
		password: password,
		auth:     auth,
		help:     help.New(),
		styles:   styles,
		keys: keyMap{
			Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
			Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
			Submit: key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "log in")),
			Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
		},
	}
}

// Name returns the typed user name.
func (m Model) Name() string { return m.name.Value() }

// Password returns the typed password.
func (m Model) Password() string { return m.password.Value() }

// Message returns the error shown under the form.
func (m Model) Message() string { return m.message }

// Reset clears the message. Typed fields are kept.
func (m Model) Reset() Model {
	m.message = ""
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case ResultMsg:
		if msg.Err == nil {
			logging.Login("logged in as %s", m.name.Value())
			m.message = ""
			return m, ui.Navigate(ui.PageEditor)
		}
		if errors.Is(msg.Err, client.ErrIncorrectCredentials) {
			m.message = client.ErrIncorrectCredentials.Error()
		} else {
			m.message = client.ErrorMessage(msg.Err)
		}
		logging.Login("login failed: %s", m.message)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
			return m.toggleFocus(), nil
		case key.Matches(msg, m.keys.Submit):
			if msg.String() == "enter" && m.focus == fieldName {
				return m.toggleFocus(), nil
			}
			return m, m.login()
		}
	}

	var cmd tea.Cmd
	if m.focus == fieldName {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) toggleFocus() Model {
	if m.focus == fieldName {
		m.focus = fieldPassword
		m.name.Blur()
		m.name.PromptStyle = m.styles.Label
		m.password.Focus()
		m.password.PromptStyle = m.styles.FocusedLabel
	} else {
		m.focus = fieldName
		m.password.Blur()
		m.password.PromptStyle = m.styles.Label
		m.name.Focus()
		m.name.PromptStyle = m.styles.FocusedLabel
	}
	return m
}

// login sends exactly one authentication request.
func (m Model) login() tea.Cmd {
	user, password := m.name.Value(), m.password.Value()
	auth := m.auth
	logging.Login("authenticating %s", user)
	return func() tea.Msg {
		return ResultMsg{Err: auth.Authenticate(context.Background(), user, password)}
	}
}

// View renders the form.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("pacman login"))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Label.Render("Name"))
	sb.WriteString("\n")
	sb.WriteString(m.name.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Label.Render("Password"))
	sb.WriteString("\n")
	sb.WriteString(m.password.View())
	sb.WriteString("\n\n")
	if m.message != "" {
		sb.WriteString(m.styles.Error.Render(m.message))
		sb.WriteString("\n\n")
	}
	sb.WriteString(m.help.View(m.keys))
	return m.styles.Content.Render(sb.String())
}

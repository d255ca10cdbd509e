package ui

import tea "github.com/charmbracelet/bubbletea"

// Page identifies one screen of the terminal UI.
type Page int

const (
	PageLogin Page = iota
	PageEditor
)

func (p Page) String() string {
	switch p {
	case PageLogin:
		return "login"
	case PageEditor:
		return "editor"
	default:
		return "unknown"
	}
}

// NavigateMsg asks the router to show another page.
type NavigateMsg struct {
	Page Page
}

// Navigate returns a command emitting NavigateMsg for page.
func Navigate(page Page) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Page: page} }
}

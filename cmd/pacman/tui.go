package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"pacman/cmd/pacman/app"
	"pacman/cmd/pacman/ui"
	"pacman/internal/client"
	"pacman/internal/logging"
)

// runTUI starts the login page and the rule editor.
func runTUI() error {
	c, err := newClient()
	if err != nil {
		return err
	}
	logging.Boot("starting TUI against %s", c.BaseURL())

	p := tea.NewProgram(
		app.New(c, ui.NewStyles(ui.DetectTheme())),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

func newClient() (*client.Client, error) {
	c, err := client.New(client.Config{
		BaseURL: cfg.Client.BaseURL,
		Timeout: cfg.GetClientTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pacman/cmd/pacman/ui"
	"pacman/internal/client"
)

// submissionsCmd lists what has been submitted so far
var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "List submissions on the game server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return listSubmissions(cmd.Context(), c, ui.NewStyles(ui.DetectTheme()))
	},
}

func listSubmissions(ctx context.Context, c *client.Client, styles ui.Styles) error {
	subs, err := c.Submissions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %s", client.ErrorMessage(err))
	}
	logger.Debug("fetched submissions", zap.Int("count", len(subs.Submissions)))

	table := ui.NewSimpleTable("Submissions", []string{"ID", "User"})
	for _, s := range subs.Submissions {
		table.AddRow(strconv.FormatUint(s.ID, 10), s.User)
	}
	fmt.Println(table.View(styles, "no submissions yet"))

	level := "open"
	if subs.LevelClosed {
		level = "closed"
	}
	fmt.Printf("Level is %s\n", level)
	return nil
}

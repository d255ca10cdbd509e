package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pacman/internal/config"
	"pacman/internal/logging"
	"pacman/internal/ratelimit"
	"pacman/internal/server"
	"pacman/internal/store"
)

var listenAddr string

// serveCmd runs a local game API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local game API server",
	Long: `Runs the game API the editor talks to: login, submissions and the
admin controls (level state, reset, per-user rate limits).

Users come from the users file, one "name password" pair per line. The file
is reloaded when it changes. Without a users file the only user is labas/rytas.

The level starts closed; open it with POST /api/admin/levelstate.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Listen, err)
	}
	return serve(ctx, cfg, afero.NewOsFs(), ln, logger)
}

// serve runs the API server and the users watcher until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, fsys afero.Fs, ln net.Listener, logger *zap.Logger) error {
	// Only a users file that exists at startup is watched; the default
	// user stays in place for the lifetime of the process.
	watchUsers := true
	users, err := server.LoadUsers(fsys, cfg.Server.UsersFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("users file not found, using the default user",
			zap.String("path", cfg.Server.UsersFile))
		users = server.DefaultUsers()
		watchUsers = false
	case err != nil:
		ln.Close()
		return err
	}
	directory := server.NewDirectory(users)

	submissions, err := store.NewSubmissionStore(cfg.Server.DatabasePath)
	if err != nil {
		ln.Close()
		return err
	}
	defer submissions.Close()

	game, err := server.NewGame(ratelimit.Limit{
		Count:  int(cfg.Server.RateLimitCount),
		Window: cfg.GetRateLimitWindow(),
	}, submissions)
	if err != nil {
		ln.Close()
		return err
	}

	stored, err := submissions.Count(ctx)
	if err != nil {
		ln.Close()
		return err
	}

	var watcher *server.UsersWatcher
	if watchUsers {
		watcher, err = server.NewUsersWatcher(fsys, cfg.Server.UsersFile, directory)
		if err != nil {
			ln.Close()
			return err
		}
	}

	srv := server.New(game, directory, cfg.Server.AdminToken, logger)
	logger.Info("starting server",
		zap.String("addr", ln.Addr().String()),
		zap.Int("users", directory.Len()),
		zap.Bool("watch_users", watchUsers),
		zap.String("db", submissions.Path()),
		zap.Int("stored_submissions", stored),
		zap.Bool("file_logs", logging.IsDebugMode()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln, cfg.GetShutdownTimeout())
	})
	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	return g.Wait()
}

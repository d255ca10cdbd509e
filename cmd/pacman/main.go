package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pacman/internal/config"
	"pacman/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	serverURL  string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pacman",
	Short: "pacman - program a Pacman bot with rules",
	Long: `pacman is a terminal client for the Pacman bot-programming game.

A bot program is an ordered list of rules. Each rule matches what the bot
senses around it (walls, ghosts, the berry, its own state) and says which way
to move and which state to switch to. The first matching rule wins.

Run without arguments to log in and open the rule editor.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if serverURL != "" {
			cfg.Client.BaseURL = serverURL
		}
		if err := logging.Initialize(cfg.Logging.Options()); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.BootDebug("config %s, server %s", configPath, cfg.Client.BaseURL)

		// The TUI owns the terminal; only file logging is allowed there.
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "pacman.yaml", "Config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Game server URL (overrides config)")

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides config)")
	configCmd.Flags().BoolVar(&forceConfig, "force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submissionsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

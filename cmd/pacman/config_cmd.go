package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var forceConfig bool

// configCmd writes the effective configuration to the config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the effective configuration to the config file",
	Long: `Writes the configuration in use (defaults, environment overrides and
--server) to the file named by --config, so it can be edited.

An existing file is left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeConfig(configPath, forceConfig)
	},
}

func writeConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	logger.Info("wrote config", zap.String("path", path))
	fmt.Printf("Wrote %s\n", path)
	return nil
}

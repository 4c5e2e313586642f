// Package commands provides the CLI commands for the gfc tool.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/qvbps/go-flow-classes/internal/config"
	"github.com/qvbps/go-flow-classes/internal/log"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "gfc",
	Short: "go-flow-classes - Control-flow connectivity analysis",
	Long: `go-flow-classes splits functions into basic blocks, records the jumps
between them, and groups the blocks into connectivity bundles: sets of blocks
linked by control flow, directly or transitively, ignoring edge direction.

Commands:
  bundles     Report connectivity bundles for a function
  cfg         Print raw basic blocks and edges for a function
  scan        Analyze every function under a directory
  init        Create a config file interactively

Use "gfc [command] --help" for more information about a command.`,
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig loads configuration and applies its logging settings.
func loadConfig() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := log.Default()
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	if cfg.JSONLogs {
		logger.SetJSONOutput(true)
	}
	return cfg, logger, nil
}

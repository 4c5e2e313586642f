package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/qvbps/go-flow-classes/internal/config"
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gfc configuration interactively",
	Long: `Guides you through setting up gfc configuration step by step.
Creates ~/.gfc/config.yaml with cache and logging settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	defaults := config.DefaultConfig()

	cacheDir := defaults.CacheDir
	maxEntries := strconv.Itoa(defaults.CacheMaxEntries)
	verbose := defaults.Verbose

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cache directory").
				Description("Where analysis snapshots are stored").
				Placeholder(defaults.CacheDir).
				Value(&cacheDir),
			huh.NewInput().
				Title("Maximum cached analyses").
				Description("0 means unlimited").
				Placeholder(maxEntries).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil {
						return fmt.Errorf("must be a number")
					}
					if n < 0 {
						return fmt.Errorf("must be non-negative")
					}
					return nil
				}).
				Value(&maxEntries),
			huh.NewConfirm().
				Title("Enable verbose logging?").
				Value(&verbose),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	entries, err := strconv.Atoi(maxEntries)
	if err != nil {
		return fmt.Errorf("invalid max entries: %w", err)
	}

	cfg := &config.Config{
		CacheDir:        cacheDir,
		CacheMaxEntries: entries,
		Verbose:         verbose,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path := config.GlobalPath()
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}

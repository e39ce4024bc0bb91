// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/txcat/internal/config"
	"fjacquet/txcat/internal/container"
	"fjacquet/txcat/internal/logging"

	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// ConfigFile is an explicit configuration file passed with --config
	ConfigFile string

	appContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "txcat",
		Short: "A CLI tool to categorize bank transactions.",
		Long: `txcat assigns categories to bank transactions.

It tries user overrides first, then keyword scoring, and can fall back to a
completion API (Gemini or an OpenAI-compatible endpoint) for the rest.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to txcat!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initContainer()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer == nil {
				return
			}
			if err := appContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to close completion client")
			}
		},
	}
)

// Init initializes the root command flags
func Init() {
	Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default searches $HOME/.txcat, .txcat and .)")
}

func initContainer() error {
	if appContainer != nil {
		return nil
	}

	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	appContainer = c
	Log = c.GetLogger()
	return nil
}

// GetContainer returns the application container, or nil before the root
// command has run.
func GetContainer() *container.Container {
	return appContainer
}

// SetContainer replaces the application container. Tests use it to run
// subcommands against a prepared container.
func SetContainer(c *container.Container) {
	appContainer = c
	if c != nil {
		Log = c.GetLogger()
	}
}

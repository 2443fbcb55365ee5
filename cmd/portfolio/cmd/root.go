package cmd

import (
	"os"

	"github.com/ibcoder/portfolio/internal/app"
	"github.com/ibcoder/portfolio/internal/config"
	"github.com/ibcoder/portfolio/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio site server and admin tool",
	Long: `portfolio runs the portfolio website and manages its user store.

Configuration is read from the environment, after loading a .env file when
one is present.

Use "portfolio [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads configuration and builds the service container. Commands
// that do not serve HTTP skip the session secret check.
func newApp(requireSecret bool) (*app.App, error) {
	cfg := config.New()
	if requireSecret {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	logger := logging.New()
	return app.New(cfg, logger), nil
}

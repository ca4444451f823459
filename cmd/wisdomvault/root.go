package main

import (
	"time"

	"github.com/spf13/cobra"
)

// appConfig holds the process-wide settings that belong to no package.
type appConfig struct {
	Env              string        `env:"APP_ENV" envDefault:"development"`
	Name             string        `env:"APP_NAME" envDefault:"wisdomvault"`
	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"3s"`
	GoogleOAuth      bool          `env:"GOOGLE_OAUTH_ENABLED" envDefault:"false"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wisdomvault",
		Short:         "WisdomVault web front end",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newHealthcheckCmd())
	return root
}

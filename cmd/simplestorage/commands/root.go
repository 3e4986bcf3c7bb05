package commands

import (
	"os"

	"github.com/spf13/cobra"

	"simplestorage/internal/telemetry"
)

var (
	logLevel  string
	logFormat string
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "simplestorage",
		Short:        "Deploy and query single-value SimpleStorage contracts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return telemetry.SetupLogging(os.Stderr, logLevel, logFormat)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", telemetry.FormatConsole, "log format (json or console)")

	root.AddCommand(serveCmd(), deployCmd(), setCmd(), getCmd())
	return root
}

// Command sqlkit renders statements for any registered dialect and checks
// configured connections.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// Version is set by the build.
var Version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "sqlkit",
		Short:         "Render SQL statements and check database connections",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	logger := func(cmd *cobra.Command) hclog.Logger {
		return hclog.New(&hclog.LoggerOptions{
			Name:   "sqlkit",
			Level:  hclog.LevelFromString(logLevel),
			Output: cmd.ErrOrStderr(),
		})
	}

	root.AddCommand(newDialectsCommand())
	root.AddCommand(newRenderCommand())
	root.AddCommand(newPingCommand(logger))
	return root
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/module_cmd"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/shared"
	"github.com/pixie-sh/modgen-cli/internal/version"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "modgen",
		Short:   "modgen - Django module scaffolding generator",
		Long:    "modgen scaffolds CRUD modules inside a Django REST project and wires them into routes, settings and the dependency-injection root.",
		Version: version.Info(),
	}

	// Custom version template
	rootCmd.SetVersionTemplate("modgen version {{.Version}}\n")

	// Bad flags are usage errors, same as a wrong argument count
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &shared.UsageError{Msg: err.Error()}
	})

	module_cmd.AddPersistentFlags(rootCmd)

	// Register commands
	rootCmd.AddCommand(module_cmd.CreateCmd())
	rootCmd.AddCommand(module_cmd.RemoveCmd())

	// Add version command for explicit version info
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "modgen version %s\n", version.Info())
		},
	})

	return rootCmd
}

// exitCode maps an Execute error to the process status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case shared.IsUsageError(err):
		return 2
	default:
		return 1
	}
}

func main() {
	os.Exit(exitCode(newRootCmd().ExecuteContext(context.Background())))
}

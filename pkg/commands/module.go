// Package commands provides public access to modgen commands for embedding in other CLIs.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/module_cmd"
)

// ModuleCmd returns a "module" command group holding create and remove,
// with the --config and --project-dir flags registered on the group.
func ModuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Scaffold and remove Django modules",
	}
	module_cmd.AddPersistentFlags(cmd)

	cmd.AddCommand(module_cmd.CreateCmd())
	cmd.AddCommand(module_cmd.RemoveCmd())

	return cmd
}

// CreateCmd returns the bare create command. The host CLI is expected to
// register the project flags, see ModuleCmd.
func CreateCmd() *cobra.Command {
	return module_cmd.CreateCmd()
}

// RemoveCmd returns the bare remove command.
func RemoveCmd() *cobra.Command {
	return module_cmd.RemoveCmd()
}

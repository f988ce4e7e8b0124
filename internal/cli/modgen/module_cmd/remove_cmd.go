package module_cmd

import (
	"github.com/spf13/cobra"

	"github.com/pixie-sh/modgen-cli/internal/console"
)

// RemoveOptions holds all the options for module removal.
type RemoveOptions struct {
	Version string
	Module  string
	DryRun  bool
	Output  string
}

// RemoveCmd returns the cobra command for module removal.
func RemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <version> <module_name>",
		Short: "Remove a module and its wiring",
		Long: `Delete a module directory and its API example file, then drop its lines
from the route table, INSTALLED_APPS and the dependency-injection root.

Examples:
  modgen remove v1 places
  modgen remove v1 places --dry-run
`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dryRun, _ = cmd.Flags().GetBool("dry-run")
			var output, _ = cmd.Flags().GetString("output")

			opts := RemoveOptions{
				Version: args[0],
				Module:  args[1],
				DryRun:  dryRun,
				Output:  output,
			}

			return removeModule(cmd, opts)
		},
	}

	cmd.Flags().Bool("dry-run", false, "Print the plan without deleting anything")
	cmd.Flags().String("output", "text", "Dry-run output format: text or json")

	return cmd
}

func removeModule(cmd *cobra.Command, opts RemoveOptions) error {
	out := console.New(cmd.OutOrStdout())

	gen, err := newGenerator(cmd, out, opts.DryRun, opts.Output)
	if err != nil {
		return report(out, err)
	}

	return report(out, gen.Remove(cmd.Context(), opts.Version, opts.Module))
}

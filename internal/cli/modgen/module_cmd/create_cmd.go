package module_cmd

import (
	"github.com/spf13/cobra"

	"github.com/pixie-sh/modgen-cli/internal/console"
)

// CreateOptions holds all the options for module creation.
type CreateOptions struct {
	Version string
	Module  string
	Fields  string
	DryRun  bool
	Output  string
}

// CreateCmd returns the cobra command for module creation.
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <version> <module_name>",
		Short: "Scaffold a new module",
		Long: `Scaffold a new CRUD module under <base_dir>/<app>/modules/<version>/<module_name>
and wire it into the route table, INSTALLED_APPS and the dependency-injection root.

Fields are declared as name=Type[:key=value,...] separated by ';'. Recognised
parameters are max_length, max_digits, decimal_places, default and null.

Nothing is written when one of the aggregate files cannot be wired. Files
that already exist are skipped.

Examples:
  # Create a module with two fields
  modgen create v1 places --fields "name=CharField:max_length=120;active=BooleanField"

  # Show what would be written without touching the project
  modgen create v1 places --dry-run --output json
`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields, _ = cmd.Flags().GetString("fields")
			var dryRun, _ = cmd.Flags().GetBool("dry-run")
			var output, _ = cmd.Flags().GetString("output")

			opts := CreateOptions{
				Version: args[0],
				Module:  args[1],
				Fields:  fields,
				DryRun:  dryRun,
				Output:  output,
			}

			return createModule(cmd, opts)
		},
	}

	cmd.Flags().StringP("fields", "f", "", "Field declarations, e.g. \"name=CharField:max_length=120;active=BooleanField\"")
	cmd.Flags().Bool("dry-run", false, "Print the plan without writing anything")
	cmd.Flags().String("output", "text", "Dry-run output format: text or json")

	return cmd
}

func createModule(cmd *cobra.Command, opts CreateOptions) error {
	out := console.New(cmd.OutOrStdout())

	gen, err := newGenerator(cmd, out, opts.DryRun, opts.Output)
	if err != nil {
		return report(out, err)
	}

	return report(out, gen.Create(cmd.Context(), opts.Version, opts.Module, opts.Fields))
}

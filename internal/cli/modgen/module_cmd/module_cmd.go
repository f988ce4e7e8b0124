package module_cmd

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pixie-sh/errors-go"
	"github.com/spf13/cobra"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/catalog"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/render"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/scaffold"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/shared"
	"github.com/pixie-sh/modgen-cli/internal/console"
)

// AddPersistentFlags registers the project flags shared by every module command.
func AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Path to configuration file (default: .modgen.yaml or modgen.yaml in the project dir)")
	cmd.PersistentFlags().String("project-dir", ".", "Root directory of the Django project")
}

// exactArgs is cobra.ExactArgs reporting a *shared.UsageError.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &shared.UsageError{Msg: fmt.Sprintf("%s requires %d arguments, received %d", cmd.Name(), n, len(args))}
		}
		return nil
	}
}

// newGenerator builds a Generator over the project directory named by the
// command's flags.
func newGenerator(cmd *cobra.Command, out *console.Printer, dryRun bool, output string) (*scaffold.Generator, error) {
	if output != scaffold.OutputText && output != scaffold.OutputJSON {
		return nil, &shared.UsageError{Msg: fmt.Sprintf("--output must be %s or %s (got %s)", scaffold.OutputText, scaffold.OutputJSON, output)}
	}

	var projectDir, _ = cmd.Flags().GetString("project-dir")
	var configPath, _ = cmd.Flags().GetString("config")
	if projectDir == "" {
		projectDir = "."
	}

	cfg, err := shared.LoadConfig(projectDir, configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	c, err := catalog.Default()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load templates")
	}

	gen := scaffold.NewGenerator(osfs.New(projectDir), cfg, render.NewRenderer(c, cfg.AppName), out)
	if dryRun {
		gen.WithDryRun(output)
	}
	return gen, nil
}

// report prints err on the console. Usage errors are handed back to cobra so
// the process exits with status 2; everything else exits 0.
func report(out *console.Printer, err error) error {
	if err == nil {
		return nil
	}
	if shared.IsUsageError(err) {
		return err
	}
	out.Error("%s", err)
	return nil
}

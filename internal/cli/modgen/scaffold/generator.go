// Package scaffold creates and removes Django modules. Each run first builds
// a Plan without writing anything, then applies it in one pass.
package scaffold

import (
	"context"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pixie-sh/errors-go"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/fieldspec"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/mutator"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/render"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/shared"
	"github.com/pixie-sh/modgen-cli/internal/console"
	"github.com/pixie-sh/modgen-cli/internal/pysyntax"
)

// Output formats for dry runs.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Generator runs create and remove against a project filesystem.
type Generator struct {
	fs        billy.Filesystem
	cfg       shared.GeneratorConfig
	renderer  *render.Renderer
	out       *console.Printer
	validator pysyntax.Validator

	dryRun bool
	output string
}

// NewGenerator returns a Generator over fs, whose root is the project dir.
func NewGenerator(fs billy.Filesystem, cfg shared.GeneratorConfig, renderer *render.Renderer, out *console.Printer) *Generator {
	return &Generator{
		fs:        fs,
		cfg:       cfg,
		renderer:  renderer,
		out:       out,
		validator: pysyntax.TreeSitter{},
		output:    OutputText,
	}
}

// WithValidator replaces the syntax guard. A nil validator disables it.
func (g *Generator) WithValidator(v pysyntax.Validator) *Generator {
	g.validator = v
	return g
}

// WithDryRun makes runs print their plan in the given format instead of applying it.
func (g *Generator) WithDryRun(output string) *Generator {
	g.dryRun = true
	if output != "" {
		g.output = output
	}
	return g
}

// Create scaffolds the module and wires it into the aggregate files.
func (g *Generator) Create(ctx context.Context, version, module, fieldsSpec string) error {
	desc, err := g.descriptor(version, module)
	if err != nil {
		return err
	}

	plan, err := g.PlanCreate(ctx, desc, fieldsSpec)
	if err != nil {
		return err
	}
	if g.report(plan) {
		return nil
	}

	g.out.Info("Creating module %s/%s", version, module)

	if err := g.applyCreate(plan); err != nil {
		return err
	}

	g.reportDiagnostics(plan.Diagnostics)
	g.out.Success("Module %s created at %s", desc.ClassName, plan.ModuleDir)
	return nil
}

// Remove deletes the module and unwires it from the aggregate files.
func (g *Generator) Remove(ctx context.Context, version, module string) error {
	desc, err := g.descriptor(version, module)
	if err != nil {
		return err
	}

	plan, err := g.PlanRemove(ctx, desc)
	if err != nil {
		return err
	}
	if g.report(plan) {
		return nil
	}

	g.out.Info("Removing module %s/%s", version, module)

	if err := g.applyRemove(plan); err != nil {
		return err
	}

	g.out.Success("Module %s removed", desc.ClassName)
	return nil
}

// PlanCreate computes a create run. Only reads touch the filesystem.
func (g *Generator) PlanCreate(ctx context.Context, desc shared.ModuleDescriptor, fieldsSpec string) (*Plan, error) {
	plan := g.newPlan(ActionCreate, desc)

	found, err := g.exists(plan.ModuleDir)
	if err != nil {
		return nil, err
	}
	if found {
		plan.Conflict = "module directory " + plan.ModuleDir + " already exists"
		return plan, nil
	}

	fields, diags := fieldspec.Parse(fieldsSpec)
	plan.Diagnostics = append(plan.Diagnostics, diags...)
	if len(fields) == 0 && len(diags) == 0 {
		fields = fieldspec.DefaultFields()
	}

	files, diags, err := g.renderer.RenderAll(desc, fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render module %s", desc.ModuleName)
	}
	plan.Diagnostics = append(plan.Diagnostics, diags...)

	seen := map[string]bool{}
	for _, f := range files {
		p := path.Join(g.cfg.BaseDir, f.Path)
		if dir := path.Dir(p); !seen[dir] {
			seen[dir] = true
			plan.Dirs = append(plan.Dirs, dir)
		}

		found, err := g.exists(p)
		if err != nil {
			return nil, err
		}
		plan.Files = append(plan.Files, FileOp{Path: p, Content: f.Content, Exists: found})
	}

	for _, target := range mutator.Targets(g.cfg) {
		edit, err := g.planEdit(ctx, target, func(content string) (string, error) {
			return target.Mutation.Insert(content, desc)
		})
		if err != nil {
			plan.Problems = append(plan.Problems, err)
		}
		if edit.Missing {
			plan.Problems = append(plan.Problems, &MissingAggregateError{Path: edit.Path})
		}
		plan.Edits = append(plan.Edits, edit)
	}

	artifact := desc.ExampleFile(g.cfg.ExamplesDir)
	found, err = g.exists(artifact)
	if err != nil {
		return nil, err
	}
	plan.Artifact = FileOp{
		Path:    artifact,
		Content: render.APIExamples(desc, fields, g.cfg.BaseURL, artifact),
		Exists:  found,
	}

	return plan, nil
}

// PlanRemove computes a remove run. Missing aggregate files are skipped.
func (g *Generator) PlanRemove(ctx context.Context, desc shared.ModuleDescriptor) (*Plan, error) {
	plan := g.newPlan(ActionRemove, desc)

	found, err := g.exists(plan.ModuleDir)
	if err != nil {
		return nil, err
	}
	if !found {
		plan.Conflict = "module directory " + plan.ModuleDir + " does not exist"
		return plan, nil
	}

	artifact := desc.ExampleFile(g.cfg.ExamplesDir)
	found, err = g.exists(artifact)
	if err != nil {
		return nil, err
	}
	plan.Artifact = FileOp{Path: artifact, Exists: found}

	for _, target := range mutator.Targets(g.cfg) {
		edit, err := g.planEdit(ctx, target, func(content string) (string, error) {
			return target.Mutation.Remove(content, desc), nil
		})
		if err != nil {
			plan.Problems = append(plan.Problems, err)
		}
		plan.Edits = append(plan.Edits, edit)
	}

	return plan, nil
}

// planEdit reads the target and computes its new content. An edit that
// breaks a file which parsed cleanly before is rejected.
func (g *Generator) planEdit(ctx context.Context, target mutator.Target, change func(string) (string, error)) (Edit, error) {
	edit := Edit{Name: target.Name, Path: target.Path}

	found, err := g.exists(target.Path)
	if err != nil {
		return edit, err
	}
	if !found {
		edit.Missing = true
		return edit, nil
	}

	before, err := util.ReadFile(g.fs, target.Path)
	if err != nil {
		return edit, errors.Wrap(err, "failed to read %s", target.Path)
	}
	edit.Before = string(before)
	edit.After = edit.Before

	after, err := change(edit.Before)
	if err != nil {
		if anchorErr, ok := err.(*mutator.AnchorError); ok {
			anchorErr.File = target.Path
		}
		return edit, err
	}
	edit.After = after

	if !edit.Changed() || g.validator == nil {
		return edit, nil
	}
	if g.validator.Validate(ctx, before, target.Path) != nil {
		return edit, nil
	}
	if err := g.validator.Validate(ctx, []byte(after), target.Path); err != nil {
		edit.After = edit.Before
		return edit, &BrokenEditError{Path: target.Path, Err: err}
	}
	return edit, nil
}

// report prints the plan when it will not be applied and reports whether
// the run stops here.
func (g *Generator) report(plan *Plan) bool {
	if g.dryRun {
		if g.output == OutputJSON {
			g.out.Raw(plan.JSON() + "\n")
		} else {
			plan.Describe(g.out)
		}
		return true
	}

	if !plan.Blocked() {
		return false
	}
	if plan.Conflict != "" {
		g.out.Warn("%s", plan.Conflict)
		return true
	}
	for _, err := range plan.Problems {
		g.out.Warn("%s", err)
	}
	g.out.Warn("%s aborted, no files were changed", plan.Action)
	return true
}

func (g *Generator) applyCreate(plan *Plan) error {
	for _, d := range plan.Dirs {
		if err := g.fs.MkdirAll(d, 0o755); err != nil {
			return errors.Wrap(err, "failed to create directory %s", d)
		}
	}

	for _, f := range plan.Files {
		if f.Exists {
			g.out.Info("File %s already exists, skipping", f.Path)
			continue
		}
		if err := util.WriteFile(g.fs, f.Path, []byte(f.Content), 0o644); err != nil {
			return errors.Wrap(err, "failed to write %s", f.Path)
		}
		g.out.Step("Created %s", f.Path)
	}

	if err := g.applyEdits(plan.Edits); err != nil {
		return err
	}

	if plan.Artifact.Exists {
		g.out.Info("File %s already exists, skipping", plan.Artifact.Path)
		return nil
	}
	if err := g.fs.MkdirAll(path.Dir(plan.Artifact.Path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create directory for %s", plan.Artifact.Path)
	}
	if err := util.WriteFile(g.fs, plan.Artifact.Path, []byte(plan.Artifact.Content), 0o644); err != nil {
		return errors.Wrap(err, "failed to write %s", plan.Artifact.Path)
	}
	g.out.Step("Created %s", plan.Artifact.Path)
	return nil
}

func (g *Generator) applyRemove(plan *Plan) error {
	if plan.Artifact.Exists {
		if err := g.fs.Remove(plan.Artifact.Path); err != nil {
			return errors.Wrap(err, "failed to delete %s", plan.Artifact.Path)
		}
		g.out.Step("Deleted %s", plan.Artifact.Path)
	}

	if err := util.RemoveAll(g.fs, plan.ModuleDir); err != nil {
		return errors.Wrap(err, "failed to delete %s", plan.ModuleDir)
	}
	g.out.Step("Deleted %s", plan.ModuleDir)

	return g.applyEdits(plan.Edits)
}

func (g *Generator) applyEdits(edits []Edit) error {
	for _, e := range edits {
		switch {
		case e.Missing:
			g.out.Warn("%s not found, skipping %s wiring", e.Path, e.Name)
		case !e.Changed():
			g.out.Info("%s already up to date", e.Path)
		default:
			if err := util.WriteFile(g.fs, e.Path, []byte(e.After), 0o644); err != nil {
				return errors.Wrap(err, "failed to update %s", e.Path)
			}
			g.out.Step("Updated %s", e.Path)
		}
	}
	return nil
}

func (g *Generator) reportDiagnostics(diags []shared.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	g.out.Warn("%d field issue(s) found:", len(diags))
	for _, d := range diags {
		g.out.Step("%s", d)
	}
}

func (g *Generator) newPlan(action Action, desc shared.ModuleDescriptor) *Plan {
	return &Plan{
		Action:    action,
		Module:    desc,
		ModuleDir: path.Join(g.cfg.BaseDir, desc.RelDir(g.cfg.AppName)),
	}
}

func (g *Generator) descriptor(version, module string) (shared.ModuleDescriptor, error) {
	if !shared.IsValidVersion(version) {
		return shared.ModuleDescriptor{}, &shared.UsageError{Msg: "version must look like v1 (got " + version + ")"}
	}
	if !shared.IsValidSnakeCase(module) {
		return shared.ModuleDescriptor{}, &shared.UsageError{Msg: "module name must be snake_case (got " + module + ")"}
	}
	return shared.NewModuleDescriptor(g.cfg.RootPackage, version, module), nil
}

func (g *Generator) exists(p string) (bool, error) {
	_, err := g.fs.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "failed to stat %s", p)
}

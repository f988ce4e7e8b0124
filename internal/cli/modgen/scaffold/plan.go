package scaffold

import (
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/shared"
	"github.com/pixie-sh/modgen-cli/internal/console"
)

// Action names what a plan does to the module.
type Action string

const (
	ActionCreate Action = "create"
	ActionRemove Action = "remove"
)

// FileOp is a file the plan writes (create) or deletes (remove). Paths are
// slash paths relative to the project directory.
type FileOp struct {
	Path    string
	Content string
	Exists  bool
}

// Edit is the computed change to one aggregate wiring file.
type Edit struct {
	Name    string
	Path    string
	Missing bool
	Before  string
	After   string
}

// Changed reports whether applying the edit rewrites the file.
func (e Edit) Changed() bool {
	return !e.Missing && e.Before != e.After
}

// Plan is everything a run intends to do, computed before anything is written.
type Plan struct {
	Action    Action
	Module    shared.ModuleDescriptor
	ModuleDir string

	// Conflict is set when the module's presence rules the action out.
	Conflict string

	Dirs     []string
	Files    []FileOp
	Edits    []Edit
	Artifact FileOp

	// Problems block the plan from being applied.
	Problems    []error
	Diagnostics []shared.Diagnostic
}

// Blocked reports whether the plan must not be applied.
func (p *Plan) Blocked() bool {
	return p.Conflict != "" || len(p.Problems) > 0
}

// Map is the plan as plain values, used for JSON output.
func (p *Plan) Map() map[string]any {
	files := make([]any, 0, len(p.Files))
	for _, f := range p.Files {
		files = append(files, map[string]any{"path": f.Path, "exists": f.Exists})
	}

	edits := make([]any, 0, len(p.Edits))
	for _, e := range p.Edits {
		edits = append(edits, map[string]any{
			"name":    e.Name,
			"path":    e.Path,
			"missing": e.Missing,
			"changed": e.Changed(),
		})
	}

	dirs := make([]any, 0, len(p.Dirs))
	for _, d := range p.Dirs {
		dirs = append(dirs, d)
	}

	problems := make([]any, 0, len(p.Problems))
	for _, err := range p.Problems {
		problems = append(problems, err.Error())
	}

	diags := make([]any, 0, len(p.Diagnostics))
	for _, d := range p.Diagnostics {
		diags = append(diags, map[string]any{"kind": string(d.Kind), "field": d.Field, "detail": d.Detail})
	}

	out := map[string]any{
		"action": string(p.Action),
		"module": map[string]any{
			"version":       p.Module.Version,
			"name":          p.Module.ModuleName,
			"class_name":    p.Module.ClassName,
			"app_full_name": p.Module.AppFullName,
		},
		"module_dir":  p.ModuleDir,
		"directories": dirs,
		"files":       files,
		"edits":       edits,
		"artifact":    map[string]any{"path": p.Artifact.Path, "exists": p.Artifact.Exists},
		"problems":    problems,
		"diagnostics": diags,
	}
	if p.Conflict != "" {
		out["conflict"] = p.Conflict
	}
	return out
}

// JSON renders Map as indented JSON with sorted keys.
func (p *Plan) JSON() string {
	return oj.JSON(p.Map(), &ojg.Options{Indent: 2, Sort: true})
}

// Describe prints the plan for a dry run.
func (p *Plan) Describe(out *console.Printer) {
	out.Info("Plan: %s module %s/%s (%s)", p.Action, p.Module.Version, p.Module.ModuleName, p.ModuleDir)
	if p.Conflict != "" {
		out.Warn("%s", p.Conflict)
		return
	}

	if p.Action == ActionRemove {
		out.Step("delete %s", p.ModuleDir)
	}
	for _, d := range p.Dirs {
		out.Step("mkdir %s", d)
	}
	for _, f := range p.Files {
		if f.Exists {
			out.Step("skip %s (exists)", f.Path)
			continue
		}
		out.Step("write %s", f.Path)
	}
	for _, e := range p.Edits {
		switch {
		case e.Missing:
			out.Step("missing %s", e.Path)
		case e.Changed():
			out.Step("edit %s", e.Path)
		default:
			out.Step("unchanged %s", e.Path)
		}
	}
	p.describeArtifact(out)

	for _, err := range p.Problems {
		out.Warn("%s", err)
	}
	for _, d := range p.Diagnostics {
		out.Warn("%s", d)
	}
}

func (p *Plan) describeArtifact(out *console.Printer) {
	if p.Artifact.Path == "" {
		return
	}
	switch {
	case p.Action == ActionCreate && p.Artifact.Exists:
		out.Step("skip %s (exists)", p.Artifact.Path)
	case p.Action == ActionCreate:
		out.Step("write %s", p.Artifact.Path)
	case p.Artifact.Exists:
		out.Step("delete %s", p.Artifact.Path)
	}
}

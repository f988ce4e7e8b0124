// Package render turns catalog entries into final file contents. Rendering is
// pure: it never touches the filesystem.
package render

import (
	"path"

	"github.com/pixie-sh/errors-go"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/catalog"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/fieldspec"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/shared"
)

// File is one rendered output.
type File struct {
	Role    catalog.Role
	RelPath string // relative to the module directory
	Path    string // relative to the base dir; written into the header
	Content string
}

// Renderer fills catalog templates for a module.
type Renderer struct {
	catalog *catalog.Catalog
	appName string
}

// NewRenderer returns a renderer over c. appName is the Django app directory
// the module tree lives under, used for header paths.
func NewRenderer(c *catalog.Catalog, appName string) *Renderer {
	return &Renderer{catalog: c, appName: appName}
}

// Render produces a single file. Field-derived values are only computed for
// the roles that use them.
func (r *Renderer) Render(desc shared.ModuleDescriptor, fields []fieldspec.FieldSpec, entry catalog.Entry) (File, []shared.Diagnostic, error) {
	data := catalog.Data{
		ModuleName:  desc.ModuleName,
		ClassName:   desc.ClassName,
		AppFullName: desc.AppFullName,
		VerboseName: shared.ToTitle(desc.ModuleName),
	}

	var diags []shared.Diagnostic
	switch entry.Role {
	case catalog.RoleModels:
		data.ModelFields, diags = catalog.ModelFieldsBlock(fields)
	case catalog.RoleSerializers:
		data.SerializerInputFields, diags = catalog.SerializerFieldsBlock(fields)
	case catalog.RoleAdmin:
		data.AdminListDisplay = catalog.AdminListDisplay(fields)
		data.AdminSearchFields = catalog.AdminSearchFields(fields)
	case catalog.RoleSeedCommand:
		data.SeedArguments = catalog.SeedArguments(fields)
	}

	rel, err := entry.Path(data)
	if err != nil {
		return File{}, nil, err
	}
	body, err := entry.Content(data)
	if err != nil {
		return File{}, nil, err
	}

	full := path.Join(desc.RelDir(r.appName), rel)
	return File{
		Role:    entry.Role,
		RelPath: rel,
		Path:    full,
		Content: WithHeader(full, body),
	}, diags, nil
}

// RenderAll renders every catalog entry in order.
func (r *Renderer) RenderAll(desc shared.ModuleDescriptor, fields []fieldspec.FieldSpec) ([]File, []shared.Diagnostic, error) {
	var (
		files []File
		diags []shared.Diagnostic
	)
	for _, entry := range r.catalog.Entries() {
		f, d, err := r.Render(desc, fields, entry)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to render %s", entry.Role)
		}
		files = append(files, f)
		diags = append(diags, d...)
	}
	return files, diags, nil
}

// WithHeader prefixes body with the generated-file comment naming p and a
// blank line. Empty bodies keep the blank line too.
func WithHeader(p, body string) string {
	return "# " + p + "\n\n" + body
}

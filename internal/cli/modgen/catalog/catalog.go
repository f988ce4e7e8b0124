// Package catalog holds the fixed family of Python templates a module is
// generated from, one per file role.
//
// Templates are flat: the only allowed actions are the substitution fields
// of Data. New rejects any template that branches, loops or calls
// functions, so a Catalog is a plain lookup table once built.
package catalog

import (
	"embed"
	"io/fs"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/pixie-sh/errors-go"
)

//go:embed templates/*.tmpl
var Templates embed.FS

// Role names the logical file a template produces.
type Role string

const (
	RoleInit         Role = "init"
	RoleAdmin        Role = "admin"
	RoleAPI          Role = "api"
	RoleApps         Role = "apps"
	RoleModels       Role = "models"
	RoleRepositories Role = "repositories"
	RoleSerializers  Role = "serializers"
	RoleServices     Role = "services"
	RoleTests        Role = "tests"
	RoleURLs         Role = "urls"
	RoleViews        Role = "views"
	RoleContainer    Role = "container"
	RoleMigrations   Role = "migrations"
	RoleSeedCommand  Role = "seed_command"
)

// Data is everything a template may reference.
type Data struct {
	ModuleName            string
	ClassName             string
	AppFullName           string
	VerboseName           string
	ModelFields           string // models role only
	SerializerInputFields string // serializers role only
	AdminListDisplay      string // admin role only
	AdminSearchFields     string // admin role only
	SeedArguments         string // seed command role only
}

var allowedFields = map[string]bool{
	"ModuleName":            true,
	"ClassName":             true,
	"AppFullName":           true,
	"VerboseName":           true,
	"ModelFields":           true,
	"SerializerInputFields": true,
	"AdminListDisplay":      true,
	"AdminSearchFields":     true,
	"SeedArguments":         true,
}

// Entry pairs a module-relative path pattern with its content template.
type Entry struct {
	Role Role

	path    *template.Template
	content *template.Template
}

// Path renders the entry's module-relative file path.
func (e Entry) Path(data Data) (string, error) {
	var b strings.Builder
	if err := e.path.Execute(&b, data); err != nil {
		return "", errors.Wrap(err, "failed to render path for %s", e.Role)
	}
	return b.String(), nil
}

// Content renders the entry's file body.
func (e Entry) Content(data Data) (string, error) {
	var b strings.Builder
	if err := e.content.Execute(&b, data); err != nil {
		return "", errors.Wrap(err, "failed to render template for %s", e.Role)
	}
	return b.String(), nil
}

// Catalog is an immutable, ordered set of entries. Build it once at startup
// and hand it to the renderer.
type Catalog struct {
	entries []Entry
}

type mapping struct {
	role         Role
	pathPattern  string
	templateFile string
}

var defaultMappings = []mapping{
	{RoleInit, "__init__.py", "templates/init.py.tmpl"},
	{RoleAdmin, "admin.py", "templates/admin.py.tmpl"},
	{RoleAPI, "api.py", "templates/api.py.tmpl"},
	{RoleApps, "apps.py", "templates/apps.py.tmpl"},
	{RoleModels, "models.py", "templates/models.py.tmpl"},
	{RoleRepositories, "repositories.py", "templates/repositories.py.tmpl"},
	{RoleSerializers, "serializers.py", "templates/serializers.py.tmpl"},
	{RoleServices, "services.py", "templates/services.py.tmpl"},
	{RoleTests, "tests.py", "templates/tests.py.tmpl"},
	{RoleURLs, "urls.py", "templates/urls.py.tmpl"},
	{RoleViews, "views.py", "templates/views.py.tmpl"},
	{RoleContainer, "container.py", "templates/container.py.tmpl"},
	{RoleMigrations, "migrations/__init__.py", "templates/migrations_init.py.tmpl"},
	{RoleSeedCommand, "management/commands/seed_{{.ModuleName}}.py", "templates/seed_command.py.tmpl"},
}

// Default builds the catalog from the embedded templates.
func Default() (*Catalog, error) {
	return New(Templates)
}

// New builds the catalog reading template files from fsys.
func New(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{entries: make([]Entry, 0, len(defaultMappings))}

	for _, m := range defaultMappings {
		body, err := fs.ReadFile(fsys, m.templateFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read template: %s", m.templateFile)
		}

		pathTmpl, err := parseFlat(string(m.role)+":path", m.pathPattern)
		if err != nil {
			return nil, err
		}
		contentTmpl, err := parseFlat(m.templateFile, string(body))
		if err != nil {
			return nil, err
		}

		c.entries = append(c.entries, Entry{
			Role:    m.role,
			path:    pathTmpl,
			content: contentTmpl,
		})
	}

	return c, nil
}

// Entries returns the entries in generation order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func parseFlat(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse template: %s", name)
	}
	if tmpl.Tree == nil {
		return tmpl, nil
	}
	for _, node := range tmpl.Tree.Root.Nodes {
		if err := checkFlat(name, node); err != nil {
			return nil, err
		}
	}
	return tmpl, nil
}

func checkFlat(name string, node parse.Node) error {
	switch n := node.(type) {
	case *parse.TextNode:
		return nil
	case *parse.ActionNode:
		if n.Pipe == nil || len(n.Pipe.Decl) > 0 || len(n.Pipe.Cmds) != 1 {
			return errors.New("template %s: only plain substitutions are allowed, got %s", name, n.String())
		}
		args := n.Pipe.Cmds[0].Args
		if len(args) != 1 {
			return errors.New("template %s: only plain substitutions are allowed, got %s", name, n.String())
		}
		field, ok := args[0].(*parse.FieldNode)
		if !ok || len(field.Ident) != 1 || !allowedFields[field.Ident[0]] {
			return errors.New("template %s: unknown placeholder %s", name, args[0].String())
		}
		return nil
	default:
		return errors.New("template %s: control structures are not allowed, got %s", name, node.String())
	}
}

package scaffold

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/oj"
	"github.com/pixie-sh/errors-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/catalog"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/mutator"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/render"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/shared"
	"github.com/pixie-sh/modgen-cli/internal/console"
)

const (
	routesPath    = "src/django_app/routes.py"
	settingsPath  = "src/django_app/settings.py"
	containerPath = "src/django_app/container.py"
	placesDir     = "src/django_app/modules/v1/places"
	placesExample = "examples/v1_places.http"
	placesFields  = "name=CharField:max_length=120;active=BooleanField"
)

const routesPy = `# django_app/routes.py

from django.urls import include, path

urlpatterns = [
    path('users/', include('django_app.modules.v1.users.urls')),
]
`

const settingsPy = `INSTALLED_APPS = [
    'django.contrib.admin',
    'rest_framework',
    'django_app.modules.v1.users',
]
`

const containerPy = `# django_app/container.py

from .modules.v1.users.container import UsersContainer
from dependency_injector import containers, providers


class CoreContainer(containers.DeclarativeContainer):
    users_container = providers.Container(UsersContainer)

    config = providers.Configuration()
`

var aggregatePaths = []string{routesPath, settingsPath, containerPath}

func newProject(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for p, content := range map[string]string{
		routesPath:    routesPy,
		settingsPath:  settingsPy,
		containerPath: containerPy,
	} {
		require.NoError(t, util.WriteFile(fs, p, []byte(content), 0o644))
	}
	return fs
}

func newGenerator(t *testing.T, fs billy.Filesystem) (*Generator, *bytes.Buffer) {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)

	cfg := shared.DefaultConfig()
	var buf bytes.Buffer
	return NewGenerator(fs, cfg, render.NewRenderer(c, cfg.AppName), console.New(&buf).NoColor()), &buf
}

func read(t *testing.T, fs billy.Filesystem, p string) string {
	t.Helper()
	data, err := util.ReadFile(fs, p)
	require.NoError(t, err, p)
	return string(data)
}

func exists(t *testing.T, fs billy.Filesystem, p string) bool {
	t.Helper()
	_, err := fs.Stat(p)
	return err == nil
}

func snapshot(t *testing.T, fs billy.Filesystem, paths ...string) map[string]string {
	t.Helper()
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		if exists(t, fs, p) {
			out[p] = read(t, fs, p)
		}
	}
	return out
}

func TestCreate_Places(t *testing.T) {
	fs := newProject(t)
	g, out := newGenerator(t, fs)

	require.NoError(t, g.Create(context.Background(), "v1", "places", placesFields))

	for _, name := range []string{
		"__init__.py", "admin.py", "api.py", "apps.py", "models.py", "repositories.py",
		"serializers.py", "services.py", "tests.py", "urls.py", "views.py", "container.py",
		"migrations/__init__.py", "management/commands/seed_places.py",
	} {
		p := placesDir + "/" + name
		content := read(t, fs, p)
		assert.True(t, strings.HasPrefix(content, "# django_app/modules/v1/places/"+name+"\n"), p)
	}

	models := read(t, fs, placesDir+"/models.py")
	assert.Contains(t, models, "    name = models.CharField(max_length=120)\n")
	assert.Contains(t, models, "    active = models.BooleanField()\n")

	assert.Contains(t, read(t, fs, routesPath), "    path('places/', include('django_app.modules.v1.places.urls')),\n")
	assert.Contains(t, read(t, fs, settingsPath), "    'django_app.modules.v1.places',\n]")

	container := read(t, fs, containerPath)
	assert.Contains(t, container, "from .modules.v1.places.container import PlacesContainer\nfrom dependency_injector")
	assert.Contains(t, container, "    places_container = providers.Container(PlacesContainer)\n")

	example := read(t, fs, placesExample)
	assert.Equal(t, 6, strings.Count(example, "\n### "))

	assert.Contains(t, out.String(), "Module Places created at "+placesDir)
	assert.NotContains(t, out.String(), "Warning:")
}

func TestCreate_Twice(t *testing.T) {
	fs := newProject(t)
	g, out := newGenerator(t, fs)
	ctx := context.Background()

	require.NoError(t, g.Create(ctx, "v1", "places", placesFields))
	paths := append([]string{placesDir + "/models.py", placesExample}, aggregatePaths...)
	first := snapshot(t, fs, paths...)

	out.Reset()
	require.NoError(t, g.Create(ctx, "v1", "places", "other=IntegerField"))

	assert.Equal(t, first, snapshot(t, fs, paths...))
	assert.Contains(t, out.String(), "Warning: module directory "+placesDir+" already exists")
	assert.NotContains(t, out.String(), "Created")
}

func TestRemove_Nonexistent(t *testing.T) {
	fs := newProject(t)
	require.NoError(t, util.WriteFile(fs, "examples/v1_nonexistent.http", []byte("keep"), 0o644))
	g, out := newGenerator(t, fs)

	before := snapshot(t, fs, aggregatePaths...)
	require.NoError(t, g.Remove(context.Background(), "v1", "nonexistent"))

	assert.Equal(t, before, snapshot(t, fs, aggregatePaths...))
	assert.Equal(t, "keep", read(t, fs, "examples/v1_nonexistent.http"))
	assert.Contains(t, out.String(), "does not exist")
}

func TestCreateRemove_RoundTrip(t *testing.T) {
	fs := newProject(t)
	g, _ := newGenerator(t, fs)
	ctx := context.Background()

	before := snapshot(t, fs, aggregatePaths...)
	require.NoError(t, g.Create(ctx, "v1", "places", placesFields))
	require.NoError(t, g.Remove(ctx, "v1", "places"))

	assert.Equal(t, before, snapshot(t, fs, aggregatePaths...))
	assert.False(t, exists(t, fs, placesDir))
	assert.False(t, exists(t, fs, placesExample))
}

func TestCreateRemove_EmptyRouteList(t *testing.T) {
	fs := newProject(t)
	require.NoError(t, util.WriteFile(fs, routesPath, []byte("urlpatterns = []\n"), 0o644))
	g, out := newGenerator(t, fs)
	ctx := context.Background()

	require.NoError(t, g.Create(ctx, "v1", "places", placesFields))
	assert.Equal(t, "urlpatterns = [\n    path('places/', include('django_app.modules.v1.places.urls')),\n]\n", read(t, fs, routesPath))

	require.NoError(t, g.Remove(ctx, "v1", "places"))
	assert.Equal(t, "urlpatterns = [\n]\n", read(t, fs, routesPath))
	assert.False(t, exists(t, fs, placesDir))
	assert.False(t, exists(t, fs, placesExample))
	assert.NotContains(t, out.String(), "Warning:")
}

func TestCreate_DefaultFieldWhenNoneGiven(t *testing.T) {
	fs := newProject(t)
	g, _ := newGenerator(t, fs)

	require.NoError(t, g.Create(context.Background(), "v1", "places", ""))

	assert.Contains(t, read(t, fs, placesDir+"/models.py"), "    name = models.CharField(max_length=255)\n")
	assert.Contains(t, read(t, fs, placesDir+"/serializers.py"), "    name = serializers.CharField(max_length=255)")

	admin := read(t, fs, placesDir+"/admin.py")
	assert.Contains(t, admin, "list_display = ('id', 'uuid', 'name', 'created_at', 'updated_at')")
	assert.Contains(t, admin, "search_fields = ('id', 'uuid', 'name')")

	assert.Contains(t, read(t, fs, placesDir+"/apps.py"), "verbose_name = 'Places'")
	assert.Contains(t, read(t, fs, placesDir+"/management/commands/seed_places.py"), "name=fake.pystr(max_chars=255),")
	assert.Contains(t, read(t, fs, placesExample), `"example name"`)
}

func TestCreate_MissingAnchorWritesNothing(t *testing.T) {
	fs := newProject(t)
	require.NoError(t, util.WriteFile(fs, routesPath, []byte("routes = []\n"), 0o644))
	g, out := newGenerator(t, fs)

	before := snapshot(t, fs, aggregatePaths...)
	require.NoError(t, g.Create(context.Background(), "v1", "places", placesFields))

	assert.Equal(t, before, snapshot(t, fs, aggregatePaths...))
	assert.False(t, exists(t, fs, placesDir))
	assert.False(t, exists(t, fs, placesExample))
	assert.Contains(t, out.String(), `src/django_app/routes.py: anchor "urlpatterns = [": not found`)
	assert.Contains(t, out.String(), "create aborted, no files were changed")
}

func TestPlanCreate_CollectsEveryProblem(t *testing.T) {
	fs := newProject(t)
	require.NoError(t, fs.Remove(settingsPath))
	require.NoError(t, util.WriteFile(fs, containerPath, []byte("x = 1\n"), 0o644))
	g, _ := newGenerator(t, fs)

	desc := shared.NewModuleDescriptor("django_app", "v1", "places")
	plan, err := g.PlanCreate(context.Background(), desc, placesFields)
	require.NoError(t, err)

	assert.True(t, plan.Blocked())
	require.Len(t, plan.Problems, 2)
	missing, ok := plan.Problems[0].(*MissingAggregateError)
	require.True(t, ok)
	assert.Equal(t, settingsPath, missing.Path)

	anchorErr, ok := plan.Problems[1].(*mutator.AnchorError)
	require.True(t, ok)
	assert.Equal(t, containerPath, anchorErr.File)
}

type rejectModule struct{ marker string }

func (r rejectModule) Validate(_ context.Context, content []byte, p string) error {
	if strings.Contains(string(content), r.marker) {
		return errors.New("%s: broken", p)
	}
	return nil
}

func TestCreate_SyntaxGuardAborts(t *testing.T) {
	fs := newProject(t)
	g, out := newGenerator(t, fs)
	g.WithValidator(rejectModule{marker: "PlacesContainer"})

	before := snapshot(t, fs, aggregatePaths...)
	require.NoError(t, g.Create(context.Background(), "v1", "places", placesFields))

	assert.Equal(t, before, snapshot(t, fs, aggregatePaths...))
	assert.False(t, exists(t, fs, placesDir))
	assert.Contains(t, out.String(), "edit would break src/django_app/container.py")
}

func TestCreate_ExistingArtifactKept(t *testing.T) {
	fs := newProject(t)
	require.NoError(t, util.WriteFile(fs, placesExample, []byte("mine"), 0o644))
	g, out := newGenerator(t, fs)

	require.NoError(t, g.Create(context.Background(), "v1", "places", placesFields))

	assert.Equal(t, "mine", read(t, fs, placesExample))
	assert.Contains(t, out.String(), "File "+placesExample+" already exists, skipping")
}

func TestCreate_AlreadyWiredAggregates(t *testing.T) {
	fs := newProject(t)
	g, out := newGenerator(t, fs)
	ctx := context.Background()

	require.NoError(t, g.Create(ctx, "v1", "places", placesFields))
	wired := snapshot(t, fs, aggregatePaths...)
	require.NoError(t, util.RemoveAll(fs, placesDir))

	out.Reset()
	require.NoError(t, g.Create(ctx, "v1", "places", placesFields))

	assert.Equal(t, wired, snapshot(t, fs, aggregatePaths...))
	assert.Contains(t, out.String(), routesPath+" already up to date")
}

func TestCreate_ReportsDiagnostics(t *testing.T) {
	fs := newProject(t)
	g, out := newGenerator(t, fs)

	require.NoError(t, g.Create(context.Background(), "v1", "places", "broken;id=UUIDField"))

	assert.Contains(t, out.String(), "Warning: 2 field issue(s) found:")
	assert.Contains(t, out.String(), "malformed-field")
	assert.Contains(t, out.String(), "unrecognized-field-kind (id)")
	assert.Contains(t, read(t, fs, placesDir+"/serializers.py"), "    id = serializers.CharField()  # type UUIDField not recognized\n")
}

func TestRemove_MissingAggregateSkipped(t *testing.T) {
	fs := newProject(t)
	g, out := newGenerator(t, fs)
	ctx := context.Background()

	require.NoError(t, g.Create(ctx, "v1", "places", placesFields))
	require.NoError(t, fs.Remove(settingsPath))

	require.NoError(t, g.Remove(ctx, "v1", "places"))

	assert.False(t, exists(t, fs, placesDir))
	assert.Equal(t, routesPy, read(t, fs, routesPath))
	assert.Equal(t, containerPy, read(t, fs, containerPath))
	assert.Contains(t, out.String(), "Warning: "+settingsPath+" not found, skipping settings wiring")
}

func TestCreate_DryRunText(t *testing.T) {
	fs := newProject(t)
	g, out := newGenerator(t, fs)
	g.WithDryRun(OutputText)

	before := snapshot(t, fs, aggregatePaths...)
	require.NoError(t, g.Create(context.Background(), "v1", "places", placesFields))

	assert.Equal(t, before, snapshot(t, fs, aggregatePaths...))
	assert.False(t, exists(t, fs, placesDir))
	assert.Contains(t, out.String(), "Plan: create module v1/places ("+placesDir+")")
	assert.Contains(t, out.String(), "  write "+placesDir+"/models.py\n")
	assert.Contains(t, out.String(), "  edit "+routesPath+"\n")
	assert.Contains(t, out.String(), "  write "+placesExample+"\n")
}

func TestCreate_DryRunJSON(t *testing.T) {
	fs := newProject(t)
	g, out := newGenerator(t, fs)
	g.WithDryRun(OutputJSON)

	require.NoError(t, g.Create(context.Background(), "v1", "places", placesFields))
	assert.False(t, exists(t, fs, placesDir))

	parsed, err := oj.ParseString(out.String())
	require.NoError(t, err)

	plan, ok := parsed.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "create", plan["action"])
	assert.Equal(t, placesDir, plan["module_dir"])
	assert.Len(t, plan["files"], 14)
	assert.Len(t, plan["edits"], 3)
	assert.Empty(t, plan["problems"])
}

func TestRemove_DryRun(t *testing.T) {
	fs := newProject(t)
	g, _ := newGenerator(t, fs)
	ctx := context.Background()
	require.NoError(t, g.Create(ctx, "v1", "places", placesFields))

	dry, out := newGenerator(t, fs)
	dry.WithDryRun("")
	require.NoError(t, dry.Remove(ctx, "v1", "places"))

	assert.True(t, exists(t, fs, placesDir))
	assert.Contains(t, out.String(), "  delete "+placesDir+"\n")
	assert.Contains(t, out.String(), "  delete "+placesExample+"\n")
}

func TestInvalidNames(t *testing.T) {
	g, _ := newGenerator(t, newProject(t))
	ctx := context.Background()

	tests := []struct {
		version string
		module  string
	}{
		{"1", "places"},
		{"v1", "Places"},
		{"v1", "places-list"},
		{"v1", ""},
	}

	for _, tt := range tests {
		err := g.Create(ctx, tt.version, tt.module, "")
		var usage *shared.UsageError
		require.ErrorAs(t, err, &usage, "%s/%s", tt.version, tt.module)
	}
}

func TestProblemErrors(t *testing.T) {
	missing := &MissingAggregateError{Path: settingsPath}
	assert.Equal(t, "aggregate file src/django_app/settings.py not found", missing.Error())

	inner := &mutator.AnchorError{Anchor: "x", Reason: "not found"}
	broken := &BrokenEditError{Path: routesPath, Err: inner}
	assert.Equal(t, `edit would break src/django_app/routes.py: anchor "x": not found`, broken.Error())

	var anchorErr *mutator.AnchorError
	require.ErrorAs(t, broken, &anchorErr)
}

package shared

import (
	"os"
	"path"
	"path/filepath"

	"github.com/pixie-sh/errors-go"
	"gopkg.in/yaml.v3"
)

// GeneratorConfig holds the paths and anchors used when scaffolding a module.
// Paths are slash-separated and relative to the project directory. Loaded from
// .modgen.yaml or modgen.yaml if present, otherwise defaults are used.
type GeneratorConfig struct {
	// Directory conventions
	BaseDir     string `yaml:"base_dir"`     // e.g. "src"
	AppName     string `yaml:"app_name"`     // e.g. "django_app"
	ExamplesDir string `yaml:"examples_dir"` // e.g. "examples"

	// Python package prefix used in dotted import paths
	RootPackage string `yaml:"root_package"` // e.g. "django_app"

	// Aggregate wiring files (relative to BaseDir/AppName)
	RoutesFile    string `yaml:"routes_file"`
	SettingsFile  string `yaml:"settings_file"`
	ContainerFile string `yaml:"container_file"`

	// Dependency-injection anchors
	ContainerClass  string `yaml:"container_class"`  // e.g. "CoreContainer"
	ContainerAnchor string `yaml:"container_anchor"` // import line the module import goes above

	// Base URL written into the API example artifact
	BaseURL string `yaml:"base_url"`
}

// DefaultConfig returns a GeneratorConfig matching the stock project layout.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		BaseDir:         "src",
		AppName:         "django_app",
		ExamplesDir:     "examples",
		RootPackage:     "django_app",
		RoutesFile:      "routes.py",
		SettingsFile:    "settings.py",
		ContainerFile:   "container.py",
		ContainerClass:  "CoreContainer",
		ContainerAnchor: "from dependency_injector import containers, providers",
		BaseURL:         "http://localhost:8000/api",
	}
}

// AppDir is the slash path of the Django application package.
func (c GeneratorConfig) AppDir() string {
	return path.Join(c.BaseDir, c.AppName)
}

// RoutesPath is the slash path of the route aggregator.
func (c GeneratorConfig) RoutesPath() string {
	return path.Join(c.AppDir(), c.RoutesFile)
}

// SettingsPath is the slash path of the settings module holding INSTALLED_APPS.
func (c GeneratorConfig) SettingsPath() string {
	return path.Join(c.AppDir(), c.SettingsFile)
}

// ContainerPath is the slash path of the dependency-injection composition root.
func (c GeneratorConfig) ContainerPath() string {
	return path.Join(c.AppDir(), c.ContainerFile)
}

// Validate reports the first empty setting.
func (c GeneratorConfig) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"base_dir", c.BaseDir},
		{"app_name", c.AppName},
		{"examples_dir", c.ExamplesDir},
		{"root_package", c.RootPackage},
		{"routes_file", c.RoutesFile},
		{"settings_file", c.SettingsFile},
		{"container_file", c.ContainerFile},
		{"container_class", c.ContainerClass},
		{"container_anchor", c.ContainerAnchor},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.New("config key %s must not be empty", r.key)
		}
	}
	return nil
}

// LoadConfig loads configuration for the project rooted at projectDir.
// When explicitPath is set it must exist; otherwise .modgen.yaml and then
// modgen.yaml are tried. Missing files yield DefaultConfig with no error.
func LoadConfig(projectDir, explicitPath string) (GeneratorConfig, error) {
	cfg := DefaultConfig()

	var data []byte
	if explicitPath != "" {
		content, err := os.ReadFile(explicitPath)
		if err != nil {
			return cfg, errors.Wrap(err, "failed to read config file %s", explicitPath)
		}
		data = content
	} else {
		found := false
		for _, name := range []string{".modgen.yaml", "modgen.yaml"} {
			content, err := os.ReadFile(filepath.Join(projectDir, name))
			if err == nil {
				data = content
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	var wrapper struct {
		Modgen GeneratorConfig `yaml:"modgen"`
	}
	wrapper.Modgen = cfg // preserve defaults

	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return cfg, errors.Wrap(err, "failed to parse modgen config file")
	}

	if err := wrapper.Modgen.Validate(); err != nil {
		return cfg, err
	}

	return wrapper.Modgen, nil
}

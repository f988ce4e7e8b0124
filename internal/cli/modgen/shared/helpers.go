package shared

import (
	"fmt"
	"path"
	"strings"
)

// ModuleDescriptor identifies one generated module. It is derived from CLI
// input on every run and never stored.
type ModuleDescriptor struct {
	Version     string // v1
	ModuleName  string // weather_stations
	ClassName   string // WeatherStations
	AppFullName string // django_app.modules.v1.weather_stations
}

// NewModuleDescriptor derives the names for module under version.
func NewModuleDescriptor(rootPackage, version, module string) ModuleDescriptor {
	return ModuleDescriptor{
		Version:     version,
		ModuleName:  module,
		ClassName:   ToCamelCase(module),
		AppFullName: strings.Join([]string{rootPackage, "modules", version, module}, "."),
	}
}

// URLsModule is the dotted path handed to Django's include().
func (d ModuleDescriptor) URLsModule() string {
	return d.AppFullName + ".urls"
}

// ContainerClass is the module-level DeclarativeContainer class name.
func (d ModuleDescriptor) ContainerClass() string {
	return d.ClassName + "Container"
}

// ContainerAttr is the attribute exposing the module container on the core container.
func (d ModuleDescriptor) ContainerAttr() string {
	return d.ModuleName + "_container"
}

// RelDir is the module directory relative to the base dir.
func (d ModuleDescriptor) RelDir(appName string) string {
	return path.Join(appName, "modules", d.Version, d.ModuleName)
}

// ExampleFile is the API example artifact path relative to the project dir.
func (d ModuleDescriptor) ExampleFile(examplesDir string) string {
	return path.Join(examplesDir, fmt.Sprintf("%s_%s.http", d.Version, d.ModuleName))
}

// IsValidSnakeCase checks whether s is a valid snake_case identifier.
func IsValidSnakeCase(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9' && i > 0) || (r == '_' && i > 0 && i < len(s)-1)) {
			return false
		}
	}
	return true
}

// IsValidVersion checks for version tags such as v1 or v2beta.
func IsValidVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' || s[1] < '0' || s[1] > '9' {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// ToCamelCase converts snake_case to CamelCase by upper-casing the first
// byte of every underscore-delimited segment. Nothing else is normalised.
func ToCamelCase(s string) string {
	words := strings.Split(s, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, "")
}

// ToTitle turns weather_stations into "Weather Stations" for verbose names.
func ToTitle(s string) string {
	words := strings.Split(s, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

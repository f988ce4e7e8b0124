package mutator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/shared"
)

// Mutation wires a module in or out of one aggregate file.
type Mutation interface {
	// Insert returns content with the module wired in. Content that already
	// carries the wiring is returned unchanged.
	Insert(content string, desc shared.ModuleDescriptor) (string, error)
	// Remove returns content with the module's wiring lines dropped.
	Remove(content string, desc shared.ModuleDescriptor) string
}

// Target binds a mutation to the aggregate file it edits.
type Target struct {
	Name     string
	Path     string // slash path relative to the project dir
	Mutation Mutation
}

// Targets returns the three aggregate targets in the order they are applied.
func Targets(cfg shared.GeneratorConfig) []Target {
	return []Target{
		{Name: "routes", Path: cfg.RoutesPath(), Mutation: Routes{}},
		{Name: "settings", Path: cfg.SettingsPath(), Mutation: Settings{}},
		{Name: "container", Path: cfg.ContainerPath(), Mutation: Container{Class: cfg.ContainerClass, ImportAnchor: cfg.ContainerAnchor}},
	}
}

// Routes registers the module's URL include in urlpatterns.
type Routes struct{}

// RoutesAnchor opens the route list.
const RoutesAnchor = "urlpatterns = ["

// RouteLine is the include line for desc.
func RouteLine(desc shared.ModuleDescriptor) string {
	return fmt.Sprintf("    path('%s/', include('%s')),", desc.ModuleName, desc.URLsModule())
}

func (Routes) Insert(content string, desc shared.ModuleDescriptor) (string, error) {
	line := RouteLine(desc)
	if hasLine(content, line) {
		return content, nil
	}

	at := strings.Index(content, RoutesAnchor)
	if at < 0 {
		return content, anchorNotFound(RoutesAnchor)
	}
	at += len(RoutesAnchor)
	nl := newline(content)

	// urlpatterns = [] or a one-line list: keep the rest of the line below the new entry
	if strings.TrimSpace(content[at:lineEnd(content, at)]) != "" {
		return content[:at] + nl + line + nl + content[at:], nil
	}
	return content[:at] + nl + line + content[at:], nil
}

func (Routes) Remove(content string, desc shared.ModuleDescriptor) string {
	return dropLines(content, func(l string) bool {
		return containsQuoted(l, desc.URLsModule())
	})
}

// Settings registers the module in INSTALLED_APPS.
type Settings struct{}

// SettingsAnchor names the installed-application list.
const SettingsAnchor = "INSTALLED_APPS"

var installedAppsPattern = regexp.MustCompile(`(?m)^` + SettingsAnchor + `\s*\+?=\s*`)

// SettingsLine is the INSTALLED_APPS entry for desc.
func SettingsLine(desc shared.ModuleDescriptor) string {
	return fmt.Sprintf("    '%s',", desc.AppFullName)
}

func (Settings) Insert(content string, desc shared.ModuleDescriptor) (string, error) {
	loc := installedAppsPattern.FindStringIndex(content)
	if loc == nil {
		return content, anchorNotFound(SettingsAnchor)
	}

	open := loc[1]
	if open >= len(content) || content[open] != '[' {
		return content, &AnchorError{Anchor: SettingsAnchor, Reason: "value is not a list literal"}
	}

	closeAt, last := bracketScan(content, open)
	if closeAt < 0 {
		return content, &AnchorError{Anchor: SettingsAnchor, Reason: "list brackets are unbalanced"}
	}

	if containsQuoted(content[open:closeAt], desc.AppFullName) {
		return content, nil
	}

	nl := newline(content)
	entry := SettingsLine(desc) + nl

	// INSTALLED_APPS = []
	if strings.TrimSpace(content[open+1:closeAt]) == "" {
		return content[:open+1] + nl + entry + content[closeAt:], nil
	}

	start := lineStart(content, closeAt)
	if strings.TrimSpace(content[start:closeAt]) != "" {
		return content, &AnchorError{Anchor: SettingsAnchor, Reason: "closing bracket must be on its own line"}
	}

	// Terminate the previous entry so the new string is not concatenated onto it.
	if c := content[last]; c != ',' && c != '[' {
		return content[:last+1] + "," + content[last+1:start] + entry + content[start:], nil
	}
	return content[:start] + entry + content[start:], nil
}

func (Settings) Remove(content string, desc shared.ModuleDescriptor) string {
	return dropLines(content, func(l string) bool {
		return containsQuoted(l, desc.AppFullName)
	})
}

// Container wires the module container into the composition root class.
type Container struct {
	Class        string // e.g. CoreContainer
	ImportAnchor string // import the module import is placed above
}

// ImportLine imports the module container class.
func ImportLine(desc shared.ModuleDescriptor) string {
	return fmt.Sprintf("from .modules.%s.%s.container import %s", desc.Version, desc.ModuleName, desc.ContainerClass())
}

// AssignmentLine exposes the module container on the root container.
func AssignmentLine(desc shared.ModuleDescriptor) string {
	return fmt.Sprintf("%s = providers.Container(%s)", desc.ContainerAttr(), desc.ContainerClass())
}

func (c Container) classPattern() *regexp.Regexp {
	return regexp.MustCompile(`(?m)^class\s+` + regexp.QuoteMeta(c.Class) + `\s*\(.*\)\s*:[ \t]*\r?$`)
}

func (c Container) Insert(content string, desc shared.ModuleDescriptor) (string, error) {
	original := content
	nl := newline(content)
	importLine := ImportLine(desc)
	assignment := AssignmentLine(desc)

	if !hasLine(content, importLine) {
		at := strings.Index(content, c.ImportAnchor)
		if at < 0 {
			return original, anchorNotFound(c.ImportAnchor)
		}
		at = lineStart(content, at)
		content = content[:at] + importLine + nl + content[at:]
	}

	if !hasLine(content, assignment) {
		loc := c.classPattern().FindStringIndex(content)
		if loc == nil {
			return original, anchorNotFound("class " + c.Class + "(...):")
		}
		at := lineEnd(content, loc[1])
		if at == len(content) && !strings.HasSuffix(content, "\n") {
			content += nl
			at = len(content)
		}
		content = content[:at] + bodyIndent(content[at:]) + assignment + nl + content[at:]
	}

	return content, nil
}

func (c Container) Remove(content string, desc shared.ModuleDescriptor) string {
	importLine := ImportLine(desc)
	assignment := AssignmentLine(desc)
	importDropped, assignmentDropped := false, false

	return dropLines(content, func(l string) bool {
		trimmed := strings.TrimSpace(l)
		switch {
		case !importDropped && trimmed == importLine:
			importDropped = true
			return true
		case !assignmentDropped && trimmed == assignment:
			assignmentDropped = true
			return true
		}
		return false
	})
}

// bodyIndent returns the indentation of the first non-blank line of body,
// falling back to four spaces.
func bodyIndent(body string) string {
	for _, l := range strings.Split(body, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		ws := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if ws != "" {
			return ws
		}
		break
	}
	return "    "
}

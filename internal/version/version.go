// Package version exposes build metadata stamped in through ldflags.
package version

// Set at build time, e.g.
// go build -ldflags="-X 'github.com/pixie-sh/modgen-cli/internal/version.Version=v1.0.0' -X 'github.com/pixie-sh/modgen-cli/internal/version.Date=2026-10-17'" ./cmd/cli/cli_modgen
var (
	// Version is the semantic version (from git tags)
	Version = "dev"

	// Commit is the git commit hash (short form)
	Commit = "unknown"

	// Date is the build date, empty for local builds
	Date = ""
)

// Info returns formatted version information
func Info() string {
	if Date == "" {
		return Version + " (" + Commit + ")"
	}
	return Version + " (" + Commit + ", built " + Date + ")"
}

// Package build exposes build-time metadata injected via ldflags.
package build

import "fmt"

// Version, Commit, and Branch are set at build time by:
//
//	-ldflags "-X github.com/joestump/govuk-admin/internal/build.Version=... ..."
var (
	Version = "dev"
	Commit  = "unknown"
	Branch  = "unknown"
)

// Summary is the one-line description printed by the version command.
func Summary(name string) string {
	return fmt.Sprintf("%s %s (commit %s, branch %s)", name, Version, Commit, Branch)
}

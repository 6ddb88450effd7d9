// Package version reports build identity: a version string injected at
// build time via -ldflags, falling back to VCS metadata from the Go
// module's embedded build info.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time via -ldflags "-X .../version.Version=X". Left
// empty for `go run` and other non-release builds.
var Version string //nolint:gochecknoglobals

// Name is the executable's display name.
const Name = "evsiren"

func buildSetting(info *debug.BuildInfo, key, fallback string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}

	return fallback
}

// String returns a one-line "name version (revision, dirty?)" identity
// string suitable for --version output.
func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Name
	}

	revision := buildSetting(info, "vcs.revision", "unknown")
	if buildSetting(info, "vcs.modified", "false") == "true" {
		revision += "-dirty"
	}

	version := Version
	if version == "" {
		version = "dev"
	}

	return fmt.Sprintf("%s %s (%s)", Name, version, revision)
}

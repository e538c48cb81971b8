package version

import (
	"runtime/debug"
	"strings"
)

// Set via -ldflags at release build time.
var (
	Version = "0.1.0"
	Commit  = "unknown"
)

// Resolve returns the version string shown to users, appending a short
// commit suffix when the binary was not built from a release.
func Resolve() string {
	return resolveVersion(Version, Commit, debug.ReadBuildInfo)
}

func resolveVersion(base, commit string, buildInfo func() (*debug.BuildInfo, bool)) string {
	if base == "" {
		base = "0.0.0"
	}

	suffix := shortRev(commit)
	if suffix == "" {
		suffix = vcsRevision(buildInfo)
	}
	if suffix == "" {
		return base
	}
	return base + "+" + suffix
}

func shortRev(rev string) string {
	rev = strings.TrimSpace(rev)
	if rev == "" || rev == "unknown" {
		return ""
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev
}

func vcsRevision(buildInfo func() (*debug.BuildInfo, bool)) string {
	if buildInfo == nil {
		return ""
	}
	info, ok := buildInfo()
	if !ok || info == nil {
		return ""
	}

	var revision, modified string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		}
	}

	revision = shortRev(revision)
	if revision == "" {
		return ""
	}
	if modified == "true" {
		return revision + "-dirty"
	}
	return revision
}

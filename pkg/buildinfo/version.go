// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/imagestitch/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/imagestitch/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/imagestitch/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries installed with "go install" carry no ldflags; for those the module
// version and VCS stamps embedded by the toolchain are used instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

const (
	defaultVersion = "dev"
	defaultCommit  = "none"
	defaultDate    = "unknown"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = defaultVersion

	// Commit is the git commit SHA.
	Commit = defaultCommit

	// Date is the build timestamp.
	Date = defaultDate
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		fillFrom(info)
	}
}

// fillFrom replaces unset values with what the toolchain embedded.
func fillFrom(info *debug.BuildInfo) {
	if Version == defaultVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == defaultCommit {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == defaultDate {
				Date = s.Value
			}
		}
	}
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// CacheScope returns the prefix that separates cache entries of different
// builds. Development builds also include the commit, since their version
// string does not change between rebuilds.
func CacheScope() string {
	if Version == defaultVersion && Commit != defaultCommit {
		return Version + "-" + shortCommit(Commit) + ":"
	}
	return Version + ":"
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}

// Package version holds build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

const devVersion = "dev"

// Build metadata, overridden at link time:
//
//	-ldflags "-X github.com/Sumatoshi-tech/chunksplit/pkg/version.Version=v1.0.0"
var (
	Version = devVersion
	Commit  = "unknown"
	Date    = "unknown"
)

// InitBinaryVersion fills unset metadata from the module build info, so that
// "go install" builds report something useful.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == devVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "unknown" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}

// String formats the metadata for "chunksplit version".
func String() string {
	return fmt.Sprintf("chunksplit %s (commit: %s, built: %s)", Version, Commit, Date)
}

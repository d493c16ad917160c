// Package misc carries build time identity of the program.
package misc

import (
	"path/filepath"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X acss/misc.version=... -X acss/misc.gitHash=...".
var (
	version = "dev"
	gitHash = ""
	appName = "acss"
)

func GetVersion() string {
	return version
}

// GetGitHash returns commit hash either from linker flags or from VCS
// information embedded by go build.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

func GetAppName() string {
	if appName != "" {
		return appName
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Path != "" {
		return strings.TrimSuffix(filepath.Base(bi.Path), ".exe")
	}
	return "acss"
}

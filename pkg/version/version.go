// Package version reports the build. Version, Branch, BuildUser and
// BuildDate are set through ldflags; the revision comes from the VCS stamp
// embedded by the Go toolchain.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	Version   string
	Branch    string
	BuildUser string
	BuildDate string

	Revision  = revision(readSettings())
	GoVersion = runtime.Version()
	GoOS      = runtime.GOOS
	GoArch    = runtime.GOARCH
)

// GetVersion returns the release version, or the revision for
// development builds.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	return Revision
}

// String describes the build on one line, e.g.
// "v0.4.0 (rev abc1234, linux/amd64, go1.25.5, built 2026-01-02)".
func String() string {
	details := []string{
		"rev " + Revision,
		GoOS + "/" + GoArch,
		GoVersion,
	}
	if Branch != "" {
		details = append(details, "branch "+Branch)
	}
	if BuildDate != "" {
		details = append(details, "built "+BuildDate)
	}
	if BuildUser != "" {
		details = append(details, "by "+BuildUser)
	}

	return fmt.Sprintf("%s (%s)", GetVersion(), strings.Join(details, ", "))
}

func readSettings() []debug.BuildSetting {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	return info.Settings
}

// revision returns the short VCS revision, marked "-dirty" for modified
// trees.
func revision(settings []debug.BuildSetting) string {
	rev := "unknown"
	modified := false

	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value[:min(len(s.Value), 7)]
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}

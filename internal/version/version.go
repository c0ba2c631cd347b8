// Package version reports what build of the dashboard is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Name is the product name used in version output and in the User-Agent
// the backend client sends.
const Name = "luciadash"

// Set via -ldflags at release build time. Source builds fall back to the
// VCS metadata the Go toolchain embeds in the binary.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info is the flattened build description served by /api/version.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get assembles build info, preferring ldflags values and filling gaps
// from the binary's embedded VCS metadata.
func Get() Info {
	info := Info{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	var revision, vcsTime string
	var dirty bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			vcsTime = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if info.Commit == "unknown" && revision != "" {
		if len(revision) > 12 {
			revision = revision[:12]
		}
		if dirty {
			revision += "-dirty"
		}
		info.Commit = revision
	}
	if info.BuildDate == "unknown" && vcsTime != "" {
		info.BuildDate = vcsTime
	}

	return info
}

// UserAgent is the value the backend client identifies itself with.
func UserAgent() string {
	return Name + "/" + Version
}

// Age renders how old the running build is, for the system panel. An
// unparseable or unset build date reads as "unknown".
func Age() string {
	t, err := time.Parse(time.RFC3339, BuildDate)
	if err != nil {
		return "unknown"
	}

	d := time.Since(t)
	steps := []struct {
		unit time.Duration
		name string
	}{
		{365 * 24 * time.Hour, "year"},
		{30 * 24 * time.Hour, "month"},
		{24 * time.Hour, "day"},
		{time.Hour, "hour"},
	}
	for _, s := range steps {
		if d >= s.unit {
			n := int(d / s.unit)
			label := s.name
			if n != 1 {
				label += "s"
			}
			return fmt.Sprintf("%d %s ago", n, label)
		}
	}
	return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
}

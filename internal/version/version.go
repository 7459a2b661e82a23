// Package version reports the diffgen build version.
package version

import (
	"fmt"
	"regexp"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
)

// Version is set at build time with -ldflags "-X .../internal/version.Version=1.2.3".
var Version = "dev"

// SemverRegex validates semantic version strings.
var SemverRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(-([a-zA-Z0-9]+(\.[a-zA-Z0-9]+)*))?(\+([a-zA-Z0-9]+(\.[a-zA-Z0-9]+)*))?$`)

// Semver represents a parsed semantic version.
type Semver struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string
}

// Parse parses a semantic version string. A leading "v", as used by Go module
// versions, is accepted.
func Parse(version string) (*Semver, error) {
	match := SemverRegex.FindStringSubmatch(strings.TrimPrefix(version, "v"))
	if match == nil {
		return nil, fmt.Errorf("invalid semver format: %q", version)
	}

	// Errors ignored: regex guarantees these capture groups contain only digits
	major, _ := strconv.Atoi(match[1])
	minor, _ := strconv.Atoi(match[2])
	patch, _ := strconv.Atoi(match[3])

	return &Semver{
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		Prerelease: match[5],
		Build:      match[8],
	}, nil
}

// String returns the semver string representation.
func (s *Semver) String() string {
	result := fmt.Sprintf("%d.%d.%d", s.Major, s.Minor, s.Patch)
	if s.Prerelease != "" {
		result += "-" + s.Prerelease
	}
	if s.Build != "" {
		result += "+" + s.Build
	}
	return result
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Current returns the running version: the linker-provided Version when set,
// else the main module version recorded by "go install", else "dev".
func Current() string {
	if v, err := Parse(Version); err == nil {
		return v.String()
	}
	if info, ok := readBuildInfo(); ok {
		if v, err := Parse(info.Main.Version); err == nil {
			return v.String()
		}
	}
	return "dev"
}

// Describe returns the one-line version banner.
func Describe() string {
	return fmt.Sprintf("diffgen %s (%s, %s/%s)", Current(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

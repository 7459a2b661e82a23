package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input      string
		major      int
		minor      int
		patch      int
		prerelease string
		build      string
	}{
		{"1.2.3", 1, 2, 3, "", ""},
		{"v1.2.3", 1, 2, 3, "", ""},
		{"0.0.0", 0, 0, 0, "", ""},
		{"1.0.0-alpha", 1, 0, 0, "alpha", ""},
		{"1.0.0-alpha.1", 1, 0, 0, "alpha.1", ""},
		{"1.0.0+build", 1, 0, 0, "", "build"},
		{"1.0.0-rc.1+build.123", 1, 0, 0, "rc.1", "build.123"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if v.Major != tt.major || v.Minor != tt.minor || v.Patch != tt.patch {
				t.Errorf("Parse() = %d.%d.%d, want %d.%d.%d", v.Major, v.Minor, v.Patch, tt.major, tt.minor, tt.patch)
			}
			if v.Prerelease != tt.prerelease {
				t.Errorf("Prerelease = %q, want %q", v.Prerelease, tt.prerelease)
			}
			if v.Build != tt.build {
				t.Errorf("Build = %q, want %q", v.Build, tt.build)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "dev", "(devel)", "1.2", "1.2.3.4", "vv1.2.3", "1.2.3-"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
}

func TestSemver_String(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"1.2.3", "1.0.0-alpha.1", "1.0.0+build", "1.0.0-rc.1+build.123"} {
		v, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", in, err)
		}
		if got := v.String(); got != in {
			t.Errorf("String() = %q, want %q", got, in)
		}
	}
}

// The tests below swap package state and must not run in parallel.

func withBuild(t *testing.T, linked, module string) {
	t.Helper()
	oldVersion, oldRead := Version, readBuildInfo
	t.Cleanup(func() { Version, readBuildInfo = oldVersion, oldRead })
	Version = linked
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: module}}, true
	}
}

func TestCurrent(t *testing.T) {
	tests := []struct {
		name   string
		linked string
		module string
		want   string
	}{
		{"linker version wins", "1.4.0", "v1.3.0", "1.4.0"},
		{"linker version with v", "v1.4.0", "", "1.4.0"},
		{"module version", "dev", "v1.3.0", "1.3.0"},
		{"local build", "dev", "(devel)", "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuild(t, tt.linked, tt.module)
			if got := Current(); got != tt.want {
				t.Errorf("Current() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	withBuild(t, "2.0.0", "")
	if got := Describe(); !strings.HasPrefix(got, "diffgen 2.0.0 (go") {
		t.Errorf("Describe() = %q, want prefix %q", got, "diffgen 2.0.0 (go")
	}
}

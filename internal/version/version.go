// Package version provides the build version of the tools
package version

import (
	"fmt"
	"runtime/debug"
)

// Build information, set by the linker:
// -ldflags "-X github.com/effective-security/xjwt/internal/version.Version=v0.1.2"
var (
	Version = ""
	Commit  = ""
)

// Info describes the build
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit,omitempty" yaml:"commit,omitempty"`
}

// String returns the version
func (v Info) String() string {
	if v.Commit != "" {
		return fmt.Sprintf("%s (%s)", v.Version, v.Commit)
	}
	return v.Version
}

// Current returns the build version
func Current() Info {
	v := Info{
		Version: Version,
		Commit:  Commit,
	}
	if v.Version == "" {
		v.Version = "v0.0.0-dev"
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v.Version = bi.Main.Version
		}
	}
	return v
}

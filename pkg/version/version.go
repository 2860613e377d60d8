// Package version exposes the build version of mathtools.
package version

// version is overridden at build time with
// -ldflags "-X github.com/mcpjungle/mathtools/pkg/version.version=v1.2.3"
var version = "dev"

// GetVersion returns the version of the running binary.
func GetVersion() string {
	return version
}

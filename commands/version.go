package commands

import (
	"fmt"
	"io"
	"runtime"
)

// VERSION is set at build time with -ldflags "-X github.com/uhppoted/db-sync-sheets/commands.VERSION=..."
var VERSION = "v0.1.0"

// VersionCmd is an initialized Version command for the main() command list
var VersionCmd = Version{}

// Version is a CLI command implementation that displays the version information.
type Version struct {
}

// Execute prints the current version
func (c *Version) Execute(w io.Writer) error {
	fmt.Fprintf(w, "%s %s\n", APP, VERSION)
	fmt.Fprintf(w, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(w, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	return nil
}

// Returns 'version'
func (c *Version) Name() string {
	return "version"
}

// Description returns the 'version' command short form help
func (c *Version) Description() string {
	return "Displays the current version"
}

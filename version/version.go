// Package version holds build information injected at link time.
package version

import "runtime"

// Set via -ldflags at build time, e.g.:
//
//	-X github.com/jackzampolin/docshard/version.GitRelease=v0.2.0
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
)

// GoInfo reports the Go toolchain used for the build.
var GoInfo = runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH

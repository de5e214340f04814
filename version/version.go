// Package version holds build metadata injected via -ldflags.
package version

import "runtime"

var (
	// GitRelease is the release tag, set at build time.
	GitRelease = "dev"

	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"

	// GitCommitDate is the date of that commit.
	GitCommitDate = "unknown"

	// GoInfo describes the Go toolchain used for the build.
	GoInfo = runtime.Version()
)

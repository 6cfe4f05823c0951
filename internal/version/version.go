// Package version holds build metadata, overridden with -ldflags -X.
package version

var (
	Version   = "0.2.0"
	Commit    = "none"
	BuildDate = "unknown"
)

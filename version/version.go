package version

import "fmt"

// values are set via ldflags on release builds
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	FullVersion = fmt.Sprintf("%s (%s) %s", Version, GitCommit, BuildDate)
)

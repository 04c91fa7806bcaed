package version

import (
	"fmt"
	"runtime"
)

// Populated by the build process via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Info returns the full version line printed by the version command.
func Info() string {
	return fmt.Sprintf("BranchTrace v%s (built: %s, %s/%s)",
		Version, BuildTime, runtime.GOOS, runtime.GOARCH)
}

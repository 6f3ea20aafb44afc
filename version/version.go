// Package version carries the build identity stamped in via ldflags:
//
//	go build -ldflags "-X github.com/nanhai/arena/version.Version=v1.2.0 \
//	  -X github.com/nanhai/arena/version.CommitHash=$(git rev-parse HEAD) \
//	  -X github.com/nanhai/arena/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release tag, or "dev" for untagged builds
	Version = "dev"

	// CommitHash identifies the source revision
	CommitHash = "dev"

	// BuildTime is the UTC build timestamp
	BuildTime = "unknown"
)

// Info bundles the stamped build identity with runtime facts
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get assembles the Info for the running binary
func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders a one-line description suitable for the CLI
func (i Info) String() string {
	return fmt.Sprintf("arena %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
}

// Short abbreviates the commit hash to the usual seven characters
func (i Info) Short() string {
	if len(i.CommitHash) > 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

package version

import (
	"fmt"
	"runtime"
)

// Name is the program name shown in the banner and version output
const Name = "updategen"

// Website is printed in the banner
const Website = "https://github.com/huanfeng/updategen"

var (
	// Version is the version of the application, set by build flags
	Version = "dev"
	// Commit is the git commit hash, set by build flags
	Commit = "unknown"
	// BuildDate is the build date, set by build flags
	BuildDate = "unknown"
)

// BuildInfo is the structured form of the version output
type BuildInfo struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build information of the running binary
func Get() BuildInfo {
	return BuildInfo{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Info returns version information
func Info() string {
	b := Get()
	return fmt.Sprintf("%s %s\nCommit: %s\nBuilt: %s\nGo: %s\nOS/Arch: %s",
		b.Name, b.Version, b.Commit, b.BuildDate, b.GoVersion, b.Platform)
}

// Short returns short version string
func Short() string {
	return Version
}

package duallang

// Version information for duallang.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ali-185/DualLang.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "duallang"

	// Description is a short description of the application.
	Description = "Dual-language HTML and EPUB converter for language learners"

	// Version is the semantic version of the application.
	Version = "0.2.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ali-185/DualLang"

	// License is the software license.
	License = "MIT"
)

// BuildInfo contains build-time information, set via ldflags.
var (
	GitCommit = "unknown"
	GitBranch = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns the version string with optional build info.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns a user agent string for HTTP requests.
func UserAgent() string {
	return Name + "/" + Version
}

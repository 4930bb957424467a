// Package version identifies the running build and compares release versions.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// AppName is the producer name stamped into every backup.
const AppName = "ledgerbox"

// Build information, set via ldflags.
//
//nolint:gochecknoglobals // set at link time
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Info describes the running build.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the build information of the running binary.
func Current() Info {
	return Info{
		Name:      AppName,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// AppID returns "ledgerbox/<version>". It tags outgoing API requests.
func AppID() string {
	return AppName + "/" + Version
}

// CompareVersions compares two version strings
// Returns:
//   - 1 if v1 > v2
//   - 0 if v1 == v2
//   - -1 if v1 < v2
func CompareVersions(v1, v2 string) int {
	v1 = strings.TrimPrefix(v1, "v")
	v2 = strings.TrimPrefix(v2, "v")

	isV1Dev := IsDevelopment(v1)
	isV2Dev := IsDevelopment(v2)

	switch {
	case isV1Dev && isV2Dev:
		return 0
	case isV1Dev:
		return -1 // dev builds sort before any release
	case isV2Dev:
		return 1
	}

	parts1 := parseVersion(v1)
	parts2 := parseVersion(v2)
	for i := 0; i < 3; i++ {
		a, b := partAt(parts1, i), partAt(parts2, i)
		if a > b {
			return 1
		}
		if a < b {
			return -1
		}
	}
	return 0
}

// IsDevelopment reports whether v is a dev build, an empty version or a
// commit hash rather than a release.
func IsDevelopment(v string) bool {
	v = strings.TrimPrefix(v, "v")
	return v == "dev" || v == "" || isCommitHash(v)
}

// IsNewerVersion checks if candidate is newer than current.
func IsNewerVersion(current, candidate string) bool {
	return CompareVersions(candidate, current) > 0
}

// NormalizeVersion strips whitespace, leading 'v' and any pre-release or
// build metadata suffix.
func NormalizeVersion(version string) string {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}
	for {
		trimmed := strings.TrimLeft(strings.TrimSpace(version), "v")
		if trimmed == version {
			return version
		}
		version = trimmed
	}
}

func partAt(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// parseVersion parses a version string into major, minor, patch integers
func parseVersion(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	parts := strings.Split(version, ".")
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		var num int
		if _, err := fmt.Sscanf(part, "%d", &num); err == nil {
			result = append(result, num)
		}
	}
	return result
}

// isCommitHash reports whether s looks like a short or full git SHA with at
// least one hex letter.
func isCommitHash(s string) bool {
	s = strings.TrimSuffix(s, "-dirty")
	if len(s) < 7 || len(s) > 40 {
		return false
	}

	hasLetter := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F'):
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}

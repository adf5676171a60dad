// Package version compares release version strings.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Normalize gives the version a "v" prefix so it can be fed to the semver
// package. "1.2.3" becomes "v1.2.3"; an already prefixed string is returned
// unchanged.
func Normalize(version string) string {
	if version == "" {
		return ""
	}
	version = strings.TrimSpace(version)
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// IsNewer reports whether candidate is a strictly newer release than current.
// Non-semver version strings compare false; release branches are free to use
// opaque version labels and then the latest flag alone decides.
func IsNewer(current, candidate string) bool {
	cur := Normalize(current)
	cand := Normalize(candidate)
	if !semver.IsValid(cur) || !semver.IsValid(cand) {
		return false
	}
	return semver.Compare(cand, cur) > 0
}

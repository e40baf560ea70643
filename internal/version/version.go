// Package version checks release version strings before anything is derived from them.
package version

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/mod/semver"

	"freshrss-update/internal/apperr"
)

// pattern is deliberately not anchored at the end: "1.2.3-beta" and "1.2.3.4" pass.
var pattern = regexp.MustCompile(`^\d+\.\d+\.\d+`)

// Validate succeeds when v begins with three dot-separated non-negative integers.
func Validate(v string) error {
	if !pattern.MatchString(v) {
		return goerr.Wrap(apperr.ErrInvalidVersion,
			"the version number does not match the pattern 'major.minor.patch'",
			goerr.V("version", v))
	}
	return nil
}

// Canonical reports whether v is exactly a semantic version without anything
// trailing the patch number that Validate would silently tolerate.
func Canonical(v string) bool {
	sv := "v" + v
	if !semver.IsValid(sv) {
		return false
	}
	return semver.Prerelease(sv) == "" && semver.Build(sv) == "" && semver.Canonical(sv) == sv
}

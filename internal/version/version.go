// Package version parses release version strings and derives the git branch
// each bwc subproject builds from.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, standard library
//   - MUST NOT import: any other internal packages
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrz1836/bwckit/internal/domain"
	"github.com/mrz1836/bwckit/internal/errors"
)

// Version is a parsed release version. The qualifier, when present, is the
// part after the first dash (usually "SNAPSHOT").
type Version struct {
	Major     int
	Minor     int
	Patch     int
	Qualifier string

	// hasPatch distinguishes "6.2" from "6.2.0" so String() round-trips.
	hasPatch bool
}

// Parse parses a version string like "5.6.17" or "5.6.17-SNAPSHOT".
// Two-component strings ("6.2") are accepted with patch zero omitted from
// String() output.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, errors.Wrap(errors.ErrInvalidVersion, "empty version string")
	}

	base := s
	var qualifier string
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		base = s[:idx]
		qualifier = s[idx+1:]
		if qualifier == "" {
			return Version{}, errors.Wrapf(errors.ErrInvalidVersion, "trailing dash in %q", s)
		}
	}

	parts := strings.Split(base, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, errors.Wrapf(errors.ErrInvalidVersion, "expected major.minor[.patch], got %q", s)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, errors.Wrapf(errors.ErrInvalidVersion, "component %q in %q", p, s)
		}
		nums[i] = n
	}

	v := Version{Major: nums[0], Minor: nums[1], Qualifier: qualifier}
	if len(nums) == 3 {
		v.Patch = nums[2]
		v.hasPatch = true
	}
	return v, nil
}

// MustParse parses a version string and panics on failure.
// Intended for tests and compile-time-known constants only.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version the way artifact file names embed it,
// qualifier included: "5.6.17-SNAPSHOT".
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d", v.Major, v.Minor)
	if v.hasPatch {
		fmt.Fprintf(&b, ".%d", v.Patch)
	}
	if v.Qualifier != "" {
		b.WriteByte('-')
		b.WriteString(v.Qualifier)
	}
	return b.String()
}

// IsSnapshot reports whether the version carries the SNAPSHOT qualifier.
func (v Version) IsSnapshot() bool {
	return v.Qualifier == "SNAPSHOT"
}

// ReleaseBranch returns the "{major}.{minor}" branch for this version.
func (v Version) ReleaseBranch() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// RollingBranch returns the "{major}.x" branch that tracks the unreleased
// next minor of this version's major line.
func (v Version) RollingBranch() string {
	return fmt.Sprintf("%d.x", v.Major)
}

// BranchFor returns the git branch a subproject builds version v from:
// the rolling sentinel subproject uses "{major}.x", every other subproject
// uses "{major}.{minor}".
func BranchFor(sub domain.Subproject, v Version) string {
	if sub.IsRolling() {
		return v.RollingBranch()
	}
	return v.ReleaseBranch()
}

// legacyJavaBranches are the release branches whose builds predate the
// project's JDK 9 migration and must run under a JDK 8 JAVA_HOME when the
// host runtime is newer.
var legacyJavaBranches = map[string]struct{}{
	"5.6": {},
	"6.0": {},
	"6.1": {},
}

// NeedsLegacyJava reports whether builds of the given branch require a
// legacy JAVA_HOME override. The set is closed: branches from 6.2 onward
// build on modern JDKs unconditionally.
func NeedsLegacyJava(branch string) bool {
	_, ok := legacyJavaBranches[branch]
	return ok
}

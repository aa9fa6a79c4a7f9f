package domain

import (
	"strings"

	"github.com/mrz1836/bwckit/internal/constants"
)

// Subproject identifies one backward-compatibility build target. The name is
// either a release line like "5.6" or the rolling sentinel
// "next-minor-snapshot"; the colon-form path namespaces metadata keys and
// mirrors how the delegated build addresses the same target.
type Subproject struct {
	// Name is the short subproject name, unique within a project.
	Name string `json:"name"`
}

// NewSubproject returns a Subproject for the given name.
func NewSubproject(name string) Subproject {
	return Subproject{Name: name}
}

// Path returns the colon-separated project path for this subproject,
// e.g. ":distribution:bwc:5.6". Metadata keys embed this path verbatim, so
// its format must stay stable across releases.
func (s Subproject) Path() string {
	return constants.SubprojectPathPrefix + s.Name
}

// IsRolling reports whether this is the sentinel subproject that tracks the
// unreleased next minor. Rolling subprojects build from the "{major}.x"
// branch rather than a "{major}.{minor}" release branch.
func (s Subproject) IsRolling() bool {
	return s.Name == constants.RollingSubprojectName
}

// MetadataKey returns the key under which the resolved commit for this
// subproject is persisted in the metadata store. The key embeds the colon
// path, e.g. "bwc_refspec_:distribution:bwc:5.6".
func (s Subproject) MetadataKey() string {
	return "bwc_refspec_" + s.Path()
}

// String returns the subproject name.
// This implements fmt.Stringer for convenient logging and debugging.
func (s Subproject) String() string {
	return s.Name
}

// ParseSubproject extracts the subproject name from either a bare name or a
// full colon path. "5.6" and ":distribution:bwc:5.6" both yield "5.6".
func ParseSubproject(arg string) Subproject {
	if name, ok := strings.CutPrefix(arg, constants.SubprojectPathPrefix); ok {
		return Subproject{Name: name}
	}
	return Subproject{Name: arg}
}

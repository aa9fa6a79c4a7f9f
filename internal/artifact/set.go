// Package artifact defines the distribution files a bwc build is expected to
// produce and the registry that records produced files for downstream
// consumers (compatibility test suites, release tooling).
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/bwckit/internal/constants"
	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

// distributionsSubdir is the path, relative to a format's distribution
// project inside the checkout, where the delegated build places its output.
const distributionsSubdir = "build/distributions"

// Set is the fixed group of distribution files one subproject build must
// produce: a deb, an rpm, and a zip, named after the version being built.
// Existence is the only property Verify checks; there is no checksum or
// content validation.
type Set struct {
	checkoutDir string
	version     string
}

// NewSet creates a Set for the given checkout directory and rendered version
// string (e.g. "5.6.17-SNAPSHOT").
func NewSet(checkoutDir, version string) (Set, error) {
	if checkoutDir == "" {
		return Set{}, fmt.Errorf("checkout directory %w", bwcerrors.ErrEmptyValue)
	}
	if version == "" {
		return Set{}, fmt.Errorf("version %w", bwcerrors.ErrEmptyValue)
	}
	return Set{checkoutDir: checkoutDir, version: version}, nil
}

// Path returns the expected location of the artifact for one packaging
// format. The delegated build writes each format under its own
// distribution subproject, so the format appears twice: once as a directory
// and once as the file extension.
func (s Set) Path(format constants.PackageFormat) string {
	filename := fmt.Sprintf("elasticsearch-%s.%s", s.version, format)
	return filepath.Join(s.checkoutDir, "distribution", string(format), distributionsSubdir, filename)
}

// Paths returns all expected artifact paths in build order.
func (s Set) Paths() []string {
	formats := constants.AllFormats()
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		paths = append(paths, s.Path(format))
	}
	return paths
}

// Present reports per-format existence of the set's files.
func (s Set) Present() map[constants.PackageFormat]bool {
	present := make(map[constants.PackageFormat]bool, len(constants.AllFormats()))
	for _, format := range constants.AllFormats() {
		_, err := os.Stat(s.Path(format))
		present[format] = err == nil
	}
	return present
}

// Missing returns the expected paths that do not currently exist on disk,
// in build order. An empty result means the set is complete.
func (s Set) Missing() []string {
	var missing []string
	for _, path := range s.Paths() {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	return missing
}

// Verify checks that every artifact in the set exists. On failure the error
// names exactly the missing files so the operator does not have to diff the
// output directory by hand.
func (s Set) Verify() error {
	missing := s.Missing()
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", bwcerrors.ErrArtifactMissing, strings.Join(missing, ", "))
}

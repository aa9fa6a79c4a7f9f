package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/bwckit/internal/errors"
)

// versionsFile is the YAML shape of a bwcversions.yaml manifest:
//
//	versions:
//	  "5.6": 5.6.17-SNAPSHOT
//	  "6.0": 6.0.2-SNAPSHOT
//	  next-minor-snapshot: 6.2.0-SNAPSHOT
type versionsFile struct {
	Versions map[string]string `yaml:"versions"`
}

// LoadVersionsFile reads a bwcversions.yaml manifest. A missing file
// returns (nil, nil); the manifest is optional when the versions section
// of the config carries the map instead.
func LoadVersionsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from the resolved project root
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read versions file: %s", path)
	}

	var file versionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(errors.ErrConfigInvalidVersions,
			"failed to parse %s: %v", path, err)
	}

	if err := validateVersions(file.Versions); err != nil {
		return nil, err
	}
	return file.Versions, nil
}

// MergeVersionsFile overlays a project's bwcversions.yaml onto the
// config's version map. Manifest entries win key by key: the manifest
// lives next to the code being released, so it is the fresher source.
func MergeVersionsFile(cfg *Config, projectRoot string) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	fromFile, err := LoadVersionsFile(VersionsFilePath(projectRoot))
	if err != nil {
		return err
	}

	cfg.Versions = mergeStringMaps(cfg.Versions, fromFile)
	return nil
}

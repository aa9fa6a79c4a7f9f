package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/errors"
)

// GlobalConfigDir returns the path to the global bwckit configuration
// directory, typically ~/.bwc.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.BwcHome), nil
}

// ProjectConfigDir returns the relative path to the project configuration
// directory, always .bwc relative to the project root.
func ProjectConfigDir() string {
	return constants.BwcHome
}

// GlobalConfigPath returns the full path to the global configuration file,
// typically ~/.bwc/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the relative path to the project configuration
// file, always .bwc/config.yaml relative to the project root.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.ProjectConfigName)
}

// VersionsFilePath returns the path of the bwcversions.yaml manifest for a
// project root.
func VersionsFilePath(projectRoot string) string {
	return filepath.Join(projectRoot, constants.VersionsFileName)
}

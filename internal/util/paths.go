// Package util holds small filesystem helpers shared across the module.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a user-supplied path: a leading tilde becomes the
// user's home directory, $VAR and ${VAR} environment references are
// substituted, and the result is cleaned. An empty path stays empty.
//
// Examples:
//   - "~/flavors" -> "/home/user/flavors"
//   - "${DIGEST_HOME}/flavors" -> "/opt/digest/flavors"
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		if path == "~" {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[2:])
	}

	path = os.ExpandEnv(path)

	return filepath.Clean(path), nil
}

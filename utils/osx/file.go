package osx

import (
	"os"
	"path/filepath"
	"strings"
)

func Exists(paths ...string) bool {
	if len(paths) == 0 {
		return false
	}

	for _, p := range paths {
		if !exists(p) {
			return false
		}
	}

	return true
}

func exists(path string) bool {
	if _, err := os.Lstat(path); err != nil {
		return !os.IsNotExist(err)
	}

	return true
}

// ExpandPath resolves a leading ~ to the home directory of the current user
// and returns the absolute form of the result.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		path = filepath.Join(home, path[1:])
	}

	return filepath.Abs(path)
}

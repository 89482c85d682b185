package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// FindProjectRoot traverses up from the working directory to find the
// directory containing .envault. Returns the project root if found,
// empty string otherwise. Stops searching above the home directory.
func FindProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return FindProjectRootFrom(currentDir)
}

// FindProjectRootFrom traverses up from an explicit starting directory.
func FindProjectRootFrom(startDir string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	currentDir := startDir
	for {
		// Stop searching at one level above home directory
		if currentDir == path.Join(homeDir, "..") {
			return "", nil
		}

		markerDir := filepath.Join(currentDir, ".envault")
		fileInfo, err := os.Stat(markerDir)
		if err == nil {
			if fileInfo.IsDir() {
				return currentDir, nil
			}
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("error checking for .envault directory at %s: %w", currentDir, err)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}

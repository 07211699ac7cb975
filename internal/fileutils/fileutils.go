// Package fileutils provides common file operations used by the commands.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// ReadFile reads the entire contents of a file and returns it as a byte slice
func ReadFile(filePath string) ([]byte, error) {
	if !FileExists(filePath) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// CreateFile creates or truncates a file for writing, creating parent
// directories as needed
func CreateFile(filePath string) (*os.File, error) {
	if err := EnsureDirectoryExists(filepath.Dir(filePath)); err != nil {
		return nil, err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return file, nil
}

// CollectFiles expands every directory in paths into the files below it
// that accept approves, sorted by path. Plain file paths are kept as
// given, in order, whether or not accept approves them.
func CollectFiles(paths []string, accept func(name string) bool) ([]string, error) {
	var files []string
	for _, p := range paths {
		if !DirectoryExists(p) {
			if !FileExists(p) {
				return nil, fmt.Errorf("file does not exist: %s", p)
			}
			files = append(files, p)
			continue
		}

		var found []string
		err := filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && accept(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// Package filesys provides the small set of file system utilities the
// engine needs to prepare a data file's location before mapping it.
package filesys

import (
	"errors"
	"os"
)

// ErrIsNotDir is returned when a path that was expected to be a directory
// turns out to be a regular file.
var ErrIsNotDir = errors.New("path isn't a directory")

// CreateDir creates a directory at dirPath with the given permissions.
//
// If the directory already exists:
//   - If force is true, it proceeds without error.
//   - If force is false, it returns the stat error.
//
// It also returns an error if the existing path is a file, not a directory.
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}
	if !force && !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dirPath, permission)
}

// Exists reports whether a file or directory exists at path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

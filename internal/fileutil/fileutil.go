// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyFilename   = errors.New("filename cannot be empty")
	ErrUnsafeFilename  = errors.New("filename contains path separator or null byte")
	ErrReservedName    = errors.New("filename is a reserved path element")
	ErrAtomicWriteFile = errors.New("failed to write file")
)

// ValidateBaseName checks that name is a plain file name that cannot escape
// the directory it is joined to.
func ValidateBaseName(name string) error {
	if name == "" {
		return ErrEmptyFilename
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrUnsafeFilename, name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return nil
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory and renames it into place. Readers never observe a partial file,
// and the temporary file is removed on failure.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrAtomicWriteFile, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("%w: writing temp file: %v", ErrAtomicWriteFile, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: syncing temp file: %v", ErrAtomicWriteFile, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %v", ErrAtomicWriteFile, err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("%w: setting permissions: %v", ErrAtomicWriteFile, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: renaming into place: %v", ErrAtomicWriteFile, err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "facility-agreement" -> false (name)
//   - "./custom.md" -> true (relative path)
//   - "/etc/dealdoc.yaml" -> true (absolute)
//   - "C:\dealdoc.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

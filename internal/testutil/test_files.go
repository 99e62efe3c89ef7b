// Package testutil provides file fixtures shared by package tests.
package testutil

import (
	"crypto/rand"
	"os"
	"path/filepath"
)

// CreateTestFile creates a file of the given size under dir, filled with
// either zeros or random data. name may contain slashes; parent
// directories are created.
func CreateTestFile(dir, name string, size int64, random bool) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if random {
		// Write in chunks for large files
		chunkSize := int64(64 * 1024)
		chunk := make([]byte, chunkSize)
		remaining := size

		for remaining > 0 {
			if remaining < chunkSize {
				chunk = make([]byte, remaining)
			}
			_, _ = rand.Read(chunk)
			n, err := f.Write(chunk)
			if err != nil {
				return "", err
			}
			remaining -= int64(n)
		}
	} else {
		// Pre-allocate with zeros (sparse file)
		if err := f.Truncate(size); err != nil {
			return "", err
		}
	}

	return path, nil
}

// PatternBytes returns n bytes of a repeating, seed-dependent pattern.
// Unlike random data it is reproducible across runs.
func PatternBytes(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*31) ^ seed
	}
	return b
}

// WriteTree creates files below root from a map of slash-separated
// relative paths to contents.
func WriteTree(root string, files map[string][]byte) error {
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// VerifyFileSize checks if a file has the expected size.
func VerifyFileSize(path string, expectedSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() != expectedSize {
		return &FileSizeMismatchError{
			Path:     path,
			Expected: expectedSize,
			Actual:   info.Size(),
		}
	}
	return nil
}

// FileSizeMismatchError indicates a file size doesn't match expected.
type FileSizeMismatchError struct {
	Path     string
	Expected int64
	Actual   int64
}

func (e *FileSizeMismatchError) Error() string {
	return "file size mismatch: " + e.Path
}

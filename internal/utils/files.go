package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir ensures the provided directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// CreateAtomic opens a temp file next to path. Commit renames it into place;
// Abort removes it. Exactly one of them should be called.
func CreateAtomic(path string) (*AtomicFile, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(path + ".tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &AtomicFile{File: f, path: path}, nil
}

// AtomicFile is a temp file pending rename.
type AtomicFile struct {
	*os.File
	path string
}

// Commit closes the temp file and renames it to its final path.
func (a *AtomicFile) Commit() error {
	if err := a.File.Close(); err != nil {
		_ = os.Remove(a.File.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(a.File.Name(), a.path); err != nil {
		_ = os.Remove(a.File.Name())
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// Abort discards the temp file.
func (a *AtomicFile) Abort() {
	_ = a.File.Close()
	_ = os.Remove(a.File.Name())
}

// PrettyJSON marshals a value as indented JSON.
func PrettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

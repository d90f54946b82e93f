// Package store persists templates, runtime state, and run artifacts as
// JSON documents under a single data directory.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const tempDirPrefix = ".plashboard-tmp-"

// WriteJSON atomically replaces path with the JSON encoding of value.
// The document is written into a sibling temp directory and renamed into
// place, so readers observe either the old file or the complete new one.
func WriteJSON(path string, value any) error {
	data, err := EncodeJSON(value)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Refuse to follow a symlinked target: the rename would otherwise
	// land outside the data directory.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing to replace symlink %s", path)
	}

	tmpDir, err := os.MkdirTemp(dir, tempDirPrefix)
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpFile := filepath.Join(tmpDir, filepath.Base(path))
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpFile, err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ReadJSON decodes the JSON document at path into out.
func ReadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// EncodeJSON renders a value in the on-disk format: 2-space indent, UTF-8,
// trailing newline.
func EncodeJSON(value any) ([]byte, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
)

// WriteIfChanged writes data to path only when the on-disk content differs,
// creating parent directories as needed. Keeps result artifacts stable for
// tools that watch modification times.
func WriteIfChanged(path string, data []byte) error {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

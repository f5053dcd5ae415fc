package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath replaces a leading ~/ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// PrepareFile expands path and creates its parent directory. It returns the expanded path.
func PrepareFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty output path")
	}

	expanded, err := ExpandPath(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	return expanded, nil
}

// WriteFile writes data to path, replacing any existing file.
// The data is written to a temporary file first so readers never see a partial report.
func WriteFile(path string, data []byte) error {
	expanded, err := PrepareFile(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(expanded), ".tmp-"+filepath.Base(expanded)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        // nolint:errcheck
		os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("writing %s: %w", expanded, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("closing %s: %w", expanded, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("setting permissions on %s: %w", expanded, err)
	}

	if err := os.Rename(tmpName, expanded); err != nil {
		os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("renaming into %s: %w", expanded, err)
	}

	return nil
}

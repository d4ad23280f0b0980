package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~/ to the user's home directory
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

// WriteExport writes content to path, replacing any existing file. Missing
// parent directories are created. It returns the expanded path written to.
func WriteExport(path, content string) (written string, err error) {
	path, err = ExpandPath(path)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing export file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(content); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}

	return path, nil
}

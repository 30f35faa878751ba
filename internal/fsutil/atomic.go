// Package fsutil holds file helpers shared by the writers of this module.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrDestinationExists is returned when attempting to write to an existing file
	ErrDestinationExists = errors.New("destination file already exists")
)

// WriteAtomic writes the content produced by fill to path.
//
// It will:
// - Never overwrite an existing file (unless overwrite is true)
// - Write to a temporary file in the destination directory
// - Sync and move it into place, removing the temporary file on any failure
//
// Without overwrite the temporary file is hard linked to path, so a file that
// appears at path while fill runs is left alone and ErrDestinationExists is
// returned.
func WriteAtomic(path string, overwrite bool, fill func(w io.Writer) error) error {
	if !overwrite {
		if _, err := os.Lstat(path); err == nil {
			return ErrDestinationExists
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat destination: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := fill(tmp); err != nil {
		return err
	}

	// Ensure data is written to disk
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if overwrite {
		if err := os.Rename(tmpPath, path); err != nil {
			return fmt.Errorf("rename: %w", err)
		}
		committed = true
		return nil
	}

	if err := os.Link(tmpPath, path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrDestinationExists
		}
		return fmt.Errorf("link: %w", err)
	}
	committed = true
	_ = os.Remove(tmpPath)
	return nil
}

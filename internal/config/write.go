package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/quidome/photomap-go/internal/fsutil"
	"gopkg.in/yaml.v3"
)

const fileHeader = `# photomap configuration.
# Every key can be overridden with a PHOTOMAP_ environment variable, for
# example PHOTOMAP_PHOTO_DIR or PHOTOMAP_FILTERS_ONLY_MY_DEVICES.
`

// DefaultPath is where config init writes when no path is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "photomap", FileName+".yaml"), nil
}

// Write stores s as YAML at path, creating the parent directory.
func Write(path string, s Settings, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return fsutil.WriteAtomic(path, overwrite, func(w io.Writer) error {
		if _, err := io.WriteString(w, fileHeader); err != nil {
			return err
		}
		return Encode(w, s)
	})
}

// Encode writes s to w as YAML.
func Encode(w io.Writer, s Settings) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

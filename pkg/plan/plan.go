package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Default file names placed inside the photo directory.
const (
	DefaultRawFilename   = "ImageMetadata_raw.csv"
	DefaultFinalFilename = "ImageMetadata_final.csv"
	DefaultPlotFilename  = "sample_plot_pictures.jpg"
)

// ErrNoPhotoDir is returned when no default photo directory can be derived.
var ErrNoPhotoDir = errors.New("cannot determine default photo directory")

// DirResolver resolves the default photo directory of the current user.
type DirResolver interface {
	PhotoDir() (string, error)
}

// OSResolver derives the photo directory from the platform conventions.
//
// The lookup order is:
//  1. $XDG_PICTURES_DIR (not on darwin or windows)
//  2. <home>/Pictures
type OSResolver struct {
	GOOS   string
	Home   func() (string, error)
	Getenv func(string) string
}

// DefaultResolver returns an OSResolver for the running process.
func DefaultResolver() OSResolver {
	return OSResolver{
		GOOS:   runtime.GOOS,
		Home:   os.UserHomeDir,
		Getenv: os.Getenv,
	}
}

// PhotoDir implements DirResolver.
func (r OSResolver) PhotoDir() (string, error) {
	switch r.GOOS {
	case "darwin", "windows":
	default:
		if r.Getenv != nil {
			if dir := strings.TrimSpace(r.Getenv("XDG_PICTURES_DIR")); dir != "" {
				return filepath.Clean(dir), nil
			}
		}
	}

	if r.Home == nil {
		return "", ErrNoPhotoDir
	}
	home, err := r.Home()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoPhotoDir, err)
	}
	if home == "" {
		return "", ErrNoPhotoDir
	}
	return filepath.Join(home, "Pictures"), nil
}

// Paths are the files a run reads and writes.
type Paths struct {
	PhotoDir string
	Raw      string
	Final    string
	Plot     string
}

// Layout fills every empty field of p with its default inside p.PhotoDir.
func Layout(p Paths) Paths {
	if p.Raw == "" {
		p.Raw = filepath.Join(p.PhotoDir, DefaultRawFilename)
	}
	if p.Final == "" {
		p.Final = filepath.Join(p.PhotoDir, DefaultFinalFilename)
	}
	if p.Plot == "" {
		p.Plot = filepath.Join(p.PhotoDir, DefaultPlotFilename)
	}
	return p
}

// Exists reports whether anything is present at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// NextFree returns path, or the first variant with a _N suffix before the
// extension for which exists reports false. N starts at 1.
func NextFree(path string, exists func(string) bool) string {
	if !exists(path) {
		return path
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)

	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", nameWithoutExt, i, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

package scan

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

type Options struct {
	// MaxDepth limits recursion below root. -1 means unlimited, 0 means root only.
	MaxDepth int

	// Extensions selects the files considered photos. Case-insensitive; the
	// leading dot is optional.
	Extensions []string

	// IncludeHidden also descends into directories and reads files whose name
	// starts with a dot.
	IncludeHidden bool
}

// DefaultExtensions are the image formats that commonly carry EXIF tags.
var DefaultExtensions = []string{
	".jpg", ".jpeg", ".tif", ".tiff", ".heic", ".heif", ".png", ".webp",
	".dng", ".cr2", ".cr3", ".nef", ".arw", ".orf", ".rw2",
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:   -1,
		Extensions: append([]string(nil), DefaultExtensions...),
	}
}

type Entry struct {
	// Path is slash separated and relative to the scan root.
	Path          string    `json:"path"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	ModTime       time.Time `json:"mod_time"`
}

// Photos lists the photo files under root in lexical path order.
func Photos(fsys fs.FS, root string, opts Options) ([]Entry, error) {
	if opts.MaxDepth < -1 {
		return nil, fs.ErrInvalid
	}

	exts := NormalizeExtensions(opts.Extensions)

	var matches []Entry

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := relative(root, p)
		if rel == "." {
			return nil
		}
		hidden := !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".")

		if d.IsDir() {
			if hidden {
				return fs.SkipDir
			}
			if opts.MaxDepth >= 0 && depth(rel) > opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}
		if opts.MaxDepth >= 0 && depth(rel) > opts.MaxDepth {
			return nil
		}
		if !exts[strings.ToLower(path.Ext(rel))] {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}

		matches = append(matches, Entry{
			Path:          rel,
			FileSizeBytes: info.Size(),
			ModTime:       info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Path < matches[j].Path
	})
	return matches, nil
}

// NormalizeExtensions lowercases exts, adds missing leading dots and drops
// empty entries.
func NormalizeExtensions(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		e := strings.TrimSpace(strings.ToLower(ext))
		if e == "" || e == "." {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[e] = true
	}
	return m
}

// relative returns p relative to root. fs.FS paths are always slash
// separated, so path rather than filepath is used.
func relative(root, p string) string {
	if root == "." {
		return p
	}
	rel := strings.TrimPrefix(p, root)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "."
	}
	return rel
}

func depth(rel string) int {
	rel = path.Clean(rel)
	if rel == "." {
		return 0
	}
	return strings.Count(rel, "/")
}

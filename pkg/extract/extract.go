// Package extract produces the raw metadata table for a photo directory.
//
// Two extractors are provided. ExifTool shells out to exiftool, which reads
// every format exiftool knows. Native walks the directory itself and decodes
// EXIF with goexif, so it needs no external tool but only understands JPEG
// and TIFF based files. Both write the same CSV header.
package extract

import (
	"context"
	"fmt"
	"strings"
)

// Extractor writes the raw metadata table for dir and returns its path.
type Extractor interface {
	Extract(ctx context.Context, dir string) (string, error)
}

// Kind names an Extractor implementation in configuration.
type Kind string

const (
	KindNative   Kind = "native"
	KindExifTool Kind = "exiftool"
)

// ParseKind validates a configured extractor name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindNative, KindExifTool:
		return k, nil
	}
	return "", fmt.Errorf("unknown extractor %q (want %s or %s)", s, KindNative, KindExifTool)
}

// Error is returned when extraction fails.
type Error struct {
	Dir    string
	Err    error
	Stderr string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("extract metadata from %s: %v", e.Dir, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

package extract

import (
	"context"
	"encoding/csv"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/quidome/photomap-go/internal/fsutil"
	"github.com/quidome/photomap-go/pkg/exifmeta"
	"github.com/quidome/photomap-go/pkg/rawcsv"
	"github.com/quidome/photomap-go/pkg/scan"
	"github.com/rs/zerolog"
)

// Native extracts metadata without external tools.
type Native struct {
	// Dest is where the raw table is written.
	Dest string

	// Scan selects the files read below the photo directory. If
	// Scan.Extensions is empty, scan.DefaultOptions is used.
	Scan scan.Options

	// Reader decodes a single photo. If nil, exifmeta.Decoder is used.
	Reader exifmeta.Reader

	Overwrite bool

	Logger *zerolog.Logger
}

// Extract implements Extractor.
//
// Files without EXIF data still get a row holding only their path, as
// exiftool does. Files that cannot be opened are logged and skipped.
func (n Native) Extract(ctx context.Context, dir string) (string, error) {
	log := zerolog.Nop()
	if n.Logger != nil {
		log = *n.Logger
	}
	reader := n.Reader
	if reader == nil {
		reader = exifmeta.Decoder{}
	}

	opts := n.Scan
	if len(opts.Extensions) == 0 {
		opts = scan.DefaultOptions()
	}

	fsys := os.DirFS(dir)
	entries, err := scan.Photos(fsys, ".", opts)
	if err != nil {
		return "", &Error{Dir: dir, Err: err}
	}

	log.Info().Str("dir", dir).Int("files", len(entries)).Str("dest", n.Dest).Msg("extracting metadata")

	err = fsutil.WriteAtomic(n.Dest, n.Overwrite, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(rawcsv.ExifToolColumns); err != nil {
			return err
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}

			source := filepath.Join(dir, filepath.FromSlash(entry.Path))
			m, found, err := readPhoto(fsys, entry.Path, source, reader)
			if err != nil {
				log.Warn().Err(err).Str("file", source).Msg("skipping unreadable photo")
				continue
			}
			if !found {
				log.Debug().Str("file", source).Msg("no exif data")
			}
			if err := cw.Write(nativeRow(source, m)); err != nil {
				return err
			}
		}

		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return "", &Error{Dir: dir, Err: err}
	}
	return n.Dest, nil
}

func readPhoto(fsys fs.FS, rel, source string, reader exifmeta.Reader) (exifmeta.Metadata, bool, error) {
	f, err := fsys.Open(rel)
	if err != nil {
		return exifmeta.Metadata{}, false, err
	}
	defer f.Close()

	return reader.Read(source, f)
}

// nativeRow lays out m in rawcsv.ExifToolColumns order. Numbers are written
// the way exiftool -n prints them.
func nativeRow(source string, m exifmeta.Metadata) []string {
	row := make([]string, len(rawcsv.ExifToolColumns))
	row[0] = source
	if !m.Timestamp.IsZero() {
		row[1] = m.Timestamp.Format(exifmeta.ExifLayout)
	}
	row[2] = formatFloat(m.Latitude)
	row[3] = formatFloat(m.Longitude)
	row[4] = formatFloat(m.Altitude)
	row[5] = formatFloat(m.Speed)
	if m.Speed != nil {
		row[6] = m.SpeedRef
	}
	row[7] = m.Model
	return row
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

package extract

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"sort"
	"strings"

	"github.com/quidome/photomap-go/internal/fsutil"
	"github.com/quidome/photomap-go/pkg/scan"
	"github.com/rs/zerolog"
)

// exifToolTags are requested in this order, which matches
// rawcsv.ExifToolColumns after SourceFile. The composite GPS tags are signed
// in numeric mode, so no reference columns are needed for them.
var exifToolTags = []string{
	"-DateTimeOriginal",
	"-Composite:GPSLatitude",
	"-Composite:GPSLongitude",
	"-Composite:GPSAltitude",
	"-GPSSpeed",
	"-GPSSpeedRef",
	"-Model",
}

// ExifTool extracts metadata by running the exiftool command.
type ExifTool struct {
	// Binary is the exiftool executable. If empty, "exiftool" is looked up in PATH.
	Binary string

	// Dest is where the raw table is written.
	Dest string

	// Extensions restricts the files exiftool reads. If empty,
	// scan.DefaultExtensions is used.
	Extensions []string

	Overwrite bool

	Logger *zerolog.Logger
}

// Args returns the exiftool arguments used for dir.
func (e ExifTool) Args(dir string) []string {
	args := []string{"-csv", "-n", "-r", "-q", "-q", "-fast"}

	exts := e.Extensions
	if len(exts) == 0 {
		exts = scan.DefaultExtensions
	}
	// Map order is random; sort so repeated runs issue identical commands.
	normalized := make([]string, 0, len(exts))
	for ext := range scan.NormalizeExtensions(exts) {
		normalized = append(normalized, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(normalized)
	for _, ext := range normalized {
		args = append(args, "-ext", ext)
	}

	args = append(args, exifToolTags...)
	return append(args, dir)
}

// Extract implements Extractor.
func (e ExifTool) Extract(ctx context.Context, dir string) (string, error) {
	bin := e.Binary
	if bin == "" {
		bin = "exiftool"
	}
	log := zerolog.Nop()
	if e.Logger != nil {
		log = *e.Logger
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		return "", &Error{Dir: dir, Err: err}
	}

	log.Info().Str("dir", dir).Str("exiftool", path).Str("dest", e.Dest).Msg("extracting metadata with exiftool")

	var stderr bytes.Buffer
	err = fsutil.WriteAtomic(e.Dest, e.Overwrite, func(w io.Writer) error {
		cmd := exec.CommandContext(ctx, path, e.Args(dir)...)
		cmd.Stdout = w
		cmd.Stderr = &stderr
		return cmd.Run()
	})
	if err != nil {
		return "", &Error{Dir: dir, Err: err, Stderr: stderr.String()}
	}
	return e.Dest, nil
}

package scan

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func paths(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func TestPhotos_MaxDepth(t *testing.T) {
	fsys := fstest.MapFS{
		"root/a.jpg":             &fstest.MapFile{Data: []byte("a")},
		"root/b.JPEG":            &fstest.MapFile{Data: []byte("b")},
		"root/c.txt":             &fstest.MapFile{Data: []byte("c")},
		"root/sub/d.tif":         &fstest.MapFile{Data: []byte("d")},
		"root/sub/nested/e.heic": &fstest.MapFile{Data: []byte("e")},
	}

	testCases := []struct {
		name     string
		maxDepth int
		want     []string
	}{
		{
			name:     "depth 0 includes only top-level",
			maxDepth: 0,
			want:     []string{"a.jpg", "b.JPEG"},
		},
		{
			name:     "depth 1 includes one subdirectory",
			maxDepth: 1,
			want:     []string{"a.jpg", "b.JPEG", "sub/d.tif"},
		},
		{
			name:     "unlimited includes nested subdirectories",
			maxDepth: -1,
			want:     []string{"a.jpg", "b.JPEG", "sub/d.tif", "sub/nested/e.heic"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.MaxDepth = tc.maxDepth

			got, err := Photos(fsys, "root", opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(paths(got), tc.want) {
				t.Fatalf("unexpected result\n got: %#v\nwant: %#v", paths(got), tc.want)
			}
		})
	}
}

func TestPhotos_IgnoresNonPhotos(t *testing.T) {
	fsys := fstest.MapFS{
		"root/a.txt": &fstest.MapFile{Data: []byte("a")},
		"root/b.xmp": &fstest.MapFile{Data: []byte("b")},
		"root/c.mp4": &fstest.MapFile{Data: []byte("c")},
	}

	got, err := Photos(fsys, "root", DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 0 {
		t.Fatalf("expected no photos, got %#v", got)
	}
}

func TestPhotos_SkipsHidden(t *testing.T) {
	fsys := fstest.MapFS{
		"a.jpg":              &fstest.MapFile{Data: []byte("a")},
		".b.jpg":             &fstest.MapFile{Data: []byte("b")},
		".thumbnails/c.jpg":  &fstest.MapFile{Data: []byte("c")},
		"album/.cache/d.jpg": &fstest.MapFile{Data: []byte("d")},
		"album/e.jpg":        &fstest.MapFile{Data: []byte("e")},
	}

	got, err := Photos(fsys, ".", DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"a.jpg", "album/e.jpg"}; !reflect.DeepEqual(paths(got), want) {
		t.Fatalf("unexpected result\n got: %#v\nwant: %#v", paths(got), want)
	}

	opts := DefaultOptions()
	opts.IncludeHidden = true
	got, err = Photos(fsys, ".", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 photos with hidden files, got %#v", paths(got))
	}
}

func TestPhotos_RecordsSize(t *testing.T) {
	fsys := fstest.MapFS{
		"a.jpg": &fstest.MapFile{Data: []byte("12345")},
	}

	got, err := Photos(fsys, ".", DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].FileSizeBytes != 5 {
		t.Fatalf("unexpected entries: %#v", got)
	}
}

func TestPhotos_InvalidMaxDepth(t *testing.T) {
	fsys := fstest.MapFS{}

	opts := DefaultOptions()
	opts.MaxDepth = -2

	_, err := Photos(fsys, "root", opts)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestNormalizeExtensions(t *testing.T) {
	got := NormalizeExtensions([]string{"JPG", ".Tif", " ", ".", "heic "})
	want := map[string]bool{".jpg": true, ".tif": true, ".heic": true}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected result\n got: %#v\nwant: %#v", got, want)
	}
}

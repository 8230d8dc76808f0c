package testing

import (
	"io"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
)

// ZipContents opens the archive at path and returns its file entries mapped
// to their content. Directory entries are omitted.
func ZipContents(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Failed to open archive %s: %v", path, err)
	}
	defer func() { _ = r.Close() }()

	entries := make(map[string]string, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("Failed to read entry %s: %v", f.Name, err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

// ZipNames returns the sorted file entry names of the archive at path.
func ZipNames(t *testing.T, path string) []string {
	t.Helper()
	contents := ZipContents(t, path)
	names := make([]string, 0, len(contents))
	for name := range contents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

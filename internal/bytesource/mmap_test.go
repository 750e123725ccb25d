package bytesource

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMmapSourceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.bin")
	want := []byte("the quick brown fox jumps over the lazy dog")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	src, err := OpenMmapSource(path)
	if err != nil {
		t.Fatalf("OpenMmapSource: %v", err)
	}
	defer src.Close()

	if got := src.Len(); got != int64(len(want)) {
		t.Errorf("Len() = %d, want %d", got, len(want))
	}
	if got := string(src.Bytes()); got != string(want) {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}

	sub, err := src.Slice(4, 5)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if got := string(sub.Bytes()); got != "quick" {
		t.Errorf("Slice(4,5).Bytes() = %q, want %q", got, "quick")
	}
}

func TestOpenMmapSourceRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := OpenMmapSource(path); err == nil {
		t.Errorf("OpenMmapSource on an empty file: expected error, got nil")
	}
}

func TestOpenMmapSourceMissingFile(t *testing.T) {
	if _, err := OpenMmapSource(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Errorf("OpenMmapSource on a missing file: expected error, got nil")
	}
}

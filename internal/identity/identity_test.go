package identity

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	first, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	second, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	if first != second {
		t.Errorf("expected deterministic hash, got %s and %s", first, second)
	}

	// Known SHA-256 of "hello world"
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if first != want {
		t.Errorf("expected %s, got %s", want, first)
	}
}

func TestHashFile_ContentOnly(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original.jpg")
	if err := os.WriteFile(original, []byte("image bytes"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	before, err := HashFile(original)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	renamed := filepath.Join(dir, "renamed.jpg")
	if err := os.Rename(original, renamed); err != nil {
		t.Fatalf("rename: %v", err)
	}

	after, err := HashFile(renamed)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	if before != after {
		t.Errorf("rename changed hash: %s != %s", before, after)
	}
}

func TestHashFile_Unreadable(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "missing.jpg"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHashString(t *testing.T) {
	got := HashString("hello world")
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestShortHash(t *testing.T) {
	digest := "0123456789abcdef0123456789abcdef"
	if got := ShortHash(digest, 16); got != "0123456789abcdef" {
		t.Errorf("expected first 16 chars, got %s", got)
	}
	if got := ShortHash("abc", 16); got != "abc" {
		t.Errorf("expected short digest unchanged, got %s", got)
	}
}

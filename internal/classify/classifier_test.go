package classify

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := range 4 {
		for y := range 4 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func findByPath(t *testing.T, files []FileClassification, path string) FileClassification {
	t.Helper()
	for _, f := range files {
		if f.SourcePath == path {
			return f
		}
	}
	t.Fatalf("no classification for %s", path)
	return FileClassification{}
}

func TestClassify_FormatSniffing(t *testing.T) {
	dir := t.TempDir()

	// A PNG masquerading as a JPEG: the true format must win.
	lying := filepath.Join(dir, "photo.jpg")
	writeFile(t, lying, pngBytes(t, color.White))

	// A BMP with a proper name.
	var bmpBuf bytes.Buffer
	if err := bmp.Encode(&bmpBuf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}
	bmpPath := filepath.Join(dir, "pic.bmp")
	writeFile(t, bmpPath, bmpBuf.Bytes())

	// A GIF.
	var gifBuf bytes.Buffer
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), []color.Color{color.Black, color.White})
	if err := gif.Encode(&gifBuf, pal, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	gifPath := filepath.Join(dir, "anim.gif")
	writeFile(t, gifPath, gifBuf.Bytes())

	files, err := New(nil).Classify(dir)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if got := findByPath(t, files, lying).ResolvedExtension; got != "png" {
		t.Errorf("expected sniffed extension png, got %q", got)
	}
	if got := findByPath(t, files, bmpPath).ResolvedExtension; got != "bmp" {
		t.Errorf("expected bmp, got %q", got)
	}
	if got := findByPath(t, files, gifPath).ResolvedExtension; got != "gif" {
		t.Errorf("expected gif, got %q", got)
	}
}

func TestClassify_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	fake := filepath.Join(dir, "notes.jpg")
	writeFile(t, fake, []byte("just some text with a misleading extension"))

	files, err := New(nil).Classify(dir)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	fc := findByPath(t, files, fake)
	if fc.Status != StatusInvalid {
		t.Errorf("expected invalid, got %s", fc.Status)
	}
	if fc.ContentHash != "" {
		t.Errorf("invalid files must not be hashed, got %q", fc.ContentHash)
	}
	if fc.ResolvedExtension != "" {
		t.Errorf("invalid files have no resolved extension, got %q", fc.ResolvedExtension)
	}
}

func TestClassify_DuplicateEarliestSurvives(t *testing.T) {
	dir := t.TempDir()
	data := pngBytes(t, color.White)

	older := filepath.Join(dir, "sub", "a.png")
	newer := filepath.Join(dir, "b.png")
	writeFile(t, older, data)
	writeFile(t, newer, data)

	oldTime := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(older, oldTime, oldTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	files, err := New(nil).Classify(dir)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	a := findByPath(t, files, older)
	b := findByPath(t, files, newer)

	if a.Status != StatusNormal {
		t.Errorf("expected earliest file to stay normal, got %s", a.Status)
	}
	if b.Status != StatusDuplicate {
		t.Errorf("expected later file to be duplicate, got %s", b.Status)
	}
	if a.ContentHash != b.ContentHash {
		t.Errorf("identical content produced different hashes: %s != %s", a.ContentHash, b.ContentHash)
	}
}

func TestClassify_UniqueContentStaysNormal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "white.png"), pngBytes(t, color.White))
	writeFile(t, filepath.Join(dir, "black.png"), pngBytes(t, color.Black))

	files, err := New(nil).Classify(dir)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	for _, f := range files {
		if f.Status != StatusNormal {
			t.Errorf("expected %s to be normal, got %s", f.SourcePath, f.Status)
		}
	}
}

func TestMarkDuplicates_SingleSurvivorPerGroup(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	files := []FileClassification{
		{SourcePath: "c", Status: StatusNormal, ContentHash: "h1", ResolvedTime: base.Add(2 * time.Hour)},
		{SourcePath: "a", Status: StatusNormal, ContentHash: "h1", ResolvedTime: base},
		{SourcePath: "b", Status: StatusNormal, ContentHash: "h1", ResolvedTime: base.Add(time.Hour)},
		{SourcePath: "x", Status: StatusNormal, ContentHash: "h2", ResolvedTime: base},
	}

	markDuplicates(files)

	normals := 0
	for _, f := range files {
		if f.ContentHash == "h1" && f.Status == StatusNormal {
			normals++
			if f.SourcePath != "a" {
				t.Errorf("expected earliest file a to survive, got %s", f.SourcePath)
			}
		}
	}
	if normals != 1 {
		t.Errorf("expected exactly one normal in group, got %d", normals)
	}

	if files[3].Status != StatusNormal {
		t.Errorf("singleton group must stay normal, got %s", files[3].Status)
	}
}

func TestMarkDuplicates_ChangeTimeTieBreak(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	files := []FileClassification{
		{SourcePath: "late", Status: StatusNormal, ContentHash: "h", ResolvedTime: ts, ChangeTime: ts.Add(time.Minute)},
		{SourcePath: "early", Status: StatusNormal, ContentHash: "h", ResolvedTime: ts, ChangeTime: ts},
	}

	markDuplicates(files)

	if files[1].Status != StatusNormal {
		t.Errorf("expected file with earliest change time to survive, got %s", files[1].Status)
	}
	if files[0].Status != StatusDuplicate {
		t.Errorf("expected later change time to be duplicate, got %s", files[0].Status)
	}
}

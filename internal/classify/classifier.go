// Package classify walks a directory tree, validates that each file is a
// genuine image of a known format, and partitions the set into normal,
// duplicate and invalid files. A file's format is sniffed from its content;
// the name's extension is never trusted.
package classify

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/photo-librarian/internal/capture"
	"github.com/kozaktomas/photo-librarian/internal/identity"
)

// canonicalExtensions maps the format names reported by image.DecodeConfig
// to canonical lowercase file extensions. Formats outside this set are
// invalid.
var canonicalExtensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"bmp":  "bmp",
	"webp": "webp",
}

// Classifier scans directory trees and classifies image files.
type Classifier struct {
	log *zap.Logger
}

// New creates a Classifier. A nil logger disables logging.
func New(log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{log: log}
}

// Classify recursively enumerates every file under root and returns one
// FileClassification per file. Within each group of files sharing a content
// hash, exactly one file is StatusNormal: the one with the earliest resolved
// time (ties broken by change time, then path). Files that cannot be read
// are skipped with a warning; only a broken walk aborts the pass.
func (c *Classifier) Classify(root string) ([]FileClassification, error) {
	var files []FileClassification

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		fc, err := c.classifyFile(path)
		if err != nil {
			c.log.Warn("skipping unreadable file",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}
		files = append(files, *fc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	markDuplicates(files)
	return files, nil
}

// classifyFile sniffs the format, resolves the timestamp and hashes a
// single file. Only I/O failures count as errors; a non-image file is a
// valid classification with StatusInvalid.
func (c *Classifier) classifyFile(path string) (*FileClassification, error) {
	ext, ok := sniffFormat(path)
	if !ok {
		c.log.Info("not a decodable image", zap.String("path", path))
		return &FileClassification{SourcePath: path, Status: StatusInvalid}, nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	resolved, found := capture.Resolve(path)
	if !found {
		resolved = fi.ModTime()
	}

	hash, err := identity.HashFile(path)
	if err != nil {
		return nil, err
	}

	return &FileClassification{
		SourcePath:        path,
		Status:            StatusNormal,
		ResolvedExtension: ext,
		ContentHash:       hash,
		ResolvedTime:      resolved,
		ChangeTime:        changeTime(fi),
	}, nil
}

// sniffFormat decodes just the image header and maps the reported format to
// its canonical extension. ok is false when the file is not an image in the
// allowed set.
func sniffFormat(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", false
	}

	ext, ok := canonicalExtensions[format]
	return ext, ok
}

// markDuplicates groups normal candidates by content hash and demotes every
// member except the earliest to StatusDuplicate. The ordering is strict:
// resolved time ascending, then change time, then path, so the same
// filesystem state always elects the same survivor.
func markDuplicates(files []FileClassification) {
	groups := make(map[string][]int)
	for i := range files {
		if files[i].Status != StatusNormal {
			continue
		}
		groups[files[i].ContentHash] = append(groups[files[i].ContentHash], i)
	}

	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		sort.Slice(idxs, func(a, b int) bool {
			fa, fb := files[idxs[a]], files[idxs[b]]
			if !fa.ResolvedTime.Equal(fb.ResolvedTime) {
				return fa.ResolvedTime.Before(fb.ResolvedTime)
			}
			if !fa.ChangeTime.Equal(fb.ChangeTime) {
				return fa.ChangeTime.Before(fb.ChangeTime)
			}
			return fa.SourcePath < fb.SourcePath
		})
		for _, i := range idxs[1:] {
			files[i].Status = StatusDuplicate
		}
	}
}

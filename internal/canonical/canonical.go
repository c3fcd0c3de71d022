// Package canonical renames classified files to deterministic names and
// quarantines duplicates. Moves are irreversible, there is no rollback.
package canonical

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kozaktomas/photo-librarian/internal/classify"
)

// Options controls a canonicalization pass.
type Options struct {
	// QuarantineDir receives duplicate (and optionally invalid) files.
	// When empty, duplicates and invalids stay where they are.
	QuarantineDir string
	// MoveInvalid moves invalid files into QuarantineDir as well.
	MoveInvalid bool
}

// Result summarizes a canonicalization pass. Errors holds per-file
// failures; the pass continues past each of them.
type Result struct {
	Renamed          int
	Unchanged        int
	DuplicatesMoved  int
	InvalidsMoved    int
	CollisionsSolved int
	Errors           []error
}

type Runner struct {
	classifier *classify.Classifier
	log        *zap.Logger
}

func New(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		classifier: classify.New(log),
		log:        log,
	}
}

// Run classifies every file under root and applies the canonical layout:
// normal files are renamed in place to {time}_{hash16}.{ext}, duplicates
// and (optionally) invalid files are flattened into the quarantine
// directory with a status prefix.
func (r *Runner) Run(root string, opts Options) (*Result, error) {
	files, err := r.classifier.Classify(root)
	if err != nil {
		return nil, fmt.Errorf("could not classify %s: %w", root, err)
	}

	if opts.QuarantineDir != "" {
		if err := os.MkdirAll(opts.QuarantineDir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create quarantine dir: %w", err)
		}
	}

	res := &Result{}
	for _, fc := range files {
		switch fc.Status {
		case classify.StatusNormal:
			r.renameNormal(root, fc, opts, res)
		case classify.StatusDuplicate:
			if opts.QuarantineDir == "" {
				continue
			}
			if err := r.quarantine(root, fc.SourcePath, "duplicate-", opts.QuarantineDir, res); err != nil {
				res.Errors = append(res.Errors, err)
				continue
			}
			res.DuplicatesMoved++
		case classify.StatusInvalid:
			if opts.QuarantineDir == "" || !opts.MoveInvalid {
				continue
			}
			if err := r.quarantine(root, fc.SourcePath, "invalid-", opts.QuarantineDir, res); err != nil {
				res.Errors = append(res.Errors, err)
				continue
			}
			res.InvalidsMoved++
		}
	}

	return res, nil
}

func (r *Runner) renameNormal(root string, fc classify.FileClassification, opts Options, res *Result) {
	target := filepath.Join(filepath.Dir(fc.SourcePath), CanonicalName(fc))
	if target == fc.SourcePath {
		res.Unchanged++
		r.log.Debug("already canonical", zap.String("path", fc.SourcePath))
		return
	}

	if _, err := os.Lstat(target); err == nil {
		// Target taken by another file. Should not happen after dedup,
		// but a stale file from an earlier run can still be in the way.
		if opts.QuarantineDir == "" {
			res.Errors = append(res.Errors, fmt.Errorf("target %s already exists and no quarantine dir is set", target))
			return
		}
		if err := r.quarantine(root, fc.SourcePath, "duplicate-", opts.QuarantineDir, res); err != nil {
			res.Errors = append(res.Errors, err)
			return
		}
		res.CollisionsSolved++
		return
	}

	if err := os.Rename(fc.SourcePath, target); err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("could not rename %s: %w", fc.SourcePath, err))
		return
	}
	res.Renamed++
	r.log.Info("renamed", zap.String("from", fc.SourcePath), zap.String("to", target))
}

// quarantine moves path into dir under prefix + flattened relative path.
// Name collisions inside the quarantine get a random suffix.
func (r *Runner) quarantine(root, path, prefix, dir string, res *Result) error {
	target := filepath.Join(dir, prefix+flattenPath(root, path))
	if _, err := os.Lstat(target); err == nil {
		target = withRandomSuffix(target)
		res.CollisionsSolved++
	}
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("could not quarantine %s: %w", path, err)
	}
	r.log.Info("quarantined", zap.String("from", path), zap.String("to", target))
	return nil
}

// CanonicalName builds the deterministic file name for a normal file.
func CanonicalName(fc classify.FileClassification) string {
	return fmt.Sprintf(
		"%s_%s.%s",
		fc.ResolvedTime.Format("20060102-150405"),
		fc.ContentHash[:16],
		fc.ResolvedExtension,
	)
}

// flattenPath turns the path relative to root into a single flat file
// name with separators replaced by dashes.
func flattenPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimLeft(rel, "./")
	return strings.ReplaceAll(rel, "/", "-")
}

func withRandomSuffix(target string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	ext := filepath.Ext(target)
	return target[:len(target)-len(ext)] + "-" + suffix + ext
}

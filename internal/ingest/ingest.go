// Package ingest bootstraps store records from a canonicalized photo
// tree. It only writes to the database; filesystem moves belong to the
// canonicalizer.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kozaktomas/photo-librarian/internal/classify"
	"github.com/kozaktomas/photo-librarian/internal/store"
)

// Summary tallies one ingestion pass.
type Summary struct {
	Inserted   int
	Unchanged  int
	Reinserted int
	Skipped    int
	Errors     []error
}

type Ingester struct {
	classifier *classify.Classifier
	store      store.RecordWriter
	log        *zap.Logger

	// OnFile, when set, is called after every handled file.
	OnFile func(path string)
}

func New(st store.RecordWriter, log *zap.Logger) *Ingester {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingester{
		classifier: classify.New(log),
		store:      st,
		log:        log,
	}
}

// Run classifies every file under root and inserts a record for each
// normal one. Duplicates and invalid files never enter the store.
func (i *Ingester) Run(ctx context.Context, root string) (*Summary, error) {
	files, err := i.classifier.Classify(root)
	if err != nil {
		return nil, fmt.Errorf("could not classify %s: %w", root, err)
	}

	summary := &Summary{}
	for _, fc := range files {
		if fc.Status != classify.StatusNormal {
			continue
		}
		if err := i.ingestFile(ctx, fc, summary); err != nil {
			summary.Errors = append(summary.Errors, err)
			i.log.Warn("could not ingest file", zap.String("path", fc.SourcePath), zap.Error(err))
		}
		if i.OnFile != nil {
			i.OnFile(fc.SourcePath)
		}
	}
	return summary, nil
}

func (i *Ingester) ingestFile(ctx context.Context, fc classify.FileClassification, summary *Summary) error {
	existing, err := i.store.FindByPath(ctx, fc.SourcePath)
	if err != nil {
		return fmt.Errorf("look up %s: %w", fc.SourcePath, err)
	}

	if existing != nil {
		if existing.SHA256 == fc.ContentHash {
			summary.Unchanged++
			return nil
		}
		// Same path, different content. The old record describes a file
		// that no longer exists; start over.
		if err := i.store.DeleteByPath(ctx, fc.SourcePath); err != nil {
			return fmt.Errorf("drop stale record for %s: %w", fc.SourcePath, err)
		}
		if err := i.store.Insert(ctx, fc.SourcePath, fc.ContentHash, fc.ResolvedTime); err != nil {
			return fmt.Errorf("re-insert %s: %w", fc.SourcePath, err)
		}
		summary.Reinserted++
		return nil
	}

	byHash, err := i.store.FindByHash(ctx, fc.ContentHash)
	if err != nil {
		return fmt.Errorf("look up hash of %s: %w", fc.SourcePath, err)
	}
	if byHash != nil {
		// Identical content already indexed under another path.
		i.log.Debug("content already indexed",
			zap.String("path", fc.SourcePath),
			zap.String("existing", byHash.FilePath),
		)
		summary.Skipped++
		return nil
	}

	if err := i.store.Insert(ctx, fc.SourcePath, fc.ContentHash, fc.ResolvedTime); err != nil {
		return fmt.Errorf("insert %s: %w", fc.SourcePath, err)
	}
	summary.Inserted++
	return nil
}

package backfill

import (
	"context"
	"fmt"
	"os"

	"github.com/kozaktomas/photo-librarian/internal/identity"
	"github.com/kozaktomas/photo-librarian/internal/store"
)

// CleanupJob discards records that no longer match reality: the file is
// gone, its content changed, or the record never finished processing.
// Broken records are deleted, not repaired; re-ingestion rebuilds them.
type CleanupJob struct {
	store store.RecordWriter
}

func NewCleanupJob(st store.RecordWriter) *CleanupJob {
	return &CleanupJob{store: st}
}

func (j *CleanupJob) Name() string {
	return "cleanup"
}

func (j *CleanupJob) Process(ctx context.Context, rec store.Record, force bool) (Outcome, error) {
	if _, err := os.Stat(rec.FilePath); os.IsNotExist(err) {
		return j.delete(ctx, rec)
	} else if err != nil {
		return OutcomeFailed, fmt.Errorf("stat %s: %w", rec.FilePath, err)
	}

	hash, err := identity.HashFile(rec.FilePath)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("hash %s: %w", rec.FilePath, err)
	}
	if hash != rec.SHA256 {
		return j.delete(ctx, rec)
	}

	if !rec.Complete() {
		return j.delete(ctx, rec)
	}

	return OutcomeKept, nil
}

func (j *CleanupJob) delete(ctx context.Context, rec store.Record) (Outcome, error) {
	if err := j.store.DeleteByPath(ctx, rec.FilePath); err != nil {
		return OutcomeFailed, fmt.Errorf("delete record for %s: %w", rec.FilePath, err)
	}
	return OutcomeDeleted, nil
}

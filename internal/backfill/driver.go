// Package backfill implements resumable batch jobs that fill in missing
// derived fields on stored records. Each job visits every record once
// per full pass, in ascending id order, and runs to exhaustion.
package backfill

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kozaktomas/photo-librarian/internal/store"
)

const defaultBatchSize = 100

// Outcome describes what happened to a single record. Expected per-item
// conditions are outcomes, not errors; only genuinely failed items
// return an error alongside OutcomeFailed.
type Outcome int

const (
	// OutcomeUpdated means the target field was computed and written.
	OutcomeUpdated Outcome = iota
	// OutcomeSkippedPopulated means the field was already set and force was off.
	OutcomeSkippedPopulated
	// OutcomeSkippedDependency means a required upstream field is still null.
	OutcomeSkippedDependency
	// OutcomeDeleted means the cleanup job removed the record.
	OutcomeDeleted
	// OutcomeKept means the cleanup job verified the record and left it alone.
	OutcomeKept
	// OutcomeFailed means the item errored and was skipped.
	OutcomeFailed
)

// Job processes one record at a time.
type Job interface {
	Name() string
	Process(ctx context.Context, rec store.Record, force bool) (Outcome, error)
}

// Summary tallies outcomes across a whole run.
type Summary struct {
	Processed         int
	Updated           int
	SkippedPopulated  int
	SkippedDependency int
	Deleted           int
	Kept              int
	Failed            int
}

// Runner drives a job across the whole store with an id cursor.
type Runner struct {
	store     store.RecordReader
	log       *zap.Logger
	batchSize int

	// OnItem, when set, is called after every processed record.
	// Used for progress reporting.
	OnItem func(rec store.Record, outcome Outcome)
}

func NewRunner(st store.RecordReader, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		store:     st,
		log:       log,
		batchSize: defaultBatchSize,
	}
}

// Run processes every record once. Per-item failures are logged and
// skipped; a failing store scan aborts the whole run.
func (r *Runner) Run(ctx context.Context, job Job, force bool) (*Summary, error) {
	return r.Resume(ctx, job, force, 0)
}

// Resume behaves like Run but starts the cursor after the given id,
// revisiting no record at or below it.
func (r *Runner) Resume(ctx context.Context, job Job, force bool, cursor int64) (*Summary, error) {
	summary := &Summary{}

	for {
		batch, err := r.store.ScanBatch(ctx, cursor, r.batchSize)
		if err != nil {
			return summary, fmt.Errorf("scan batch after id %d: %w", cursor, err)
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			outcome, err := job.Process(ctx, rec, force)
			if err != nil {
				outcome = OutcomeFailed
				r.log.Warn("item failed",
					zap.String("job", job.Name()),
					zap.String("path", rec.FilePath),
					zap.Error(err),
				)
			}
			summary.tally(outcome)
			if r.OnItem != nil {
				r.OnItem(rec, outcome)
			}
		}

		cursor = batch[len(batch)-1].ID
	}

	r.log.Info("job finished",
		zap.String("job", job.Name()),
		zap.Int("processed", summary.Processed),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *Summary) tally(outcome Outcome) {
	s.Processed++
	switch outcome {
	case OutcomeUpdated:
		s.Updated++
	case OutcomeSkippedPopulated:
		s.SkippedPopulated++
	case OutcomeSkippedDependency:
		s.SkippedDependency++
	case OutcomeDeleted:
		s.Deleted++
	case OutcomeKept:
		s.Kept++
	case OutcomeFailed:
		s.Failed++
	}
}

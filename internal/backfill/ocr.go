package backfill

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kozaktomas/photo-librarian/internal/ai"
	"github.com/kozaktomas/photo-librarian/internal/store"
)

// OCRJob reads text off each stored photo. A photo with no readable
// text gets the empty string, which marks the record as processed.
type OCRJob struct {
	store      store.RecordWriter
	recognizer ai.Recognizer
}

func NewOCRJob(st store.RecordWriter, recognizer ai.Recognizer) *OCRJob {
	return &OCRJob{store: st, recognizer: recognizer}
}

func (j *OCRJob) Name() string {
	return "ocr"
}

func (j *OCRJob) Process(ctx context.Context, rec store.Record, force bool) (Outcome, error) {
	if rec.OCRText != nil && !force {
		return OutcomeSkippedPopulated, nil
	}

	data, err := os.ReadFile(rec.FilePath)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("read %s: %w", rec.FilePath, err)
	}

	fragments, err := j.recognizer.RecognizeText(ctx, data)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("recognize text in %s: %w", rec.FilePath, err)
	}

	text := strings.Join(fragments, ", ")
	if err := j.store.UpdateOCRText(ctx, rec.ID, text); err != nil {
		return OutcomeFailed, fmt.Errorf("store ocr text for %s: %w", rec.FilePath, err)
	}
	return OutcomeUpdated, nil
}

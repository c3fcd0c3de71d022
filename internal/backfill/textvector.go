package backfill

import (
	"context"
	"fmt"

	"github.com/kozaktomas/photo-librarian/internal/ai"
	"github.com/kozaktomas/photo-librarian/internal/store"
	"github.com/kozaktomas/photo-librarian/internal/tags"
)

// TextVectorJob embeds the combined tag and OCR text of each record
// into the text-only space. Records whose OCR has not run yet are
// skipped; running the OCR job first unblocks them.
type TextVectorJob struct {
	store    store.RecordWriter
	embedder ai.TextEmbedder
}

func NewTextVectorJob(st store.RecordWriter, embedder ai.TextEmbedder) *TextVectorJob {
	return &TextVectorJob{store: st, embedder: embedder}
}

func (j *TextVectorJob) Name() string {
	return "text-vector"
}

func (j *TextVectorJob) Process(ctx context.Context, rec store.Record, force bool) (Outcome, error) {
	if rec.AllTextVector != nil && !force {
		return OutcomeSkippedPopulated, nil
	}
	if rec.OCRText == nil {
		return OutcomeSkippedDependency, nil
	}

	var tagText string
	if rec.TagText != nil {
		tagText = *rec.TagText
	}
	text := tags.JoinAllText(tagText, *rec.OCRText)

	vec, err := j.embedder.Embed(ctx, text)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("embed text for %s: %w", rec.FilePath, err)
	}

	if err := j.store.UpdateAllTextVector(ctx, rec.ID, vec); err != nil {
		return OutcomeFailed, fmt.Errorf("store text vector for %s: %w", rec.FilePath, err)
	}
	return OutcomeUpdated, nil
}

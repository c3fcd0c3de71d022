package backfill

import (
	"context"
	"fmt"
	"os"

	"github.com/kozaktomas/photo-librarian/internal/ai"
	"github.com/kozaktomas/photo-librarian/internal/store"
)

// ImageVectorJob embeds each stored photo into the multimodal space.
type ImageVectorJob struct {
	store    store.RecordWriter
	embedder ai.MultimodalEmbedder
}

func NewImageVectorJob(st store.RecordWriter, embedder ai.MultimodalEmbedder) *ImageVectorJob {
	return &ImageVectorJob{store: st, embedder: embedder}
}

func (j *ImageVectorJob) Name() string {
	return "image-vector"
}

func (j *ImageVectorJob) Process(ctx context.Context, rec store.Record, force bool) (Outcome, error) {
	if rec.ImageVector != nil && !force {
		return OutcomeSkippedPopulated, nil
	}

	data, err := os.ReadFile(rec.FilePath)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("read %s: %w", rec.FilePath, err)
	}

	vec, err := j.embedder.EmbedImage(ctx, data)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("embed %s: %w", rec.FilePath, err)
	}

	if err := j.store.UpdateImageVector(ctx, rec.ID, vec); err != nil {
		return OutcomeFailed, fmt.Errorf("store image vector for %s: %w", rec.FilePath, err)
	}
	return OutcomeUpdated, nil
}

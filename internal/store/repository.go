package store

import (
	"context"
	"time"
)

// RecordReader provides read-only access to photo records.
type RecordReader interface {
	// FindByPath retrieves a record by file path, returns nil if not found
	FindByPath(ctx context.Context, path string) (*Record, error)
	// FindByHash retrieves a record by content hash, returns nil if not found
	FindByHash(ctx context.Context, hash string) (*Record, error)
	// Count returns the total number of records stored
	Count(ctx context.Context) (int, error)
	// ScanBatch returns up to batchSize records with id > afterID in
	// ascending id order. An empty result means the scan is exhausted.
	ScanBatch(ctx context.Context, afterID int64, batchSize int) ([]Record, error)
	// SearchByImageVector finds the closest records in the multimodal
	// vector space. Every result satisfies distance < 1 - minSimilarity;
	// minSimilarity <= 0 disables the floor.
	SearchByImageVector(ctx context.Context, vec []float32, minSimilarity float64, limit int) ([]SimilarityResult, error)
	// SearchByAllTextVector finds the closest records in the text-only
	// vector space, with the same floor semantics.
	SearchByAllTextVector(ctx context.Context, vec []float32, minSimilarity float64, limit int) ([]SimilarityResult, error)
}

// RecordWriter provides write access to photo records. Each update
// touches exactly one field; the others are never altered.
type RecordWriter interface {
	RecordReader

	// Insert creates a record with all optional text/vector fields null.
	Insert(ctx context.Context, path, hash string, modified time.Time) error
	// DeleteByPath removes the record for the given file path.
	DeleteByPath(ctx context.Context, path string) error

	UpdateOCRText(ctx context.Context, id int64, text string) error
	UpdateTagText(ctx context.Context, id int64, text string) error
	UpdateImageVector(ctx context.Context, id int64, vec []float32) error
	UpdateAllTextVector(ctx context.Context, id int64, vec []float32) error
}

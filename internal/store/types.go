package store

import (
	"time"
)

// Record represents one indexed photo. The text and vector fields are
// independently nullable: nil means the value was never computed, while
// an empty value means the computation ran and produced nothing.
type Record struct {
	ID           int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	FileModified time.Time
	FilePath     string
	FileName     string
	FileDir      string
	SHA256       string

	OCRText       *string
	TagText       *string
	ImageVector   []float32
	AllTextVector []float32
}

// Complete reports whether all derived fields have been populated.
func (r *Record) Complete() bool {
	return r.OCRText != nil && r.ImageVector != nil && r.AllTextVector != nil
}

// SimilarityResult is a projection of a record with its cosine distance
// to the query vector.
type SimilarityResult struct {
	FilePath       string
	FileName       string
	SHA256         string
	CosineDistance float64
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/photo-librarian/internal/store"
)

// RecordRepository provides PostgreSQL-backed photo record storage.
type RecordRepository struct {
	pool *Pool
}

// NewRecordRepository creates a new PostgreSQL record repository.
func NewRecordRepository(pool *Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

const recordColumns = `
	id, created_at, updated_at, file_modified,
	file_path, file_name, file_dir, sha256,
	ocr_text, tag_text, image_vector, all_text_vector
`

type recordRow struct {
	rec           store.Record
	ocrText       sql.NullString
	tagText       sql.NullString
	imageVector   sql.Null[pgvector.Vector]
	allTextVector sql.Null[pgvector.Vector]
}

func (r *recordRow) fields() []any {
	return []any{
		&r.rec.ID, &r.rec.CreatedAt, &r.rec.UpdatedAt, &r.rec.FileModified,
		&r.rec.FilePath, &r.rec.FileName, &r.rec.FileDir, &r.rec.SHA256,
		&r.ocrText, &r.tagText, &r.imageVector, &r.allTextVector,
	}
}

func (r *recordRow) record() store.Record {
	rec := r.rec
	if r.ocrText.Valid {
		s := r.ocrText.String
		rec.OCRText = &s
	}
	if r.tagText.Valid {
		s := r.tagText.String
		rec.TagText = &s
	}
	if r.imageVector.Valid {
		rec.ImageVector = r.imageVector.V.Slice()
	}
	if r.allTextVector.Valid {
		rec.AllTextVector = r.allTextVector.V.Slice()
	}
	return rec
}

// FindByPath retrieves a record by file path, returns nil if not found
func (r *RecordRepository) FindByPath(ctx context.Context, path string) (*store.Record, error) {
	return r.findOne(ctx, "file_path", path)
}

// FindByHash retrieves a record by content hash, returns nil if not found
func (r *RecordRepository) FindByHash(ctx context.Context, hash string) (*store.Record, error) {
	return r.findOne(ctx, "sha256", hash)
}

func (r *RecordRepository) findOne(ctx context.Context, column, value string) (*store.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM photo_records WHERE %s = $1 LIMIT 1", recordColumns, column)

	var row recordRow
	err := r.pool.QueryRow(ctx, query, value).Scan(row.fields()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query record by %s: %w", column, err)
	}

	rec := row.record()
	return &rec, nil
}

// Count returns the total number of records stored
func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM photo_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// ScanBatch returns up to batchSize records with id > afterID in ascending order.
func (r *RecordRepository) ScanBatch(ctx context.Context, afterID int64, batchSize int) ([]store.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM photo_records
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`, recordColumns)

	rows, err := r.pool.Query(ctx, query, afterID, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query record batch: %w", err)
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		var row recordRow
		if err := rows.Scan(row.fields()...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, row.record())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// SearchByImageVector finds the closest records in the multimodal space.
func (r *RecordRepository) SearchByImageVector(ctx context.Context, vec []float32, minSimilarity float64, limit int) ([]store.SimilarityResult, error) {
	return r.searchByVector(ctx, "image_vector", vec, minSimilarity, limit)
}

// SearchByAllTextVector finds the closest records in the text-only space.
func (r *RecordRepository) SearchByAllTextVector(ctx context.Context, vec []float32, minSimilarity float64, limit int) ([]store.SimilarityResult, error) {
	return r.searchByVector(ctx, "all_text_vector", vec, minSimilarity, limit)
}

// searchByVector ranks records by cosine distance on the given vector
// column. A positive minSimilarity adds the distance < 1 - minSimilarity
// floor; zero or negative leaves the result unfiltered.
func (r *RecordRepository) searchByVector(ctx context.Context, column string, vec []float32, minSimilarity float64, limit int) ([]store.SimilarityResult, error) {
	query := fmt.Sprintf(`
		SELECT file_path, file_name, sha256, %[1]s <=> $1::vector AS distance
		FROM photo_records
		WHERE %[1]s IS NOT NULL
		ORDER BY distance
		LIMIT $2
	`, column)
	args := []any{pgvector.NewVector(vec), limit}

	if minSimilarity > 0 {
		query = fmt.Sprintf(`
			SELECT file_path, file_name, sha256, %[1]s <=> $1::vector AS distance
			FROM photo_records
			WHERE %[1]s IS NOT NULL AND %[1]s <=> $1::vector < $2
			ORDER BY distance
			LIMIT $3
		`, column)
		args = []any{pgvector.NewVector(vec), 1 - minSimilarity, limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query similar records: %w", err)
	}
	defer rows.Close()

	var results []store.SimilarityResult
	for rows.Next() {
		var res store.SimilarityResult
		if err := rows.Scan(&res.FilePath, &res.FileName, &res.SHA256, &res.CosineDistance); err != nil {
			return nil, fmt.Errorf("scan similarity result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similarity results: %w", err)
	}
	return results, nil
}

// Insert creates a record with all optional text/vector fields null.
func (r *RecordRepository) Insert(ctx context.Context, path, hash string, modified time.Time) error {
	query := `
		INSERT INTO photo_records (file_path, file_name, file_dir, sha256, file_modified)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, path, filepath.Base(path), filepath.Dir(path), hash, modified)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// DeleteByPath removes the record for the given file path.
func (r *RecordRepository) DeleteByPath(ctx context.Context, path string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM photo_records WHERE file_path = $1", path); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func (r *RecordRepository) UpdateOCRText(ctx context.Context, id int64, text string) error {
	return r.updateField(ctx, id, "ocr_text", text)
}

func (r *RecordRepository) UpdateTagText(ctx context.Context, id int64, text string) error {
	return r.updateField(ctx, id, "tag_text", text)
}

func (r *RecordRepository) UpdateImageVector(ctx context.Context, id int64, vec []float32) error {
	return r.updateField(ctx, id, "image_vector", pgvector.NewVector(vec))
}

func (r *RecordRepository) UpdateAllTextVector(ctx context.Context, id int64, vec []float32) error {
	return r.updateField(ctx, id, "all_text_vector", pgvector.NewVector(vec))
}

// updateField writes a single column, leaving every other field alone.
func (r *RecordRepository) updateField(ctx context.Context, id int64, column string, value any) error {
	query := fmt.Sprintf("UPDATE photo_records SET %s = $2, updated_at = NOW() WHERE id = $1", column)
	if _, err := r.pool.Exec(ctx, query, id, value); err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return nil
}

// Verify interface compliance
var _ store.RecordReader = (*RecordRepository)(nil)
var _ store.RecordWriter = (*RecordRepository)(nil)

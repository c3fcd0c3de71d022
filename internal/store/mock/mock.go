// Package mock provides an in-memory implementation of the store
// interfaces for testing.
package mock

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/photo-librarian/internal/store"
)

// RecordStore is a mock implementation of store.RecordWriter.
type RecordStore struct {
	mu      sync.RWMutex
	records map[int64]*store.Record
	nextID  int64

	// Error injection
	FindByPathError    error
	FindByHashError    error
	CountError         error
	ScanBatchError     error
	SearchImageError   error
	SearchAllTextError error
	InsertError        error
	DeleteError        error
	UpdateError        error
}

// NewRecordStore creates an empty mock record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[int64]*store.Record),
		nextID:  1,
	}
}

// AddRecord seeds the store with a record. A zero ID is assigned
// automatically. Returns the stored record's ID.
func (m *RecordStore) AddRecord(rec store.Record) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == 0 {
		rec.ID = m.nextID
	}
	if rec.ID >= m.nextID {
		m.nextID = rec.ID + 1
	}
	if rec.FileName == "" {
		rec.FileName = filepath.Base(rec.FilePath)
	}
	m.records[rec.ID] = &rec
	return rec.ID
}

// Get returns a copy of the record with the given id, or nil.
func (m *RecordStore) Get(id int64) *store.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// FindByPath retrieves a record by file path, returns nil if not found
func (m *RecordStore) FindByPath(ctx context.Context, path string) (*store.Record, error) {
	if m.FindByPathError != nil {
		return nil, m.FindByPathError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if rec.FilePath == path {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

// FindByHash retrieves a record by content hash, returns nil if not found
func (m *RecordStore) FindByHash(ctx context.Context, hash string) (*store.Record, error) {
	if m.FindByHashError != nil {
		return nil, m.FindByHashError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if rec.SHA256 == hash {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

// Count returns the total number of records
func (m *RecordStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// ScanBatch returns up to batchSize records with id > afterID, ascending.
func (m *RecordStore) ScanBatch(ctx context.Context, afterID int64, batchSize int) ([]store.Record, error) {
	if m.ScanBatchError != nil {
		return nil, m.ScanBatchError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []store.Record
	for _, rec := range m.records {
		if rec.ID > afterID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > batchSize {
		out = out[:batchSize]
	}
	return out, nil
}

// SearchByImageVector ranks records by cosine distance in the multimodal space.
func (m *RecordStore) SearchByImageVector(ctx context.Context, vec []float32, minSimilarity float64, limit int) ([]store.SimilarityResult, error) {
	if m.SearchImageError != nil {
		return nil, m.SearchImageError
	}
	return m.search(vec, minSimilarity, limit, func(rec *store.Record) []float32 {
		return rec.ImageVector
	}), nil
}

// SearchByAllTextVector ranks records by cosine distance in the text space.
func (m *RecordStore) SearchByAllTextVector(ctx context.Context, vec []float32, minSimilarity float64, limit int) ([]store.SimilarityResult, error) {
	if m.SearchAllTextError != nil {
		return nil, m.SearchAllTextError
	}
	return m.search(vec, minSimilarity, limit, func(rec *store.Record) []float32 {
		return rec.AllTextVector
	}), nil
}

func (m *RecordStore) search(vec []float32, minSimilarity float64, limit int, field func(*store.Record) []float32) []store.SimilarityResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []store.SimilarityResult
	for _, rec := range m.records {
		stored := field(rec)
		if stored == nil {
			continue
		}
		dist := store.CosineDistance(vec, stored)
		if minSimilarity > 0 && dist >= 1-minSimilarity {
			continue
		}
		results = append(results, store.SimilarityResult{
			FilePath:       rec.FilePath,
			FileName:       rec.FileName,
			SHA256:         rec.SHA256,
			CosineDistance: dist,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CosineDistance < results[j].CosineDistance
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Insert creates a record with all optional fields null.
func (m *RecordStore) Insert(ctx context.Context, path, hash string, modified time.Time) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	rec := &store.Record{
		ID:           m.nextID,
		CreatedAt:    now,
		UpdatedAt:    now,
		FileModified: modified,
		FilePath:     path,
		FileName:     filepath.Base(path),
		FileDir:      filepath.Dir(path),
		SHA256:       hash,
	}
	m.records[rec.ID] = rec
	m.nextID++
	return nil
}

// DeleteByPath removes the record for the given path.
func (m *RecordStore) DeleteByPath(ctx context.Context, path string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rec := range m.records {
		if rec.FilePath == path {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *RecordStore) UpdateOCRText(ctx context.Context, id int64, text string) error {
	return m.update(id, func(rec *store.Record) {
		rec.OCRText = &text
	})
}

func (m *RecordStore) UpdateTagText(ctx context.Context, id int64, text string) error {
	return m.update(id, func(rec *store.Record) {
		rec.TagText = &text
	})
}

func (m *RecordStore) UpdateImageVector(ctx context.Context, id int64, vec []float32) error {
	return m.update(id, func(rec *store.Record) {
		rec.ImageVector = vec
	})
}

func (m *RecordStore) UpdateAllTextVector(ctx context.Context, id int64, vec []float32) error {
	return m.update(id, func(rec *store.Record) {
		rec.AllTextVector = vec
	})
}

func (m *RecordStore) update(id int64, apply func(*store.Record)) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil
	}
	apply(rec)
	rec.UpdatedAt = time.Now()
	return nil
}

// Verify interface compliance
var _ store.RecordReader = (*RecordStore)(nil)
var _ store.RecordWriter = (*RecordStore)(nil)

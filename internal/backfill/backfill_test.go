package backfill

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/photo-librarian/internal/identity"
	"github.com/kozaktomas/photo-librarian/internal/store"
	"github.com/kozaktomas/photo-librarian/internal/store/mock"
)

type fakeRecognizer struct {
	fragments []string
	err       error
	calls     int
}

func (f *fakeRecognizer) RecognizeText(ctx context.Context, imageData []byte) ([]string, error) {
	f.calls++
	return f.fragments, f.err
}

type fakeMultimodal struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeMultimodal) EmbedImage(ctx context.Context, imageData []byte) ([]float32, error) {
	f.calls++
	return f.vec, f.err
}

func (f *fakeMultimodal) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

type fakeTextEmbedder struct {
	vec     []float32
	err     error
	queries []string
}

func (f *fakeTextEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.queries = append(f.queries, text)
	return f.vec, f.err
}

// recordingJob notes every record id it sees.
type recordingJob struct {
	seen   []int64
	failOn int64
}

func (j *recordingJob) Name() string { return "recording" }

func (j *recordingJob) Process(ctx context.Context, rec store.Record, force bool) (Outcome, error) {
	j.seen = append(j.seen, rec.ID)
	if rec.ID == j.failOn {
		return OutcomeFailed, errors.New("boom")
	}
	return OutcomeUpdated, nil
}

func seedRecords(st *mock.RecordStore, n int) {
	for i := 0; i < n; i++ {
		st.AddRecord(store.Record{
			FilePath: filepath.Join("/photos", "p"+string(rune('a'+i))+".jpg"),
			SHA256:   "hash" + string(rune('a'+i)),
		})
	}
}

func TestRunner_VisitsEveryRecordInOrder(t *testing.T) {
	st := mock.NewRecordStore()
	seedRecords(st, 7)

	runner := NewRunner(st, nil)
	runner.batchSize = 3
	job := &recordingJob{}

	summary, err := runner.Run(context.Background(), job, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Processed != 7 {
		t.Errorf("expected 7 processed, got %d", summary.Processed)
	}
	if len(job.seen) != 7 {
		t.Fatalf("expected 7 visits, got %d", len(job.seen))
	}
	for i := 1; i < len(job.seen); i++ {
		if job.seen[i] <= job.seen[i-1] {
			t.Error("records not visited in ascending id order")
		}
	}
}

func TestRunner_ResumeSkipsRecordsAtOrBelowCursor(t *testing.T) {
	st := mock.NewRecordStore()
	seedRecords(st, 6)

	runner := NewRunner(st, nil)
	runner.batchSize = 2
	job := &recordingJob{}

	summary, err := runner.Resume(context.Background(), job, false, 3)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}

	if summary.Processed != 3 {
		t.Errorf("expected 3 processed after cursor 3, got %d", summary.Processed)
	}
	for _, id := range job.seen {
		if id <= 3 {
			t.Errorf("revisited record %d at or below cursor", id)
		}
	}
}

func TestRunner_PerItemFailureContinues(t *testing.T) {
	st := mock.NewRecordStore()
	seedRecords(st, 4)

	runner := NewRunner(st, nil)
	job := &recordingJob{failOn: 2}

	summary, err := runner.Run(context.Background(), job, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", summary.Failed)
	}
	if summary.Processed != 4 {
		t.Errorf("failure must not stop the batch, processed %d of 4", summary.Processed)
	}
}

func TestRunner_ScanErrorIsFatal(t *testing.T) {
	st := mock.NewRecordStore()
	st.ScanBatchError = errors.New("connection refused")

	runner := NewRunner(st, nil)
	if _, err := runner.Run(context.Background(), &recordingJob{}, false); err == nil {
		t.Error("expected scan error to abort the run")
	}
}

func writeRecordFile(t *testing.T, st *mock.RecordStore, name, content string) int64 {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	hash, err := identity.HashFile(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return st.AddRecord(store.Record{FilePath: path, SHA256: hash, FileModified: time.Now()})
}

func TestOCRJob(t *testing.T) {
	ctx := context.Background()

	t.Run("updates empty record", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := writeRecordFile(t, st, "a.jpg", "image-bytes")
		rec := st.Get(id)

		job := NewOCRJob(st, &fakeRecognizer{fragments: []string{"stop", "sign"}})
		outcome, err := job.Process(ctx, *rec, false)
		if err != nil || outcome != OutcomeUpdated {
			t.Fatalf("expected update, got %v / %v", outcome, err)
		}

		got := st.Get(id)
		if got.OCRText == nil || *got.OCRText != "stop, sign" {
			t.Errorf("unexpected stored text: %v", got.OCRText)
		}
	})

	t.Run("no readable text stores empty string", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := writeRecordFile(t, st, "a.jpg", "image-bytes")
		rec := st.Get(id)

		job := NewOCRJob(st, &fakeRecognizer{fragments: nil})
		outcome, err := job.Process(ctx, *rec, false)
		if err != nil || outcome != OutcomeUpdated {
			t.Fatalf("expected update, got %v / %v", outcome, err)
		}

		got := st.Get(id)
		if got.OCRText == nil || *got.OCRText != "" {
			t.Error("expected empty string to mark the record as processed")
		}
	})

	t.Run("skips populated without force", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := writeRecordFile(t, st, "a.jpg", "image-bytes")
		st.UpdateOCRText(ctx, id, "already here")
		rec := st.Get(id)

		recognizer := &fakeRecognizer{fragments: []string{"new"}}
		job := NewOCRJob(st, recognizer)

		outcome, _ := job.Process(ctx, *rec, false)
		if outcome != OutcomeSkippedPopulated {
			t.Errorf("expected populated skip, got %v", outcome)
		}
		if recognizer.calls != 0 {
			t.Error("recognizer must not run for populated records")
		}

		outcome, _ = job.Process(ctx, *rec, true)
		if outcome != OutcomeUpdated {
			t.Errorf("expected force to refresh, got %v", outcome)
		}
	})

	t.Run("missing file fails the item", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := st.AddRecord(store.Record{FilePath: "/nope/gone.jpg", SHA256: "x"})
		rec := st.Get(id)

		job := NewOCRJob(st, &fakeRecognizer{})
		outcome, err := job.Process(ctx, *rec, false)
		if err == nil || outcome != OutcomeFailed {
			t.Errorf("expected failure for missing file, got %v / %v", outcome, err)
		}
	})
}

func TestImageVectorJob(t *testing.T) {
	ctx := context.Background()
	st := mock.NewRecordStore()
	id := writeRecordFile(t, st, "a.jpg", "image-bytes")
	rec := st.Get(id)

	embedder := &fakeMultimodal{vec: []float32{0.1, 0.2}}
	job := NewImageVectorJob(st, embedder)

	outcome, err := job.Process(ctx, *rec, false)
	if err != nil || outcome != OutcomeUpdated {
		t.Fatalf("expected update, got %v / %v", outcome, err)
	}
	if got := st.Get(id); len(got.ImageVector) != 2 {
		t.Error("image vector not stored")
	}

	// Populated now, second pass skips.
	outcome, _ = job.Process(ctx, *st.Get(id), false)
	if outcome != OutcomeSkippedPopulated {
		t.Errorf("expected populated skip, got %v", outcome)
	}
}

func TestTextVectorJob(t *testing.T) {
	ctx := context.Background()

	t.Run("dependency skip before ocr", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := st.AddRecord(store.Record{FilePath: "/photos/a.jpg", SHA256: "x"})

		embedder := &fakeTextEmbedder{vec: []float32{1}}
		job := NewTextVectorJob(st, embedder)

		outcome, err := job.Process(ctx, *st.Get(id), false)
		if err != nil || outcome != OutcomeSkippedDependency {
			t.Errorf("expected dependency skip, got %v / %v", outcome, err)
		}
		if len(embedder.queries) != 0 {
			t.Error("embedder must not run before OCR")
		}
	})

	t.Run("embeds tag text first", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := st.AddRecord(store.Record{FilePath: "/photos/a.jpg", SHA256: "x"})
		st.UpdateOCRText(ctx, id, "menu prices")
		st.UpdateTagText(ctx, id, "restaurant, rome")

		embedder := &fakeTextEmbedder{vec: []float32{1}}
		job := NewTextVectorJob(st, embedder)

		outcome, err := job.Process(ctx, *st.Get(id), false)
		if err != nil || outcome != OutcomeUpdated {
			t.Fatalf("expected update, got %v / %v", outcome, err)
		}
		if len(embedder.queries) != 1 || embedder.queries[0] != "restaurant, rome, menu prices" {
			t.Errorf("unexpected embedded text: %v", embedder.queries)
		}
		if got := st.Get(id); got.AllTextVector == nil {
			t.Error("text vector not stored")
		}
	})

	t.Run("empty ocr still embeds", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := st.AddRecord(store.Record{FilePath: "/photos/a.jpg", SHA256: "x"})
		st.UpdateOCRText(ctx, id, "")

		embedder := &fakeTextEmbedder{vec: []float32{1}}
		job := NewTextVectorJob(st, embedder)

		outcome, err := job.Process(ctx, *st.Get(id), false)
		if err != nil || outcome != OutcomeUpdated {
			t.Errorf("expected update for empty OCR text, got %v / %v", outcome, err)
		}
	})
}

func TestCleanupJob(t *testing.T) {
	ctx := context.Background()

	complete := func(st *mock.RecordStore, id int64) {
		st.UpdateOCRText(ctx, id, "text")
		st.UpdateImageVector(ctx, id, []float32{1})
		st.UpdateAllTextVector(ctx, id, []float32{1})
	}

	t.Run("keeps healthy record", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := writeRecordFile(t, st, "a.jpg", "bytes")
		complete(st, id)

		job := NewCleanupJob(st)
		outcome, err := job.Process(ctx, *st.Get(id), false)
		if err != nil || outcome != OutcomeKept {
			t.Errorf("expected keep, got %v / %v", outcome, err)
		}
	})

	t.Run("deletes when file is missing", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := st.AddRecord(store.Record{FilePath: "/gone/a.jpg", SHA256: "x"})

		job := NewCleanupJob(st)
		outcome, err := job.Process(ctx, *st.Get(id), false)
		if err != nil || outcome != OutcomeDeleted {
			t.Fatalf("expected delete, got %v / %v", outcome, err)
		}
		if st.Get(id) != nil {
			t.Error("record still present")
		}
	})

	t.Run("deletes on hash mismatch", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := writeRecordFile(t, st, "a.jpg", "bytes")
		complete(st, id)
		rec := st.Get(id)
		if err := os.WriteFile(rec.FilePath, []byte("different bytes"), 0o644); err != nil {
			t.Fatalf("overwrite: %v", err)
		}

		job := NewCleanupJob(st)
		outcome, err := job.Process(ctx, *rec, false)
		if err != nil || outcome != OutcomeDeleted {
			t.Errorf("expected delete on mismatch, got %v / %v", outcome, err)
		}
	})

	t.Run("deletes incomplete record", func(t *testing.T) {
		st := mock.NewRecordStore()
		id := writeRecordFile(t, st, "a.jpg", "bytes")
		// OCR text set but vectors never computed.
		st.UpdateOCRText(ctx, id, "text")

		job := NewCleanupJob(st)
		outcome, err := job.Process(ctx, *st.Get(id), false)
		if err != nil || outcome != OutcomeDeleted {
			t.Errorf("expected delete for incomplete record, got %v / %v", outcome, err)
		}
	})
}

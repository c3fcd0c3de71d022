package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/search"
	"github.com/kozaktomas/photo-librarian/internal/store"
	"github.com/kozaktomas/photo-librarian/internal/store/mock"
)

type fakeMultimodal struct {
	vec []float32
	err error
}

func (f *fakeMultimodal) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

func (f *fakeMultimodal) EmbedImage(ctx context.Context, imageData []byte) ([]float32, error) {
	return f.vec, f.err
}

type fakeTextEmbedder struct {
	vec []float32
	err error
}

func (f *fakeTextEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

type fakeRecognizer struct{}

func (f *fakeRecognizer) RecognizeText(ctx context.Context, imageData []byte) ([]string, error) {
	return []string{"sign"}, nil
}

func testServer(t *testing.T, st *mock.RecordStore, multimodalErr error) *Server {
	t.Helper()
	cfg := &config.Config{
		Search: config.SearchConfig{Limit: 16, MinSimilarity: 0},
		Web:    config.WebConfig{ListenAddr: ":0"},
	}
	engine := search.New(
		st,
		&fakeMultimodal{vec: []float32{1, 0}, err: multimodalErr},
		&fakeTextEmbedder{vec: []float32{1, 0}},
		&fakeRecognizer{},
		nil,
		nil,
	)
	return NewServer(cfg, engine, st, nil)
}

func seededStore() *mock.RecordStore {
	st := mock.NewRecordStore()
	st.AddRecord(store.Record{
		FilePath:      "/photos/cat.jpg",
		SHA256:        "hash-cat",
		ImageVector:   []float32{1, 0},
		AllTextVector: []float32{1, 0},
	})
	return st
}

func TestHealth(t *testing.T) {
	srv := testServer(t, seededStore(), nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestStats(t *testing.T) {
	srv := testServer(t, seededStore(), nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["records"] != 1 {
		t.Errorf("expected 1 record, got %d", body["records"])
	}
}

func TestSearchText(t *testing.T) {
	srv := testServer(t, seededStore(), nil)

	payload := `{"query": "cat", "min_similarity": 0.5, "limit": 8}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/text", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body resultsJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Multimodal) != 1 || body.Multimodal[0].FilePath != "/photos/cat.jpg" {
		t.Errorf("unexpected multimodal results: %+v", body.Multimodal)
	}
	if len(body.Text) != 1 {
		t.Errorf("unexpected text results: %+v", body.Text)
	}
}

func TestSearchText_MissingQuery(t *testing.T) {
	srv := testServer(t, seededStore(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/text", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSearchText_EngineFailureYieldsEmptyResults(t *testing.T) {
	srv := testServer(t, seededStore(), errors.New("model down"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/text", strings.NewReader(`{"query":"cat"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("search failures must not surface as errors, got %d", rec.Code)
	}
	var body resultsJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Multimodal) != 0 || len(body.Text) != 0 {
		t.Errorf("expected empty result lists, got %+v", body)
	}
}

func TestSearchImage(t *testing.T) {
	srv := testServer(t, seededStore(), nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "query.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
	writer.WriteField("limit", "4")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body resultsJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Multimodal) != 1 {
		t.Errorf("unexpected multimodal results: %+v", body.Multimodal)
	}
}

func TestSearchImage_MissingFile(t *testing.T) {
	srv := testServer(t, seededStore(), nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("limit", "4")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

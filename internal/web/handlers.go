package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/search"
	"github.com/kozaktomas/photo-librarian/internal/store"
)

const maxUploadSize = 32 << 20 // 32 MB

type searchHandlers struct {
	engine   *search.Engine
	records  store.RecordReader
	defaults config.SearchConfig
	log      *zap.Logger
}

type resultJSON struct {
	FilePath       string  `json:"file_path"`
	FileName       string  `json:"file_name"`
	SHA256         string  `json:"sha256"`
	CosineDistance float64 `json:"cosine_distance"`
}

type resultsJSON struct {
	Multimodal       []resultJSON `json:"multimodal"`
	Text             []resultJSON `json:"text"`
	BlendedImagePath string       `json:"blended_image_path,omitempty"`
}

func (h *searchHandlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *searchHandlers) stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.records.Count(r.Context())
	if err != nil {
		h.log.Error("could not count records", zap.Error(err))
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"records": count})
}

type textSearchRequest struct {
	Query         string   `json:"query"`
	MinSimilarity *float64 `json:"min_similarity,omitempty"`
	Limit         *int     `json:"limit,omitempty"`
}

func (h *searchHandlers) searchText(w http.ResponseWriter, r *http.Request) {
	var req textSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	minSim, limit := h.params(req.MinSimilarity, req.Limit)
	res, err := h.engine.ByText(r.Context(), req.Query, minSim, limit)
	h.respond(w, res, err)
}

func (h *searchHandlers) searchImage(w http.ResponseWriter, r *http.Request) {
	imageData, minSim, limit, ok := h.imageForm(w, r)
	if !ok {
		return
	}

	res, err := h.engine.ByImage(r.Context(), imageData, minSim, limit)
	h.respond(w, res, err)
}

func (h *searchHandlers) searchFused(w http.ResponseWriter, r *http.Request) {
	imageData, minSim, limit, ok := h.imageForm(w, r)
	if !ok {
		return
	}
	prompt := r.FormValue("prompt")
	if prompt == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	res, err := h.engine.ByTextAndImage(r.Context(), prompt, imageData, minSim, limit)
	h.respond(w, res, err)
}

// imageForm reads the uploaded query image and optional search
// parameters from a multipart form.
func (h *searchHandlers) imageForm(w http.ResponseWriter, r *http.Request) (data []byte, minSim float64, limit int, ok bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return nil, 0, 0, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return nil, 0, 0, false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		http.Error(w, "could not read file", http.StatusBadRequest)
		return nil, 0, 0, false
	}

	var minSimPtr *float64
	if v := r.FormValue("min_similarity"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			minSimPtr = &f
		}
	}
	var limitPtr *int
	if v := r.FormValue("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limitPtr = &n
		}
	}

	minSim, limit = h.params(minSimPtr, limitPtr)
	return data, minSim, limit, true
}

func (h *searchHandlers) params(minSim *float64, limit *int) (float64, int) {
	s := h.defaults.MinSimilarity
	if minSim != nil && *minSim >= 0 && *minSim <= 1 {
		s = *minSim
	}
	l := h.defaults.Limit
	if limit != nil && *limit > 0 {
		l = *limit
	}
	return s, l
}

// respond renders search results. A failed search is logged and shows
// up as an empty result set instead of an error status.
func (h *searchHandlers) respond(w http.ResponseWriter, res *search.Results, err error) {
	if err != nil {
		h.log.Error("search failed", zap.Error(err))
		writeJSON(w, http.StatusOK, resultsJSON{
			Multimodal: []resultJSON{},
			Text:       []resultJSON{},
		})
		return
	}

	writeJSON(w, http.StatusOK, resultsJSON{
		Multimodal:       toJSON(res.Multimodal),
		Text:             toJSON(res.Text),
		BlendedImagePath: res.BlendedImagePath,
	})
}

func toJSON(results []store.SimilarityResult) []resultJSON {
	out := make([]resultJSON, 0, len(results))
	for _, res := range results {
		out = append(out, resultJSON{
			FilePath:       res.FilePath,
			FileName:       res.FileName,
			SHA256:         res.SHA256,
			CosineDistance: res.CosineDistance,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

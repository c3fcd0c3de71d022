package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kozaktomas/photo-librarian/internal/search"
	"github.com/kozaktomas/photo-librarian/internal/store"
)

type fakeSearcher struct {
	lastQuery string
	results   *search.Results
	err       error
}

func (f *fakeSearcher) ByText(ctx context.Context, query string, minSimilarity float64, limit int) (*search.Results, error) {
	f.lastQuery = query
	return f.results, f.err
}

func testAgent(searcher Searcher) *Agent {
	return &Agent{
		searcher:      searcher,
		minSimilarity: 0.3,
		limit:         8,
		log:           zap.NewNop(),
	}
}

func TestRunTool_Search(t *testing.T) {
	searcher := &fakeSearcher{
		results: &search.Results{
			Multimodal: []store.SimilarityResult{
				{FilePath: "/photos/beach.jpg", CosineDistance: 0.12},
			},
			Text: []store.SimilarityResult{
				{FilePath: "/photos/receipt.jpg", CosineDistance: 0.4},
			},
		},
	}
	agent := testAgent(searcher)

	out := agent.runTool(context.Background(), "search_photos", `{"query": "beach sunset"}`)

	if searcher.lastQuery != "beach sunset" {
		t.Errorf("expected query passed through, got %q", searcher.lastQuery)
	}
	var result toolResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("tool output is not valid JSON: %v", err)
	}
	if len(result.Multimodal) != 1 || result.Multimodal[0].FilePath != "/photos/beach.jpg" {
		t.Errorf("unexpected multimodal matches: %+v", result.Multimodal)
	}
	if len(result.Text) != 1 || result.Text[0].FilePath != "/photos/receipt.jpg" {
		t.Errorf("unexpected text matches: %+v", result.Text)
	}
}

func TestRunTool_UnknownTool(t *testing.T) {
	agent := testAgent(&fakeSearcher{})

	out := agent.runTool(context.Background(), "delete_photos", `{}`)

	if !strings.Contains(out, "unknown tool") {
		t.Errorf("expected unknown tool error, got %q", out)
	}
}

func TestRunTool_EmptyQuery(t *testing.T) {
	agent := testAgent(&fakeSearcher{})

	out := agent.runTool(context.Background(), "search_photos", `{"query": ""}`)

	if !strings.Contains(out, "must not be empty") {
		t.Errorf("expected empty query error, got %q", out)
	}
}

func TestRunTool_SearchErrorReportedToModel(t *testing.T) {
	agent := testAgent(&fakeSearcher{err: errors.New("store offline")})

	out := agent.runTool(context.Background(), "search_photos", `{"query": "cats"}`)

	if !strings.Contains(out, "search failed") {
		t.Errorf("expected search error in tool output, got %q", out)
	}
}

func TestFormatToolResult_EmptyLists(t *testing.T) {
	out := formatToolResult(&search.Results{})

	var result toolResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("tool output is not valid JSON: %v", err)
	}
	if len(result.Multimodal) != 0 || len(result.Text) != 0 {
		t.Errorf("expected empty lists, got %+v", result)
	}
}

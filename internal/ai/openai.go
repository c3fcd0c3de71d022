package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAITextEmbedder embeds text into the text-only vector space using
// the OpenAI embeddings API.
type OpenAITextEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAITextEmbedder creates a text embedder. An empty baseURL uses
// the default OpenAI endpoint; set it to target a compatible server.
func NewOpenAITextEmbedder(apiKey, baseURL, model string) *OpenAITextEmbedder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAITextEmbedder{
		client: &client,
		model:  model,
	}
}

// Embed computes the text embedding for the given string.
func (e *OpenAITextEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings API error: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Model returns the model name being used.
func (e *OpenAITextEmbedder) Model() string {
	return e.model
}

// Verify interface compliance
var _ TextEmbedder = (*OpenAITextEmbedder)(nil)

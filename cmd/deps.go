package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/photo-librarian/internal/ai"
	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/store/postgres"
)

// openDatabase connects to PostgreSQL and runs pending migrations.
// The returned pool must be closed by the caller.
func openDatabase(cfg *config.Config) (*postgres.Pool, *postgres.RecordRepository, error) {
	if cfg.Database.URL == "" {
		return nil, nil, errors.New("DATABASE_URL environment variable is required")
	}
	pool, err := postgres.Connect(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, postgres.NewRecordRepository(pool), nil
}

func newClipClient(cfg *config.Config) *ai.ClipClient {
	return ai.NewClipClient(cfg.Clip.URL)
}

func newTextEmbedder(cfg *config.Config) (*ai.OpenAITextEmbedder, error) {
	if cfg.OpenAI.Token == "" {
		return nil, errors.New("OPENAI_TOKEN environment variable is required")
	}
	return ai.NewOpenAITextEmbedder(cfg.OpenAI.Token, cfg.OpenAI.BaseURL, cfg.Models.OpenAI.Embedding), nil
}

func newGeminiClient(ctx context.Context, cfg *config.Config) (*ai.GeminiClient, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}
	client, err := ai.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Models.Gemini.OCR, cfg.Models.Gemini.Blend)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

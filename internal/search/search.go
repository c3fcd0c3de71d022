// Package search runs similarity queries against the record store. Each
// request fans out into the two vector spaces and returns one ranked
// list per space; the lists are never merged across spaces.
package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kozaktomas/photo-librarian/internal/ai"
	"github.com/kozaktomas/photo-librarian/internal/store"
	"github.com/kozaktomas/photo-librarian/internal/tags"
)

// Results holds one ranked list per vector space. Both lists are sorted
// by ascending cosine distance.
type Results struct {
	// Multimodal is ranked in the shared image/text vector space.
	Multimodal []store.SimilarityResult
	// Text is ranked in the text-only vector space.
	Text []store.SimilarityResult
	// BlendedImagePath points at the query artifact generated for a
	// fused search, empty otherwise.
	BlendedImagePath string
}

// Engine answers similarity queries.
type Engine struct {
	store      store.RecordReader
	multimodal ai.MultimodalEmbedder
	text       ai.TextEmbedder
	recognizer ai.Recognizer
	generator  ai.ImageGenerator
	log        *zap.Logger
}

// New creates a search engine. The recognizer and generator may be nil
// when image and fused searches are not needed.
func New(st store.RecordReader, multimodal ai.MultimodalEmbedder, text ai.TextEmbedder, recognizer ai.Recognizer, generator ai.ImageGenerator, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:      st,
		multimodal: multimodal,
		text:       text,
		recognizer: recognizer,
		generator:  generator,
		log:        log,
	}
}

// ByText searches both vector spaces with a text query.
func (e *Engine) ByText(ctx context.Context, query string, minSimilarity float64, limit int) (*Results, error) {
	res := &Results{}
	err := e.parallel(
		func() error {
			var err error
			res.Multimodal, err = e.searchMultimodalText(ctx, query, minSimilarity, limit)
			return err
		},
		func() error {
			var err error
			res.Text, err = e.searchText(ctx, query, minSimilarity, limit)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ByImage searches with a query image: the multimodal space gets the
// image's embedding, the text space gets an embedding of the text read
// off the image.
func (e *Engine) ByImage(ctx context.Context, imageData []byte, minSimilarity float64, limit int) (*Results, error) {
	if e.recognizer == nil {
		return nil, errors.New("no text recognizer configured")
	}

	res := &Results{}
	err := e.parallel(
		func() error {
			vec, err := e.multimodal.EmbedImage(ctx, imageData)
			if err != nil {
				return fmt.Errorf("embed query image: %w", err)
			}
			res.Multimodal, err = e.store.SearchByImageVector(ctx, vec, minSimilarity, limit)
			if err != nil {
				return fmt.Errorf("search multimodal space: %w", err)
			}
			return nil
		},
		func() error {
			fragments, err := e.recognizer.RecognizeText(ctx, imageData)
			if err != nil {
				return fmt.Errorf("recognize query image text: %w", err)
			}
			// Empty recognized text still embeds as the empty string.
			query := strings.Join(fragments, ", ")
			res.Text, err = e.searchText(ctx, query, minSimilarity, limit)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ByTextAndImage blends the prompt with the query image into a new
// image and searches with that artifact: its embedding in the
// multimodal space, the prompt joined with the image's recognized text
// in the text space. The generated image is kept on disk so the caller
// can inspect what was actually searched for.
func (e *Engine) ByTextAndImage(ctx context.Context, prompt string, imageData []byte, minSimilarity float64, limit int) (*Results, error) {
	if e.generator == nil {
		return nil, errors.New("no image generator configured")
	}
	if e.recognizer == nil {
		return nil, errors.New("no text recognizer configured")
	}

	blended, err := e.generator.Blend(ctx, prompt, imageData)
	if err != nil {
		return nil, fmt.Errorf("blend query image: %w", err)
	}

	artifact, err := saveArtifact(blended)
	if err != nil {
		e.log.Warn("could not save blended query image", zap.Error(err))
	}

	res := &Results{BlendedImagePath: artifact}
	err = e.parallel(
		func() error {
			vec, err := e.multimodal.EmbedImage(ctx, blended)
			if err != nil {
				return fmt.Errorf("embed blended image: %w", err)
			}
			res.Multimodal, err = e.store.SearchByImageVector(ctx, vec, minSimilarity, limit)
			if err != nil {
				return fmt.Errorf("search multimodal space: %w", err)
			}
			return nil
		},
		func() error {
			fragments, err := e.recognizer.RecognizeText(ctx, imageData)
			if err != nil {
				return fmt.Errorf("recognize query image text: %w", err)
			}
			query := tags.JoinAllText(prompt, strings.Join(fragments, ", "))
			res.Text, err = e.searchText(ctx, query, minSimilarity, limit)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) searchMultimodalText(ctx context.Context, query string, minSimilarity float64, limit int) ([]store.SimilarityResult, error) {
	vec, err := e.multimodal.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query in multimodal space: %w", err)
	}
	results, err := e.store.SearchByImageVector(ctx, vec, minSimilarity, limit)
	if err != nil {
		return nil, fmt.Errorf("search multimodal space: %w", err)
	}
	return results, nil
}

func (e *Engine) searchText(ctx context.Context, query string, minSimilarity float64, limit int) ([]store.SimilarityResult, error) {
	vec, err := e.text.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query in text space: %w", err)
	}
	results, err := e.store.SearchByAllTextVector(ctx, vec, minSimilarity, limit)
	if err != nil {
		return nil, fmt.Errorf("search text space: %w", err)
	}
	return results, nil
}

// parallel runs both space queries concurrently and joins their errors.
func (e *Engine) parallel(fns ...func() error) error {
	errs := make([]error, len(fns))
	var wg sync.WaitGroup
	for i, fn := range fns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fn()
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func saveArtifact(data []byte) (string, error) {
	f, err := os.CreateTemp("", "blended-query-*.jpg")
	if err != nil {
		return "", fmt.Errorf("create artifact file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("write artifact file: %w", err)
	}
	return f.Name(), nil
}

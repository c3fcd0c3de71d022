package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-librarian/internal/ai"
	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/search"
	"github.com/kozaktomas/photo-librarian/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the photo library",
	Long: `Search the photo library by text, by example image, or by both.
Every search returns two ranked lists: one from the multimodal vector
space and one from the text vector space. With both --text and --image
the query image is blended with the prompt into a new image first.`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("text", "", "Text query")
	searchCmd.Flags().String("image", "", "Path to a query image")
	searchCmd.Flags().Float64("min-similarity", 0, "Minimum cosine similarity, 0 disables the floor")
	searchCmd.Flags().Int("limit", 0, "Maximum results per vector space (0 = configured default)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	text := mustGetString(cmd, "text")
	imagePath := mustGetString(cmd, "image")
	if text == "" && imagePath == "" {
		return errors.New("provide --text, --image, or both")
	}

	cfg := config.Load()
	pool, records, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := signalContext()
	defer cancel()

	minSim := mustGetFloat64(cmd, "min-similarity")
	if minSim == 0 {
		minSim = cfg.Search.MinSimilarity
	}
	limit := mustGetInt(cmd, "limit")
	if limit <= 0 {
		limit = cfg.Search.Limit
	}

	engine, err := buildEngine(ctx, cfg, records, imagePath != "")
	if err != nil {
		return err
	}

	var results *search.Results
	switch {
	case text != "" && imagePath != "":
		imageData, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("failed to read query image: %w", err)
		}
		results, err = engine.ByTextAndImage(ctx, text, imageData, minSim, limit)
		if err != nil {
			return err
		}
	case imagePath != "":
		imageData, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("failed to read query image: %w", err)
		}
		results, err = engine.ByImage(ctx, imageData, minSim, limit)
		if err != nil {
			return err
		}
	default:
		results, err = engine.ByText(ctx, text, minSim, limit)
		if err != nil {
			return err
		}
	}

	printResults(results)
	return nil
}

// buildEngine wires the providers a search needs. The Gemini client is
// only created when an image is part of the query.
func buildEngine(ctx context.Context, cfg *config.Config, records store.RecordReader, withImage bool) (*search.Engine, error) {
	embedder, err := newTextEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	var recognizer ai.Recognizer
	var generator ai.ImageGenerator
	if withImage {
		gemini, err := newGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		recognizer = gemini
		generator = gemini
	}

	return search.New(records, newClipClient(cfg), embedder, recognizer, generator, nil), nil
}

func printResults(results *search.Results) {
	if results.BlendedImagePath != "" {
		fmt.Printf("Blended query image: %s\n\n", results.BlendedImagePath)
	}
	printRanked("Multimodal space", results.Multimodal)
	fmt.Println()
	printRanked("Text space", results.Text)
}

func printRanked(title string, results []store.SimilarityResult) {
	fmt.Printf("%s (%d results):\n", title, len(results))
	if len(results) == 0 {
		fmt.Println("  no matches")
		return
	}
	for i, res := range results {
		fmt.Printf("  %2d. %.4f  %s\n", i+1, res.CosineDistance, res.FilePath)
	}
}

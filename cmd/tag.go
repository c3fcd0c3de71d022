package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/tags"
)

var tagCmd = &cobra.Command{
	Use:   "tag [photo-path] [tags]",
	Short: "Set a photo's tags and refresh its all-text vector",
	Long: `Set the tag text of a registered photo. Tags are a comma separated
list and are normalized: lowercased, diacritics removed, duplicates
dropped. The photo's all-text vector is re-embedded from the new tags
joined with its recognized text.`,
	Args: cobra.ExactArgs(2),
	RunE: runTag,
}

func init() {
	rootCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	path := args[0]
	normalized := tags.Normalize(args[1])

	cfg := config.Load()
	pool, records, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := signalContext()
	defer cancel()

	rec, err := records.FindByPath(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to look up photo: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("photo not registered: %s", path)
	}

	if err := records.UpdateTagText(ctx, rec.ID, normalized); err != nil {
		return fmt.Errorf("failed to update tags: %w", err)
	}
	fmt.Printf("Tags set: %s\n", normalized)

	if rec.OCRText == nil {
		fmt.Println("No recognized text yet, run \"backfill ocr\" and \"backfill text-vector\" to build the all-text vector.")
		return nil
	}

	embedder, err := newTextEmbedder(cfg)
	if err != nil {
		return err
	}
	vec, err := embedder.Embed(ctx, tags.JoinAllText(normalized, *rec.OCRText))
	if err != nil {
		return fmt.Errorf("failed to embed all-text: %w", err)
	}
	if err := records.UpdateAllTextVector(ctx, rec.ID, vec); err != nil {
		return fmt.Errorf("failed to update all-text vector: %w", err)
	}
	fmt.Println("All-text vector refreshed.")
	return nil
}

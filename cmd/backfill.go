package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-librarian/internal/backfill"
	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/store"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Populate missing record fields in batches",
	Long: `Backfill walks every record in id order and fills one field at a time:
recognized text, the image vector, or the all-text vector. Populated
fields are skipped unless --force is given, so interrupted runs can
simply be restarted.`,
}

var backfillOCRCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Recognize text in photos and store it",
	RunE:  func(cmd *cobra.Command, args []string) error { return runBackfill(cmd, "ocr") },
}

var backfillImageVectorCmd = &cobra.Command{
	Use:   "image-vector",
	Short: "Compute multimodal image embeddings",
	RunE:  func(cmd *cobra.Command, args []string) error { return runBackfill(cmd, "image-vector") },
}

var backfillTextVectorCmd = &cobra.Command{
	Use:   "text-vector",
	Short: "Compute all-text embeddings from tags and recognized text",
	RunE:  func(cmd *cobra.Command, args []string) error { return runBackfill(cmd, "text-vector") },
}

func init() {
	rootCmd.AddCommand(backfillCmd)
	backfillCmd.AddCommand(backfillOCRCmd, backfillImageVectorCmd, backfillTextVectorCmd)

	backfillCmd.PersistentFlags().Bool("force", false, "Recompute fields that are already populated")
	backfillCmd.PersistentFlags().Int64("resume-after", 0, "Skip records with id at or below this value")
}

func runBackfill(cmd *cobra.Command, jobName string) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	pool, records, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := signalContext()
	defer cancel()

	job, err := buildJob(ctx, cfg, records, jobName)
	if err != nil {
		return err
	}

	force := mustGetBool(cmd, "force")
	cursor := mustGetInt64(cmd, "resume-after")

	total, err := records.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(fmt.Sprintf("Backfilling %s", job.Name())),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	runner := backfill.NewRunner(records, log)
	runner.OnItem = func(rec store.Record, outcome backfill.Outcome) { _ = bar.Add(1) }

	summary, err := runner.Resume(ctx, job, force, cursor)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	printBackfillSummary(summary)
	return nil
}

func buildJob(ctx context.Context, cfg *config.Config, records store.RecordWriter, name string) (backfill.Job, error) {
	switch name {
	case "ocr":
		gemini, err := newGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return backfill.NewOCRJob(records, gemini), nil
	case "image-vector":
		return backfill.NewImageVectorJob(records, newClipClient(cfg)), nil
	case "text-vector":
		embedder, err := newTextEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		return backfill.NewTextVectorJob(records, embedder), nil
	default:
		return nil, fmt.Errorf("unknown backfill job: %s", name)
	}
}

func printBackfillSummary(summary *backfill.Summary) {
	fmt.Printf("Processed:            %d\n", summary.Processed)
	fmt.Printf("Updated:              %d\n", summary.Updated)
	fmt.Printf("Skipped (populated):  %d\n", summary.SkippedPopulated)
	if summary.SkippedDependency > 0 {
		fmt.Printf("Skipped (dependency): %d\n", summary.SkippedDependency)
	}
	if summary.Deleted > 0 {
		fmt.Printf("Deleted:              %d\n", summary.Deleted)
	}
	if summary.Kept > 0 {
		fmt.Printf("Kept:                 %d\n", summary.Kept)
	}
	if summary.Failed > 0 {
		fmt.Printf("Failed:               %d\n", summary.Failed)
	}
}

package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-librarian/internal/backfill"
	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/store"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete records whose files are gone, changed, or incomplete",
	Long: `Cleanup walks every record and deletes those that no longer match a
file on disk: missing files, files whose content hash changed, and
records with unpopulated fields. Re-run ingest and backfill afterwards
to register the current state of the tree.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
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

	total, err := records.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Checking records"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("records"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	runner := backfill.NewRunner(records, log)
	runner.OnItem = func(rec store.Record, outcome backfill.Outcome) { _ = bar.Add(1) }

	summary, err := runner.Run(ctx, backfill.NewCleanupJob(records), false)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	printBackfillSummary(summary)
	return nil
}

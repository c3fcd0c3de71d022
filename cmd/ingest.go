package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Register photos in the database",
	Long: `Walk a directory tree and register every valid photo in the database.
Files already registered are skipped; files whose content changed are
re-registered with empty text and vector fields. Ingestion never moves
or renames files, run the rename command for that.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Ingesting photos"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSpinnerType(14),
	)

	ingester := ingest.New(records, log)
	ingester.OnFile = func(path string) { _ = bar.Add(1) }

	summary, err := ingester.Run(ctx, args[0])
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("Inserted:    %d\n", summary.Inserted)
	fmt.Printf("Unchanged:   %d\n", summary.Unchanged)
	fmt.Printf("Reinserted:  %d\n", summary.Reinserted)
	fmt.Printf("Skipped:     %d\n", summary.Skipped)
	for _, err := range summary.Errors {
		fmt.Printf("Error: %v\n", err)
	}
	if len(summary.Errors) > 0 {
		return fmt.Errorf("%d files could not be ingested", len(summary.Errors))
	}
	return nil
}

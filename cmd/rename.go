package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-librarian/internal/canonical"
)

var renameCmd = &cobra.Command{
	Use:   "rename [directory]",
	Short: "Rename photos to canonical names and quarantine duplicates",
	Long: `Rename every photo in a directory tree to its canonical name, built
from the photo's capture time and content hash. Duplicates are moved to
a quarantine directory so only the earliest copy keeps its place.`,
	Args: cobra.ExactArgs(1),
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)

	renameCmd.Flags().String("quarantine-dir", "", "Directory for quarantined duplicates and invalid files (required)")
	renameCmd.Flags().Bool("move-invalid", false, "Also move unreadable files into quarantine")
}

func runRename(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	opts := canonical.Options{
		QuarantineDir: mustGetString(cmd, "quarantine-dir"),
		MoveInvalid:   mustGetBool(cmd, "move-invalid"),
	}

	result, err := canonical.New(log).Run(args[0], opts)
	if err != nil {
		return err
	}

	fmt.Printf("Renamed:           %d\n", result.Renamed)
	fmt.Printf("Already canonical: %d\n", result.Unchanged)
	fmt.Printf("Duplicates moved:  %d\n", result.DuplicatesMoved)
	fmt.Printf("Invalid moved:     %d\n", result.InvalidsMoved)
	if result.CollisionsSolved > 0 {
		fmt.Printf("Name collisions:   %d\n", result.CollisionsSolved)
	}
	for _, err := range result.Errors {
		fmt.Printf("Error: %v\n", err)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d files could not be processed", len(result.Errors))
	}
	return nil
}

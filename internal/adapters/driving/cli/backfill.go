package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Compute missing content fingerprints",
	Long: `Hashes the stored file of every document of the owner that has no
content fingerprint yet, so it takes part in duplicate detection.`,
	Args: cobra.NoArgs,
	RunE: runBackfill,
}

func init() {
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := ensureServices(ctx); err != nil {
		return err
	}
	owner, err := requireOwner()
	if err != nil {
		return err
	}

	result, err := duplicateDetector.BackfillFingerprints(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to backfill fingerprints: %w", err)
	}

	for _, fe := range result.Errors {
		cmd.Printf("✗ %s: %v\n", fe.Name, fe.Err)
	}
	cmd.Printf("Backfilled %d of %d documents.\n", result.Updated, result.Scanned)
	return nil
}

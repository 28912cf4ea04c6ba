package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reingestCmd = &cobra.Command{
	Use:   "reingest [doc-id]",
	Short: "Re-extract, re-chunk and re-index a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runReingest,
}

func init() {
	rootCmd.AddCommand(reingestCmd)
}

func runReingest(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := ensureServices(ctx); err != nil {
		return err
	}

	res, err := ingestService.Reingest(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to reingest document: %w", err)
	}

	printIngestResult(cmd, res)
	return nil
}

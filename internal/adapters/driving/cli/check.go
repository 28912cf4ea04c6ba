package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Check a file for duplicates without storing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := ensureServices(ctx); err != nil {
		return err
	}
	owner, err := requireOwner()
	if err != nil {
		return err
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	result, err := duplicateDetector.CheckForDuplicates(ctx, f, name, owner)
	if err != nil {
		return fmt.Errorf("check %s: %w", name, err)
	}

	cmd.Println(duplicateDetector.GenerateReport(result, name))
	return nil
}

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/intake/internal/core/ports/driving"
	"github.com/custodia-labs/intake/internal/core/services"
)

var watchFolder string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files dropped into a directory",
	Long: `Watches a directory and ingests every file created in it. Files are
copied into upload storage first; the drop directory is left as is.
Stops on interrupt.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFolder, "folder", "", "Folder to place the documents in")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensureServices(ctx); err != nil {
		return err
	}
	owner, err := requireOwner()
	if err != nil {
		return err
	}

	opts := []services.WatchOption{services.WithFolder(watchFolder)}
	if stager != nil {
		opts = append(opts, services.WithStaging(stager, uploadDir))
	}

	w := services.NewWatcher(ingestService, args[0], owner, opts...)
	w.OnResult(func(path string, res *driving.IngestResult, err error) {
		if err != nil {
			cmd.Printf("✗ %s: %s\n", path, describeError(err))
			return
		}
		printIngestResult(cmd, res)
	})

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(ctx)
}

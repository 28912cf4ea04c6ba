package cli

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driving"
	"github.com/custodia-labs/intake/internal/core/services"
)

// Stager copies a local file into upload storage.
type Stager interface {
	Stage(ctx context.Context, source, dir string) (string, error)
}

// stager and uploadDir are set from the App; tests may replace them.
var (
	stager    Stager
	uploadDir string
)

// Flags for the ingest command.
var (
	ingestFolder string
	ingestMIME   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest one or more files",
	Long: `Stores each file for the owner unless a byte-identical document already
exists. Files with similar names are reported as warnings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFolder, "folder", "", "Folder to place the documents in")
	ingestCmd.Flags().StringVar(&ingestMIME, "mime", "", "MIME type for every file (default: from extension)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := ensureServices(ctx); err != nil {
		return err
	}
	owner, err := requireOwner()
	if err != nil {
		return err
	}

	uploads := make([]domain.Upload, 0, len(args))
	var failed int
	for _, path := range args {
		upload, err := stageUpload(ctx, path)
		if err != nil {
			cmd.Printf("✗ %s: %s\n", filepath.Base(path), describeError(err))
			failed++
			continue
		}
		uploads = append(uploads, upload)
	}

	var folder *string
	if ingestFolder != "" {
		folder = &ingestFolder
	}

	batch := ingestService.IngestBatch(ctx, uploads, owner, folder)
	for i := range batch.Results {
		printIngestResult(cmd, &batch.Results[i])
	}
	for _, fe := range batch.Errors {
		cmd.Printf("✗ %s: %s\n", fe.Name, describeError(fe.Err))
	}
	failed += len(batch.Errors)

	cmd.Printf("\n%d ingested, %d rejected\n", len(batch.Results), failed)
	if failed > 0 && len(batch.Results) == 0 {
		return errors.New("no files ingested")
	}
	return nil
}

// stageUpload copies path into upload storage so a rejected upload never
// removes the caller's original file.
func stageUpload(ctx context.Context, path string) (domain.Upload, error) {
	name := filepath.Base(path)
	mimeType := ingestMIME
	if mimeType == "" {
		mimeType = services.DetectMIMEType(name)
	}

	location := path
	if stager != nil {
		staged, err := stager.Stage(ctx, path, uploadDir)
		if err != nil {
			return domain.Upload{}, err
		}
		location = staged
	}

	return domain.Upload{
		Path:         location,
		OriginalName: name,
		MIMEType:     mimeType,
	}, nil
}

func printIngestResult(cmd *cobra.Command, res *driving.IngestResult) {
	indexed := "not indexed"
	if res.Indexed {
		indexed = "indexed"
	}
	cmd.Printf("✓ %s → %s (%d chunks, %s)\n", res.Document.OriginalName, res.Document.ID, res.ChunkCount, indexed)
	for _, w := range res.Warnings {
		cmd.Printf("    similar to %q (%s, %d%% similar)\n",
			w.Document.OriginalName, w.Document.ID, w.Percent())
	}
}

// Package cli implements the intake command line with cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driving"
	"github.com/custodia-labs/intake/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Global flags.
var (
	verbose   bool
	ownerID   string
	configDir string
)

// Services used by the commands. Built from configuration on first use
// unless injected with SetServices.
var (
	app               *App
	ingestService     driving.IngestService
	duplicateDetector driving.DuplicateDetector
	documentService   driving.DocumentService
	settingsService   driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Ingest documents with duplicate detection",
	Long: `intake stores uploaded documents per owner, refuses byte-identical
re-uploads, warns about near-duplicate filenames and splits the extracted
text into sentence-aligned chunks for a vector index.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print pipeline debug output")
	rootCmd.PersistentFlags().StringVar(&ownerID, "owner", defaultOwner(), "Owner the documents belong to")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.intake)")
}

// Execute runs the root command and releases any opened stores.
func Execute() error {
	defer closeApp()
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err) //nolint:errcheck
	}
	return err
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Services groups the driving ports the commands use.
type Services struct {
	Ingest    driving.IngestService
	Duplicate driving.DuplicateDetector
	Documents driving.DocumentService
	Settings  driving.SettingsService
}

// SetServices injects services, bypassing configuration.
func SetServices(s Services) {
	ingestService = s.Ingest
	duplicateDetector = s.Duplicate
	documentService = s.Documents
	settingsService = s.Settings
}

// ensureServices builds the application from configuration once.
func ensureServices(ctx context.Context) error {
	if ingestService != nil && duplicateDetector != nil && documentService != nil {
		return nil
	}
	a, err := NewApp(ctx, configDir)
	if err != nil {
		return err
	}
	app = a
	stager = a.Files
	uploadDir = a.UploadDir
	SetServices(Services{
		Ingest:    a.Ingest,
		Duplicate: a.Duplicates,
		Documents: a.Documents,
		Settings:  a.Settings,
	})
	return nil
}

func closeApp() {
	if app == nil {
		return
	}
	if err := app.Close(); err != nil {
		logger.Warn("close store: %v", err)
	}
	app = nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requireOwner() (string, error) {
	if ownerID == "" {
		return "", errors.New("no owner: pass --owner or set INTAKE_OWNER")
	}
	return ownerID, nil
}

func defaultOwner() string {
	if v := os.Getenv("INTAKE_OWNER"); v != "" {
		return v
	}
	if v := os.Getenv("USER"); v != "" {
		return v
	}
	return "local"
}

// describeError turns ingestion errors into short user-facing text.
func describeError(err error) string {
	var dup *domain.DuplicateRejectedError
	switch {
	case errors.As(err, &dup):
		return dup.Error()
	case errors.Is(err, domain.ErrIO):
		return "could not read file: " + err.Error()
	case errors.Is(err, domain.ErrStorage):
		return "storage failure: " + err.Error()
	default:
		return err.Error()
	}
}

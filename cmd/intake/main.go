// Command intake ingests documents with duplicate detection and chunking.
package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/intake/internal/adapters/driving/cli"
	"github.com/custodia-labs/intake/internal/logger"
)

// version is set at build time.
var version = "dev"

func main() {
	// A .env file is optional; the environment always wins over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("load .env: %v", err)
	}

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

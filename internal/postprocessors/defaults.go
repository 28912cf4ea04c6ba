package postprocessors

import (
	"fmt"
	"math"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
	"github.com/custodia-labs/intake/internal/postprocessors/chunker"
)

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// DefaultPipeline builds the sentence chunking pipeline. A non-positive
// maxChunkSize keeps chunker.DefaultChunkSize.
func DefaultPipeline(maxChunkSize int) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	cfg := domain.DefaultPipelineConfig()
	if maxChunkSize > 0 {
		cfg.ProcessorConfigs["chunker"]["chunk_size"] = maxChunkSize
	}
	return r.BuildPipeline(cfg)
}

// buildChunker creates the sentence chunker. Supported config keys:
//   - chunk_size (int): maximum characters per chunk, 0 or absent for the default
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	size, ok, err := intOption(cfg, "chunk_size")
	if err != nil {
		return nil, err
	}
	if !ok || size == 0 {
		return chunker.New(), nil
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrInvalidInput, size)
	}
	return chunker.New(chunker.WithChunkSize(size)), nil
}

// intOption reads an integer option. TOML decodes integers as int64 and JSON
// as float64; a fractional or non-numeric value is an error.
func intOption(cfg map[string]any, key string) (int, bool, error) {
	val, ok := cfg[key]
	if !ok {
		return 0, false, nil
	}

	switch v := val.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), true, nil
		}
	}
	return 0, false, fmt.Errorf("%w: %s must be an integer, got %v", domain.ErrInvalidInput, key, val)
}

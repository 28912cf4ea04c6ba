package driven

import (
	"context"

	"github.com/custodia-labs/intake/internal/core/domain"
)

// PostProcessor is one stage turning extracted text into chunks.
type PostProcessor interface {
	// Name identifies the stage in configuration and logs.
	Name() string

	// Process receives the chunks of the previous stage, nil for the first,
	// and returns the new set. The chunker ignores its input and splits text.
	Process(ctx context.Context, doc *domain.Document, text string, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chunks the extracted text of a document.
type PostProcessorPipeline interface {
	// Process returns the chunks for doc, positioned 0..n-1, with offsets
	// into text. Blank text yields no chunks.
	Process(ctx context.Context, doc *domain.Document, text string) ([]domain.Chunk, error)
}

// Package chunker provides a sentence-aligned text chunking processor.
package chunker

import (
	"context"
	"fmt"

	"github.com/custodia-labs/intake/internal/core/domain"
)

// DefaultChunkSize is the default maximum number of characters per chunk.
const DefaultChunkSize = domain.DefaultMaxChunkSize

// Processor splits document text into sentence-aligned chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Process splits the document text into chunks.
// Input chunks are ignored; this processor creates new chunks from the text.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, text string, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segments := Chunk(text, p.chunkSize)
	if len(segments) == 0 {
		// Empty content produces no chunks
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(segments))
	for _, seg := range segments {
		chunks = append(chunks, domain.Chunk{
			ID:          ChunkID(doc.ID, seg.Index),
			DocumentID:  doc.ID,
			Position:    seg.Index,
			Content:     seg.Text,
			WordCount:   seg.WordCount,
			StartOffset: seg.Start,
			EndOffset:   seg.End,
			Metadata: map[string]any{
				"document_name": doc.Name,
				"original_name": doc.OriginalName,
				"mime_type":     doc.MIMEType,
			},
		})
	}

	return chunks, nil
}

// ChunkID returns the identifier of the chunk at position within a document.
func ChunkID(documentID string, position int) string {
	return fmt.Sprintf("%s-chunk-%d", documentID, position)
}

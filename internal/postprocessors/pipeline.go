// Package postprocessors turns extracted document text into chunks.
package postprocessors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
	"github.com/custodia-labs/intake/internal/logger"
)

// Verify interface compliance.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs its stages in order. The first stage receives nil chunks and
// creates them; later stages may rewrite them.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline running stages in the order given.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process chunks text for doc. Blank text yields no chunks without running
// any stage. The final chunk set must belong to doc, carry positions 0..n-1
// in order and reference byte ranges inside text.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document, text string) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		chunks, err = stage.Process(ctx, doc, text, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
		logger.Debug("processor %s: %d chunks for %s", stage.Name(), len(chunks), doc.ID)
	}

	if err := checkChunks(doc.ID, text, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// Add appends a stage.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name()
	}
	return names
}

func checkChunks(documentID, text string, chunks []domain.Chunk) error {
	for i := range chunks {
		c := &chunks[i]
		switch {
		case c.DocumentID != documentID:
			return fmt.Errorf("%w: chunk %d belongs to %q, not %q", domain.ErrInvalidInput, i, c.DocumentID, documentID)
		case c.Position != i:
			return fmt.Errorf("%w: chunk %d has position %d", domain.ErrInvalidInput, i, c.Position)
		case c.StartOffset < 0 || c.StartOffset > c.EndOffset || c.EndOffset > len(text):
			return fmt.Errorf("%w: chunk %d offsets [%d,%d) outside text of %d bytes",
				domain.ErrInvalidInput, i, c.StartOffset, c.EndOffset, len(text))
		}
	}
	return nil
}

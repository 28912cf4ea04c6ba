package postprocessors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// BuilderFunc creates a PostProcessor from its section of the pipeline
// configuration. cfg may be nil.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry maps processor names to builders so pipelines can be assembled
// from configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry. See RegisterDefaults.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds or replaces the builder for name.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates the processor registered as name.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q (available: %s)",
			domain.ErrInvalidInput, name, strings.Join(r.Names(), ", "))
	}
	proc, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build processor %s: %w", name, err)
	}
	return proc, nil
}

// Names returns the registered processor names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildPipeline assembles the processors listed in cfg.Processors, in order.
// A pipeline without processors would never produce chunks and is rejected.
func (r *Registry) BuildPipeline(cfg domain.PipelineConfig) (*Pipeline, error) {
	if len(cfg.Processors) == 0 {
		return nil, fmt.Errorf("%w: no processors configured", domain.ErrInvalidInput)
	}

	pipeline := NewPipeline()
	for _, name := range cfg.Processors {
		proc, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		pipeline.Add(proc)
	}
	return pipeline, nil
}

package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
	"github.com/custodia-labs/intake/internal/postprocessors/chunker"
)

func stubBuilder(name string) BuilderFunc {
	return func(_ map[string]any) (driven.PostProcessor, error) {
		return &stubProcessor{name: name}, nil
	}
}

func TestRegistry_Build(t *testing.T) {
	r := NewRegistry()
	r.Register("custom", func(cfg map[string]any) (driven.PostProcessor, error) {
		name, _ := cfg["name"].(string)
		return &stubProcessor{name: name}, nil
	})

	proc, err := r.Build("custom", map[string]any{"name": "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", proc.Name())
}

func TestRegistry_BuildUnknownListsAvailable(t *testing.T) {
	r := NewRegistry()
	r.Register("beta", stubBuilder("beta"))
	r.Register("alpha", stubBuilder("alpha"))

	_, err := r.Build("gamma", nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "available: alpha, beta")
}

func TestRegistry_BuilderError(t *testing.T) {
	boom := errors.New("bad config")
	r := NewRegistry()
	r.Register("broken", func(map[string]any) (driven.PostProcessor, error) { return nil, boom })

	_, err := r.Build("broken", nil)
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())

	r.Register("zeta", stubBuilder("zeta"))
	r.Register("alpha", stubBuilder("alpha"))
	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	assert.Equal(t, []string{"chunker"}, r.Names())
}

func TestBuildChunker_WithConfig(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	proc, err := r.Build("chunker", map[string]any{"chunk_size": 500})
	require.NoError(t, err)

	c, ok := proc.(*chunker.Processor)
	require.True(t, ok, "got %T", proc)
	assert.Equal(t, 500, c.ChunkSize())
}

func TestBuildChunker_NilConfigUsesDefault(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	proc, err := r.Build("chunker", nil)
	require.NoError(t, err)
	assert.Equal(t, chunker.DefaultChunkSize, proc.(*chunker.Processor).ChunkSize())
}

func TestBuildChunker_RejectsBadSize(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	_, err := r.Build("chunker", map[string]any{"chunk_size": -5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIntOption(t *testing.T) {
	tests := []struct {
		name    string
		cfg     map[string]any
		want    int
		present bool
		wantErr bool
	}{
		{"int", map[string]any{"size": 100}, 100, true, false},
		{"int64 from toml", map[string]any{"size": int64(200)}, 200, true, false},
		{"float64 from json", map[string]any{"size": float64(300)}, 300, true, false},
		{"fractional float", map[string]any{"size": 1.5}, 0, false, true},
		{"string", map[string]any{"size": "400"}, 0, false, true},
		{"missing", map[string]any{"other": 100}, 0, false, false},
		{"nil config", nil, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, present, err := intOption(tt.cfg, "size")
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.present, present)
		})
	}
}

func TestRegistry_BuildPipeline(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	p, err := r.BuildPipeline(domain.DefaultPipelineConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"chunker"}, p.Stages())

	_, err = r.BuildPipeline(domain.PipelineConfig{Processors: []string{"missing"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = r.BuildPipeline(domain.PipelineConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDefaultPipeline(t *testing.T) {
	p, err := DefaultPipeline(15)
	require.NoError(t, err)

	chunks, err := p.Process(context.Background(), &domain.Document{ID: "doc"},
		"This is one. This is two. This is three.")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "This is two.", chunks[1].Content)
	assert.Equal(t, "doc-chunk-2", chunks[2].ID)
}

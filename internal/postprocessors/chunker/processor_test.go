package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intake/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithChunkSize(-3))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func testDoc() *domain.Document {
	return &domain.Document{
		ID:           "doc-1",
		Name:         "notes.txt",
		OriginalName: "Notes.txt",
		MIMEType:     "text/plain",
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	p := New()

	chunks, err := p.Process(context.Background(), testDoc(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = p.Process(context.Background(), testDoc(), "   \n\t ", nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestProcessor_Process_ThreeSentences(t *testing.T) {
	p := New(WithChunkSize(15))

	chunks, err := p.Process(context.Background(), testDoc(), "This is one. This is two. This is three.", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "This is one.", chunks[0].Content)
	assert.Equal(t, "This is two.", chunks[1].Content)
	assert.Equal(t, "This is three.", chunks[2].Content)

	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, ChunkID("doc-1", i), c.ID)
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.Equal(t, "notes.txt", c.Metadata["document_name"])
		assert.Equal(t, "Notes.txt", c.Metadata["original_name"])
		assert.Equal(t, "text/plain", c.Metadata["mime_type"])
	}
	assert.Equal(t, 3, chunks[0].WordCount)
	assert.Equal(t, "doc-1-chunk-2", chunks[2].ID)
}

func TestProcessor_Process_PacksSentences(t *testing.T) {
	p := New(WithChunkSize(100))

	chunks, err := p.Process(context.Background(), testDoc(), "One. Two! Three?", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "One. Two! Three?", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len("One. Two! Three?"), chunks[0].EndOffset)
}

func TestProcessor_Process_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Process(ctx, testDoc(), "Some text.", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunk_OversizedSentenceStandsAlone(t *testing.T) {
	long := strings.Repeat("a", 40) + "."
	text := "Short one. " + long + " Tail."

	segments := Chunk(text, 20)
	require.Len(t, segments, 3)
	assert.Equal(t, "Short one.", segments[0].Text)
	assert.Equal(t, long, segments[1].Text)
	assert.Equal(t, "Tail.", segments[2].Text)
}

func TestChunk_NoTerminator(t *testing.T) {
	segments := Chunk("  just some words without an ending  ", 1000)
	require.Len(t, segments, 1)
	assert.Equal(t, "just some words without an ending", segments[0].Text)
	assert.Equal(t, 2, segments[0].Start)
	assert.Equal(t, 6, segments[0].WordCount)
}

func TestChunk_PunctuationRunsStayWithSentence(t *testing.T) {
	segments := Chunk("Wait... What?! Fine.", 7)
	require.Len(t, segments, 3)
	assert.Equal(t, "Wait...", segments[0].Text)
	assert.Equal(t, "What?!", segments[1].Text)
	assert.Equal(t, "Fine.", segments[2].Text)
}

func TestChunk_PunctuationOnlyFragmentFolded(t *testing.T) {
	text := "Hello there. ! Next one."
	segments := Chunk(text, 14)
	require.Len(t, segments, 2)
	assert.Equal(t, "Hello there. !", segments[0].Text)
	assert.Equal(t, "Next one.", segments[1].Text)
}

func TestChunk_DefaultSize(t *testing.T) {
	sentence := strings.Repeat("word ", 49) + "end."
	text := strings.Repeat(sentence+" ", 10)

	segments := Chunk(text, 0)
	require.NotEmpty(t, segments)
	for _, s := range segments {
		assert.LessOrEqual(t, len(s.Text), DefaultChunkSize)
	}
}

func TestChunk_Properties(t *testing.T) {
	text := "The quick brown fox jumps.  It was fast!\n\nThe dog slept? " +
		"Nobody knows why... Café owners agreed. Ünïcödé is fine too. " +
		strings.Repeat("Filler sentence number here. ", 30)

	for _, max := range []int{10, 25, 60, 200, 1000} {
		segments := Chunk(text, max)
		require.NotEmpty(t, segments)

		var texts []string
		prevEnd := 0
		for i, s := range segments {
			assert.Equal(t, i, s.Index)
			assert.GreaterOrEqual(t, s.Start, prevEnd, "segments must not overlap")
			assert.Less(t, s.Start, s.End)
			assert.Equal(t, strings.Fields(text[s.Start:s.End]), strings.Fields(s.Text),
				"segment text must come from its source span")
			prevEnd = s.End
			texts = append(texts, s.Text)
		}

		// Whitespace-normalised concatenation reproduces the source.
		assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(texts, " "))
	}
}

func BenchmarkChunk(b *testing.B) {
	text := strings.Repeat("A sentence of moderate length for benchmarking. ", 2000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Chunk(text, DefaultChunkSize)
	}
}

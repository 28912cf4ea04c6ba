package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segment is one chunk of text produced by Chunk.
type Segment struct {
	// Index is the 0-based position of the segment.
	Index int

	// Text is the segment's sentences joined by single spaces.
	Text string

	// Start is the byte offset of the first sentence in the source text.
	Start int

	// End is the byte offset just past the last sentence in the source text.
	End int

	// WordCount is the number of whitespace-separated words in Text.
	WordCount int
}

// sentence is a trimmed span of the source text.
type sentence struct {
	start, end int
}

// Chunk splits text on sentence boundaries and greedily packs consecutive
// sentences into segments of at most maxChunkSize characters. A sentence
// longer than maxChunkSize becomes a segment of its own; boundaries never
// fall inside a sentence. Empty or whitespace-only text yields no segments.
// A non-positive maxChunkSize selects DefaultChunkSize.
func Chunk(text string, maxChunkSize int) []Segment {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var (
		segments []Segment
		buf      strings.Builder
		bufLen   int // characters in buf
		first    sentence
		last     sentence
	)

	emit := func() {
		content := buf.String()
		segments = append(segments, Segment{
			Index:     len(segments),
			Text:      content,
			Start:     first.start,
			End:       last.end,
			WordCount: len(strings.Fields(content)),
		})
		buf.Reset()
		bufLen = 0
	}

	for _, s := range sentences {
		part := text[s.start:s.end]
		partLen := utf8.RuneCountInString(part)

		if bufLen > 0 && bufLen+1+partLen > maxChunkSize {
			emit()
		}

		if bufLen == 0 {
			first = s
		} else {
			buf.WriteByte(' ')
			bufLen++
		}
		buf.WriteString(part)
		bufLen += partLen
		last = s
	}

	if bufLen > 0 {
		emit()
	}

	return segments
}

// splitSentences returns the trimmed sentences of text in order.
// A sentence ends after a run of '.', '!' or '?'; the run stays with it.
// Text after the final terminator is a sentence too. Fragments without any
// letter or digit are folded into the preceding sentence so no content is lost.
func splitSentences(text string) []sentence {
	var out []sentence
	start := 0

	for i := 0; i < len(text); {
		if !isTerminator(text[i]) {
			i++
			continue
		}
		j := i
		for j < len(text) && isTerminator(text[j]) {
			j++
		}
		out = appendSentence(out, text, start, j)
		start = j
		i = j
	}
	if start < len(text) {
		out = appendSentence(out, text, start, len(text))
	}

	return out
}

func appendSentence(out []sentence, text string, start, end int) []sentence {
	s, ok := trimSpan(text, start, end)
	if !ok {
		return out
	}
	if len(out) > 0 && !hasWordRune(text[s.start:s.end]) {
		out[len(out)-1].end = s.end
		return out
	}
	return append(out, s)
}

// trimSpan strips surrounding whitespace from text[start:end].
// ok is false when nothing remains.
func trimSpan(text string, start, end int) (sentence, bool) {
	part := text[start:end]
	left := len(part) - len(strings.TrimLeftFunc(part, unicode.IsSpace))
	right := len(strings.TrimRightFunc(part, unicode.IsSpace))
	if right <= left {
		return sentence{}, false
	}
	return sentence{start: start + left, end: start + right}, true
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

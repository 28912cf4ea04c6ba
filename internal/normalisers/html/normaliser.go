package html

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns the readable text of an HTML document, one block per line.
func (n *Normaliser) Normalise(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return extractText(bytes.NewReader(bytes.ToValidUTF8(content, nil)))
}

// skipped elements contribute no text, including everything nested in them.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
}

// blocks start and end a line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Table: true, atom.Blockquote: true, atom.Pre: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Ul: true, atom.Ol: true, atom.Dt: true, atom.Dd: true,
}

// extractText walks the token stream and keeps text outside skipped
// elements. Entities are decoded by the tokenizer.
func extractText(r io.Reader) (string, error) {
	z := xhtml.NewTokenizer(r)
	var b strings.Builder
	depth := 0

	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return tidy(b.String()), nil

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken, xhtml.EndTagToken:
			name, _ := z.TagName()
			tag := atom.Lookup(name)
			if skipped[tag] {
				switch {
				case tt == xhtml.StartTagToken:
					depth++
				case tt == xhtml.EndTagToken && depth > 0:
					depth--
				}
				continue
			}
			if depth > 0 {
				continue
			}
			switch {
			case blocks[tag]:
				b.WriteByte('\n')
			case tag == atom.Td || tag == atom.Th:
				b.WriteByte(' ')
			}

		case xhtml.TextToken:
			if depth == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// tidy collapses whitespace inside lines and drops blank lines.
func tidy(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

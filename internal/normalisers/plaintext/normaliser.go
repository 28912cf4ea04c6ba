package plaintext

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser passes text uploads through after fixing their encoding.
// It also serves as the low-priority fallback for markup types.
type Normaliser struct{}

// New creates a plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes lists the textual types an upload can resolve to.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/tab-separated-values",
		"text/xml",
		"application/json",
		"application/xml",
		"text/markdown",
		"text/html",
	}
}

// Priority is below every format-specific normaliser.
func (n *Normaliser) Priority() int {
	return 5
}

// Normalise decodes content as UTF-8, or as UTF-16 when it starts with a
// UTF-16 byte order mark. The mark is dropped, invalid sequences are
// removed and line endings become "\n".
func (n *Normaliser) Normalise(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", nil
	}

	decoder := unicode.BOMOverride(encoding.Nop.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, content)
	if err != nil {
		return "", fmt.Errorf("%w: decode text: %v", domain.ErrExtraction, err)
	}

	text := strings.ToValidUTF8(string(decoded), "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}

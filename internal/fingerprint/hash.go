package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/intake/internal/core/domain"
)

// ContentFingerprintLength is the length of a content fingerprint in hex characters.
const ContentFingerprintLength = sha256.Size * 2

// HashReader streams r through SHA-256 and returns the lowercase hex digest.
// The stream is consumed incrementally; it is never buffered whole.
// Read failures and context cancellation are reported as domain.ErrIO.
func HashReader(ctx context.Context, r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, &contextReader{ctx: ctx, r: r}); err != nil {
		return "", fmt.Errorf("%w: hash stream: %w", domain.ErrIO, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile opens the file at path and hashes its contents.
func HashFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", domain.ErrIO, path, err)
	}
	defer f.Close()
	return HashReader(ctx, f)
}

// HashBytes returns the content fingerprint of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

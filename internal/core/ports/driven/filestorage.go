package driven

import (
	"context"
	"io"
)

// FileStorage gives the core access to already-saved uploads.
// The core never implements upload transport itself.
type FileStorage interface {
	// Open returns a stream over the file at path. The caller closes it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Remove deletes the file at path. Removing a missing file is not an error.
	Remove(ctx context.Context, path string) error
}

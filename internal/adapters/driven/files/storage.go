// Package files provides FileStorage over github.com/viant/afs, so upload
// locations may be local paths or any URL scheme afs supports.
package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// Ensure Storage implements the interface.
var _ driven.FileStorage = (*Storage)(nil)

// Storage reads, stages and removes upload files.
type Storage struct {
	fs afs.Service
}

// New creates a Storage backed by the default afs service.
func New() *Storage {
	return &Storage{fs: afs.New()}
}

// Open returns a stream over the file at location.
// A missing file is reported as domain.ErrIO wrapping os.ErrNotExist.
func (s *Storage) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", domain.ErrIO, location, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrIO, location, os.ErrNotExist)
	}

	rc, err := s.fs.OpenURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrIO, location, err)
	}
	return rc, nil
}

// Remove deletes the file at location. Removing a missing file is not an error.
func (s *Storage) Remove(ctx context.Context, location string) error {
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", domain.ErrIO, location, err)
	}
	if !exists {
		return nil
	}
	if err := s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("%w: remove %s: %w", domain.ErrIO, location, err)
	}
	return nil
}

// Stage copies the source file into dir under a fresh unique name that keeps
// the source extension, and returns the staged location. Ingestion removes
// staged files it rejects, so callers stage anything they want to keep.
func (s *Storage) Stage(ctx context.Context, source, dir string) (string, error) {
	rc, err := s.Open(ctx, source)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	target := joinLocation(dir, uuid.New().String()+path.Ext(source))
	if err := s.fs.Upload(ctx, target, file.DefaultFileOsMode, rc); err != nil {
		return "", fmt.Errorf("%w: stage %s: %w", domain.ErrIO, source, err)
	}
	return target, nil
}

// Size returns the byte size of the file at location.
func (s *Storage) Size(ctx context.Context, location string) (int64, error) {
	object, err := s.fs.Object(ctx, location)
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %w", domain.ErrIO, location, err)
	}
	return object.Size(), nil
}

func joinLocation(dir, name string) string {
	return strings.TrimRight(dir, "/") + "/" + name
}

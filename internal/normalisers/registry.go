package normalisers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
	"github.com/custodia-labs/intake/internal/normalisers/docx"
	"github.com/custodia-labs/intake/internal/normalisers/html"
	"github.com/custodia-labs/intake/internal/normalisers/markdown"
	"github.com/custodia-labs/intake/internal/normalisers/pdf"
	"github.com/custodia-labs/intake/internal/normalisers/plaintext"
	"github.com/custodia-labs/intake/internal/normalisers/xlsx"
)

// Verify interface compliance.
var (
	_ driven.NormaliserRegistry = (*Registry)(nil)
	_ driven.ContentExtractor   = (*Registry)(nil)
)

// Registry selects the highest-priority normaliser for a MIME type.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
	files  driven.FileStorage
}

// NewRegistry creates an empty registry. files is used by Extract to read
// stored uploads and may be nil when only Normalise is needed.
func NewRegistry(files driven.FileStorage) *Registry {
	return &Registry{
		byMIME: make(map[string][]driven.Normaliser),
		files:  files,
	}
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry(files driven.FileStorage) *Registry {
	r := NewRegistry(files)
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(xlsx.New())
	r.Register(pdf.New())
	return r
}

// Register adds a normaliser for each MIME type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mt := range n.SupportedMIMETypes() {
		key := baseType(mt)
		list := append(r.byMIME[key], n)
		// Stable so that equal priorities keep registration order
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[key] = list
	}
}

// Normalise extracts text using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, mimeType string, content []byte) (string, error) {
	n, ok := r.lookup(mimeType)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedType, mimeType)
	}
	return n.Normalise(ctx, content)
}

// SupportedMIMETypes returns all MIME types that can be normalised, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Extract reads the stored file at path and normalises it.
// Unsupported types fail before the file is read.
func (r *Registry) Extract(ctx context.Context, path, mimeType string) (string, error) {
	n, ok := r.lookup(mimeType)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedType, mimeType)
	}
	if r.files == nil {
		return "", fmt.Errorf("%w: no file storage configured", domain.ErrIO)
	}

	rc, err := r.files.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrIO, path, err)
	}

	return n.Normalise(ctx, content)
}

func (r *Registry) lookup(mimeType string) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byMIME[baseType(mimeType)]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// baseType strips parameters such as charset and lowercases the type.
func baseType(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

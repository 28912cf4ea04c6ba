package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driving"
	"github.com/custodia-labs/intake/internal/logger"
)

// DefaultSettleDelay is how long a dropped file must stay unmodified before
// it is ingested.
const DefaultSettleDelay = 500 * time.Millisecond

// Stager copies a file into upload storage and returns the staged location.
type Stager interface {
	Stage(ctx context.Context, source, dir string) (string, error)
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithSettleDelay sets how long a file must be quiet before ingestion.
func WithSettleDelay(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithStaging copies dropped files into dir before ingesting them, leaving
// the drop folder untouched.
func WithStaging(stager Stager, dir string) WatchOption {
	return func(w *Watcher) {
		w.stager = stager
		w.stageDir = dir
	}
}

// WithFolder places ingested documents in a folder.
func WithFolder(folderID string) WatchOption {
	return func(w *Watcher) {
		if folderID != "" {
			w.folderID = &folderID
		}
	}
}

// Watcher ingests files dropped into a directory.
type Watcher struct {
	ingest   driving.IngestService
	dir      string
	ownerID  string
	folderID *string
	settle   time.Duration
	stager   Stager
	stageDir string
	onResult func(path string, res *driving.IngestResult, err error)

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher over dir ingesting for ownerID.
func NewWatcher(ingest driving.IngestService, dir, ownerID string, opts ...WatchOption) *Watcher {
	w := &Watcher{
		ingest:  ingest,
		dir:     dir,
		ownerID: ownerID,
		settle:  DefaultSettleDelay,
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// OnResult registers a callback invoked after each ingestion attempt.
func (w *Watcher) OnResult(fn func(path string, res *driving.IngestResult, err error)) {
	w.onResult = fn
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("watching %s for %s", w.dir, w.ownerID)

	ready := make(chan string)
	done := make(chan struct{})
	defer close(done)
	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleEvent(event); ok {
				w.schedule(path, ready, done)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch %s: %v", w.dir, err)
		case path := <-ready:
			w.ingestFile(ctx, path)
		}
	}
}

// handleEvent returns the path of a regular, visible file that was created
// or written. Everything else is ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(path string, ready chan<- string, done <-chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-done:
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	name := filepath.Base(path)
	location := path
	if w.stager != nil {
		staged, err := w.stager.Stage(ctx, path, w.stageDir)
		if err != nil {
			logger.Warn("stage %s: %v", name, err)
			w.report(path, nil, err)
			return
		}
		location = staged
	}

	res, err := w.ingest.Ingest(ctx, domain.Upload{
		Path:         location,
		OriginalName: name,
		MIMEType:     DetectMIMEType(name),
	}, w.ownerID, w.folderID)

	var dup *domain.DuplicateRejectedError
	switch {
	case errors.As(err, &dup):
		logger.Info("%s", GenerateReport(domain.NewDuplicate(dup.Match, "", ""), name))
	case err != nil:
		logger.Warn("ingest %s: %v", name, err)
	default:
		logger.Info("ingested %s as %s (%d chunks)", name, res.Document.ID, res.ChunkCount)
	}
	w.report(path, res, err)
}

func (w *Watcher) report(path string, res *driving.IngestResult, err error) {
	if w.onResult != nil {
		w.onResult(path, res, err)
	}
}

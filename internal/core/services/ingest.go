package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
	"github.com/custodia-labs/intake/internal/core/ports/driving"
	"github.com/custodia-labs/intake/internal/fingerprint"
	"github.com/custodia-labs/intake/internal/logger"
)

// Ensure IngestionOrchestrator implements the interface.
var _ driving.IngestService = (*IngestionOrchestrator)(nil)

// IngestOption configures an IngestionOrchestrator.
type IngestOption func(*IngestionOrchestrator)

// WithWorkers bounds how many files of a batch are processed at once.
func WithWorkers(n int) IngestOption {
	return func(o *IngestionOrchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithClock replaces the timestamp source. Used by tests.
func WithClock(now func() time.Time) IngestOption {
	return func(o *IngestionOrchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// prefetchingDetector is satisfied by detectors that can score names against
// a document list fetched once per batch.
type prefetchingDetector interface {
	CheckWithDocuments(
		ctx context.Context,
		r io.Reader,
		originalName, ownerID string,
		existing []domain.Document,
	) (*domain.DuplicateCheck, error)
}

// IngestionOrchestrator turns a saved upload into a stored, chunked and
// indexed document, refusing byte-identical uploads.
type IngestionOrchestrator struct {
	detector  driving.DuplicateDetector
	store     driven.DocumentStore
	files     driven.FileStorage
	extractor driven.ContentExtractor
	pipeline  driven.PostProcessorPipeline
	indexer   driven.VectorIndexer
	workers   int
	now       func() time.Time
}

// NewIngestionOrchestrator wires the ingestion pipeline.
// A nil indexer disables indexing; a nil pipeline disables chunking.
func NewIngestionOrchestrator(
	detector driving.DuplicateDetector,
	store driven.DocumentStore,
	files driven.FileStorage,
	extractor driven.ContentExtractor,
	pipeline driven.PostProcessorPipeline,
	indexer driven.VectorIndexer,
	opts ...IngestOption,
) *IngestionOrchestrator {
	o := &IngestionOrchestrator{
		detector:  detector,
		store:     store,
		files:     files,
		extractor: extractor,
		pipeline:  pipeline,
		indexer:   indexer,
		workers:   domain.DefaultWorkers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ingest processes one saved upload.
//
// A byte-identical upload is removed from temporary storage and refused with
// *domain.DuplicateRejectedError. Extraction and indexing failures are logged
// and do not fail the upload.
func (o *IngestionOrchestrator) Ingest(
	ctx context.Context,
	upload domain.Upload,
	ownerID string,
	folderID *string,
) (*driving.IngestResult, error) {
	return o.ingest(ctx, upload, ownerID, folderID, nil, false)
}

func (o *IngestionOrchestrator) ingest(
	ctx context.Context,
	upload domain.Upload,
	ownerID string,
	folderID *string,
	existing []domain.Document,
	havePrefetched bool,
) (*driving.IngestResult, error) {
	if ownerID == "" || upload.Path == "" {
		return nil, fmt.Errorf("%w: owner id and upload path are required", domain.ErrInvalidInput)
	}
	logger.Section("Ingest " + upload.OriginalName)

	check, size, err := o.checkUpload(ctx, upload, ownerID, existing, havePrefetched)
	if err != nil {
		o.discard(ctx, upload.Path)
		return nil, err
	}
	if check.IsDuplicate() {
		o.discard(ctx, upload.Path)
		return nil, &domain.DuplicateRejectedError{Match: *check.Match()}
	}

	now := o.now().UTC()
	contentFP := check.ContentFingerprint
	doc := domain.Document{
		ID:                 uuid.NewString(),
		OwnerID:            ownerID,
		Name:               upload.OriginalName,
		OriginalName:       upload.OriginalName,
		MIMEType:           upload.MIMEType,
		Size:               size,
		Path:               upload.Path,
		ContentFingerprint: &contentFP,
		NameFingerprint:    check.NameFingerprint,
		FolderID:           folderID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := o.store.Insert(ctx, &doc); err != nil {
		o.discard(ctx, upload.Path)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Another upload with the same bytes won the insert after our check.
			if match, findErr := o.store.FindByContentFingerprint(ctx, ownerID, contentFP); findErr == nil && match != nil {
				logger.Debug("%s lost the insert race to document %s", upload.OriginalName, match.ID)
				return nil, &domain.DuplicateRejectedError{Match: *match}
			}
		}
		return nil, storageError("insert document", err)
	}
	logger.Debug("stored document %s for %s", doc.ID, ownerID)

	chunkCount, indexed := o.process(ctx, &doc)

	return &driving.IngestResult{
		Document:   doc,
		Warnings:   check.Candidates(),
		ChunkCount: chunkCount,
		Indexed:    indexed,
	}, nil
}

// checkUpload streams the saved upload through the detector and reports
// how many bytes were read.
func (o *IngestionOrchestrator) checkUpload(
	ctx context.Context,
	upload domain.Upload,
	ownerID string,
	existing []domain.Document,
	havePrefetched bool,
) (*domain.DuplicateCheck, int64, error) {
	rc, err := o.files.Open(ctx, upload.Path)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	counter := &countingReader{r: rc}

	var check *domain.DuplicateCheck
	if pd, ok := o.detector.(prefetchingDetector); ok && havePrefetched {
		check, err = pd.CheckWithDocuments(ctx, counter, upload.OriginalName, ownerID, existing)
	} else {
		check, err = o.detector.CheckForDuplicates(ctx, counter, upload.OriginalName, ownerID)
	}
	if err != nil {
		return nil, 0, err
	}

	size := upload.Size
	if size <= 0 {
		size = counter.n
	}
	return check, size, nil
}

// process extracts, chunks, saves and indexes a stored document.
// Every failure here is logged and leaves the document in place.
func (o *IngestionOrchestrator) process(ctx context.Context, doc *domain.Document) (chunkCount int, indexed bool) {
	text := ""
	if o.extractor != nil {
		extracted, err := o.extractor.Extract(ctx, doc.Path, doc.MIMEType)
		if err != nil {
			logger.Warn("extract text from %s: %v", doc.OriginalName, err)
		} else {
			text = extracted
		}
	}

	var chunks []domain.Chunk
	if strings.TrimSpace(text) != "" && o.pipeline != nil {
		var err error
		chunks, err = o.pipeline.Process(ctx, doc, text)
		if err != nil {
			logger.Warn("chunk %s: %v", doc.OriginalName, err)
			chunks = nil
		}
	}

	if err := o.store.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		logger.Warn("save chunks for %s: %v", doc.ID, err)
	}
	logger.Debug("%s produced %d chunks", doc.OriginalName, len(chunks))

	if o.indexer == nil || len(chunks) == 0 {
		return len(chunks), false
	}

	if err := o.indexer.Index(ctx, doc.ID, doc.Name, chunks, indexMetadata(doc)); err != nil {
		logger.Warn("index %s: %v", doc.ID, err)
		return len(chunks), false
	}
	return len(chunks), true
}

func indexMetadata(doc *domain.Document) map[string]any {
	meta := map[string]any{
		"owner_id":      doc.OwnerID,
		"original_name": doc.OriginalName,
		"mime_type":     doc.MIMEType,
	}
	if doc.FolderID != nil {
		meta["folder_id"] = *doc.FolderID
	}
	return meta
}

// discard removes a rejected upload from temporary storage.
func (o *IngestionOrchestrator) discard(ctx context.Context, path string) {
	// Removal must run even when the upload was cancelled.
	if err := o.files.Remove(context.WithoutCancel(ctx), path); err != nil {
		logger.Warn("remove rejected upload %s: %v", path, err)
	}
}

// IngestBatch ingests uploads concurrently. The owner's documents are listed
// once for the whole batch. Results and errors keep input order.
func (o *IngestionOrchestrator) IngestBatch(
	ctx context.Context,
	uploads []domain.Upload,
	ownerID string,
	folderID *string,
) *driving.BatchResult {
	existing, err := o.store.ListByOwner(ctx, ownerID)
	havePrefetched := err == nil
	if err != nil {
		logger.Warn("list documents for %s, checking files individually: %v", ownerID, err)
	}

	type outcome struct {
		result *driving.IngestResult
		err    error
	}
	outcomes := make([]outcome, len(uploads))

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := range uploads {
		g.Go(func() error {
			res, err := o.ingest(ctx, uploads[i], ownerID, folderID, existing, havePrefetched)
			outcomes[i] = outcome{result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	batch := &driving.BatchResult{}
	for i, out := range outcomes {
		if out.err != nil {
			batch.Errors = append(batch.Errors, driving.FileError{Name: uploads[i].OriginalName, Err: out.err})
			continue
		}
		batch.Results = append(batch.Results, *out.result)
	}
	return batch
}

// Reingest re-hashes, re-extracts, re-chunks and re-indexes a stored
// document, replacing its previous chunks. When the stored file changed its
// content fingerprint is updated first; if the new bytes belong to another
// document of the owner the call fails with a DuplicateRejectedError and
// the document is left as it was.
func (o *IngestionOrchestrator) Reingest(ctx context.Context, documentID string) (*driving.IngestResult, error) {
	doc, err := o.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, storageError("get document", err)
	}

	if err := o.refreshFingerprint(ctx, doc); err != nil {
		return nil, err
	}

	chunkCount, indexed := o.process(ctx, doc)
	return &driving.IngestResult{
		Document:   *doc,
		ChunkCount: chunkCount,
		Indexed:    indexed,
	}, nil
}

// refreshFingerprint hashes the stored file and records the digest on doc
// when it differs. An unreadable file is logged and the fingerprint kept.
func (o *IngestionOrchestrator) refreshFingerprint(ctx context.Context, doc *domain.Document) error {
	rc, err := o.files.Open(ctx, doc.Path)
	if err != nil {
		logger.Warn("re-hash %s: %v", doc.ID, err)
		return nil
	}
	fp, err := fingerprint.HashReader(ctx, rc)
	rc.Close()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Warn("re-hash %s: %v", doc.ID, err)
		return nil
	}
	if doc.ContentFingerprint != nil && *doc.ContentFingerprint == fp {
		return nil
	}

	if err := o.store.UpdateFingerprint(ctx, doc.ID, fp); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			if match, findErr := o.store.FindByContentFingerprint(ctx, doc.OwnerID, fp); findErr == nil && match != nil {
				return &domain.DuplicateRejectedError{Match: *match}
			}
		}
		return storageError("update content fingerprint", err)
	}
	logger.Debug("content of %s changed, fingerprint updated", doc.ID)
	doc.ContentFingerprint = &fp
	doc.UpdatedAt = o.now().UTC()
	return nil
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
	"github.com/custodia-labs/intake/internal/core/ports/driving"
	"github.com/custodia-labs/intake/internal/fingerprint"
	"github.com/custodia-labs/intake/internal/logger"
)

// Ensure DuplicateDetectionService implements the interface.
var _ driving.DuplicateDetector = (*DuplicateDetectionService)(nil)

// DuplicateOption configures a DuplicateDetectionService.
type DuplicateOption func(*DuplicateDetectionService)

// WithThreshold sets the name similarity above which documents are reported
// as near-duplicates. Values outside [0, 1] are ignored.
func WithThreshold(threshold float64) DuplicateOption {
	return func(s *DuplicateDetectionService) {
		if threshold >= 0 && threshold <= 1 {
			s.threshold = threshold
		}
	}
}

// WithPrefilter toggles skipping candidates whose name lengths alone rule
// out a score above the threshold.
func WithPrefilter(enabled bool) DuplicateOption {
	return func(s *DuplicateDetectionService) {
		s.prefilter = enabled
	}
}

// DuplicateDetectionService classifies uploads against an owner's documents.
type DuplicateDetectionService struct {
	store     driven.DocumentStore
	files     driven.FileStorage
	threshold float64
	prefilter bool
}

// NewDuplicateDetectionService creates a detector over the document store.
// files is only needed by BackfillFingerprints and may be nil otherwise.
func NewDuplicateDetectionService(
	store driven.DocumentStore,
	files driven.FileStorage,
	opts ...DuplicateOption,
) *DuplicateDetectionService {
	s := &DuplicateDetectionService{
		store:     store,
		files:     files,
		threshold: domain.DefaultSimilarityThreshold,
		prefilter: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the configured similarity threshold.
func (s *DuplicateDetectionService) Threshold() float64 {
	return s.threshold
}

// CheckForDuplicates hashes r and compares the digest and filename with the
// owner's documents. It never writes.
func (s *DuplicateDetectionService) CheckForDuplicates(
	ctx context.Context,
	r io.Reader,
	originalName, ownerID string,
) (*domain.DuplicateCheck, error) {
	return s.check(ctx, r, originalName, ownerID, nil, false)
}

// CheckWithDocuments behaves like CheckForDuplicates but scores names
// against existing instead of listing the owner's documents.
func (s *DuplicateDetectionService) CheckWithDocuments(
	ctx context.Context,
	r io.Reader,
	originalName, ownerID string,
	existing []domain.Document,
) (*domain.DuplicateCheck, error) {
	return s.check(ctx, r, originalName, ownerID, existing, true)
}

func (s *DuplicateDetectionService) check(
	ctx context.Context,
	r io.Reader,
	originalName, ownerID string,
	existing []domain.Document,
	havePrefetched bool,
) (*domain.DuplicateCheck, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidInput)
	}

	contentFP, err := fingerprint.HashReader(ctx, r)
	if err != nil {
		return nil, err
	}
	nameFP := fingerprint.NameFingerprint(originalName)
	logger.Debug("fingerprint %s: content=%s name=%s", originalName, contentFP, nameFP)

	match, err := s.store.FindByContentFingerprint(ctx, ownerID, contentFP)
	if err != nil {
		return nil, storageError("find by content fingerprint", err)
	}
	if match != nil {
		logger.Debug("%s is identical to document %s", originalName, match.ID)
		return domain.NewDuplicate(*match, contentFP, nameFP), nil
	}

	if !havePrefetched {
		existing, err = s.store.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, storageError("list owner documents", err)
		}
	}

	return domain.NewClean(s.similar(originalName, nameFP, existing), contentFP, nameFP), nil
}

// similar scores every document's original name and keeps those strictly
// above the threshold, best first.
func (s *DuplicateDetectionService) similar(originalName, nameFP string, docs []domain.Document) []domain.SimilarDocument {
	key := fingerprint.SimilarityKey(originalName)
	keyLen := utf8.RuneCountInString(key)

	var out []domain.SimilarDocument
	for i := range docs {
		docKey := fingerprint.SimilarityKey(docs[i].OriginalName)
		if s.prefilter && docs[i].NameFingerprint != nameFP &&
			fingerprint.UpperBound(keyLen, utf8.RuneCountInString(docKey)) <= s.threshold {
			continue
		}
		score := fingerprint.KeySimilarity(key, docKey)
		if score > s.threshold {
			out = append(out, domain.SimilarDocument{Document: docs[i], Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].Document.CreatedAt.Equal(out[j].Document.CreatedAt) {
			return out[i].Document.CreatedAt.Before(out[j].Document.CreatedAt)
		}
		return out[i].Document.ID < out[j].Document.ID
	})
	return out
}

// GenerateReport renders a one-line summary of a duplicate check.
func (s *DuplicateDetectionService) GenerateReport(result *domain.DuplicateCheck, originalName string) string {
	return GenerateReport(result, originalName)
}

// GenerateReport renders a one-line summary of a duplicate check.
func GenerateReport(result *domain.DuplicateCheck, originalName string) string {
	if result == nil {
		return fmt.Sprintf("No duplicates found for %q", originalName)
	}
	if result.IsDuplicate() {
		match := result.Match()
		return fmt.Sprintf("Duplicate file detected: %q matches %q uploaded on %s",
			originalName, match.OriginalName, match.CreatedAt.Format("2006-01-02"))
	}

	candidates := result.Candidates()
	if len(candidates) == 0 {
		return fmt.Sprintf("No duplicates found for %q", originalName)
	}

	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, fmt.Sprintf("%q (%d%% similar)", c.Document.OriginalName, c.Percent()))
	}
	return fmt.Sprintf("Similar files found for %q: %s", originalName, strings.Join(parts, ", "))
}

// UpdateContentFingerprint stores a fingerprint on an existing document.
// Writing the value the document already holds succeeds.
func (s *DuplicateDetectionService) UpdateContentFingerprint(ctx context.Context, documentID, fp string) error {
	if documentID == "" || len(fp) != fingerprint.ContentFingerprintLength {
		return fmt.Errorf("%w: document id and a %d character fingerprint are required",
			domain.ErrInvalidInput, fingerprint.ContentFingerprintLength)
	}
	if err := s.store.UpdateFingerprint(ctx, documentID, fp); err != nil {
		return storageError("update content fingerprint", err)
	}
	return nil
}

// BackfillFingerprints hashes the stored file of every owner document that
// has no content fingerprint and records the digest. A document whose bytes
// match another document of the owner is reported and left unchanged.
func (s *DuplicateDetectionService) BackfillFingerprints(ctx context.Context, ownerID string) (*driving.BackfillResult, error) {
	if s.files == nil {
		return nil, fmt.Errorf("%w: backfill requires file storage", domain.ErrInvalidInput)
	}

	docs, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageError("list owner documents", err)
	}

	result := &driving.BackfillResult{}
	for i := range docs {
		if docs[i].ContentFingerprint != nil {
			continue
		}
		result.Scanned++

		if err := ctx.Err(); err != nil {
			return result, err
		}

		fp, err := s.hashStored(ctx, docs[i].Path)
		if err == nil {
			err = s.UpdateContentFingerprint(ctx, docs[i].ID, fp)
		}
		if err != nil {
			logger.Warn("backfill %s: %v", docs[i].ID, err)
			result.Errors = append(result.Errors, driving.FileError{Name: docs[i].ID, Err: err})
			continue
		}
		result.Updated++
	}

	logger.Info("backfilled %d of %d documents for %s", result.Updated, result.Scanned, ownerID)
	return result, nil
}

func (s *DuplicateDetectionService) hashStored(ctx context.Context, path string) (string, error) {
	rc, err := s.files.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return fingerprint.HashReader(ctx, rc)
}

// storageError wraps a store failure in domain.ErrStorage. Not-found and
// uniqueness errors keep their own identity for callers to branch on.
func storageError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAlreadyExists) ||
		errors.Is(err, domain.ErrInvalidInput) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

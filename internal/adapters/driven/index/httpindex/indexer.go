// Package httpindex provides a VectorIndexer that posts chunks as JSON to an
// external indexing service.
package httpindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
	"github.com/custodia-labs/intake/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driven.VectorIndexer = (*Indexer)(nil)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultBackoff    = 30 * time.Second
	DefaultMaxRetries = 3
)

// Config holds configuration for the HTTP indexer.
type Config struct {
	// BaseURL is the indexing service base URL. Requests go to BaseURL + "/index".
	BaseURL string

	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// Burst is the maximum burst size.
	Burst int

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// Backoff is the wait after a 429 without Retry-After (default: 30s).
	Backoff time.Duration

	// MaxRetries bounds retries after 429 responses (default: 3).
	MaxRetries int
}

// Indexer submits chunks to an HTTP indexing service.
type Indexer struct {
	client     *http.Client
	baseURL    string
	limiter    *RateLimiter
	maxRetries int
}

// indexRequest is the request body sent to the indexing service.
type indexRequest struct {
	DocumentID   string         `json:"document_id"`
	DocumentName string         `json:"document_name"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Chunks       []indexChunk   `json:"chunks"`
}

type indexChunk struct {
	ID          string         `json:"id"`
	DocumentID  string         `json:"document_id"`
	Position    int            `json:"position"`
	Content     string         `json:"content"`
	StartOffset int            `json:"start_offset"`
	EndOffset   int            `json:"end_offset"`
	WordCount   int            `json:"word_count"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// New creates an HTTP indexer.
func New(cfg Config) (*Indexer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: indexer url is required", domain.ErrInvalidInput)
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = domain.DefaultIndexerRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = domain.DefaultIndexerBurst
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	return &Indexer{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limiter:    NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst, cfg.Backoff),
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Index posts the document's chunks. 429 responses are retried after the
// server's Retry-After; other non-2xx responses fail with domain.ErrIndexing.
func (i *Indexer) Index(ctx context.Context, documentID, documentName string, chunks []domain.Chunk, metadata map[string]any) error {
	body := indexRequest{
		DocumentID:   documentID,
		DocumentName: documentName,
		Metadata:     metadata,
		Chunks:       make([]indexChunk, 0, len(chunks)),
	}
	for _, c := range chunks {
		body.Chunks = append(body.Chunks, indexChunk{
			ID:          c.ID,
			DocumentID:  c.DocumentID,
			Position:    c.Position,
			Content:     c.Content,
			StartOffset: c.StartOffset,
			EndOffset:   c.EndOffset,
			WordCount:   c.WordCount,
			Metadata:    c.Metadata,
		})
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %w", domain.ErrIndexing, err)
	}

	for attempt := 0; ; attempt++ {
		if err := i.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: wait for rate limiter: %w", domain.ErrIndexing, err)
		}

		retryAfter, err := i.post(ctx, jsonBody)
		if err == nil {
			return nil
		}
		if retryAfter < 0 || attempt >= i.maxRetries {
			return err
		}

		logger.Debug("indexer rate limited, retrying document %s (attempt %d)", documentID, attempt+1)
		i.limiter.RecordRateLimitError(retryAfter)
	}
}

// post sends one request. A non-negative retryAfter marks a 429 response.
func (i *Indexer) post(ctx context.Context, jsonBody []byte) (retryAfter time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+"/index", bytes.NewReader(jsonBody))
	if err != nil {
		return -1, fmt.Errorf("%w: create request: %w", domain.ErrIndexing, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return -1, fmt.Errorf("%w: send request: %w", domain.ErrIndexing, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return -1, nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err = fmt.Errorf("%w: indexer returned status %d: %s", domain.ErrIndexing, resp.StatusCode, strings.TrimSpace(string(respBody)))

	if resp.StatusCode == http.StatusTooManyRequests {
		return parseRetryAfter(resp.Header.Get("Retry-After")), err
	}
	return -1, err
}

// parseRetryAfter reads a Retry-After header given in seconds.
// Missing or malformed values yield zero, which selects the default backoff.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

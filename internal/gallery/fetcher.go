package gallery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gallerysync/internal/domain"
)

const defaultFetchTimeout = 60 * time.Second

// Fetcher downloads binary payloads and attaches them to cached records.
// Implements domain.ContentFetcher.
type Fetcher struct {
	store      domain.ContentStore
	httpClient *http.Client
	maxBytes   int64
	now        func() time.Time
	logger     *slog.Logger
}

var _ domain.ContentFetcher = (*Fetcher)(nil)

// NewFetcher creates a Fetcher. maxBytes <= 0 falls back to domain.MaxItemSizeBytes.
func NewFetcher(store domain.ContentStore, timeout time.Duration, maxBytes int64, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = domain.MaxItemSizeBytes
	}
	return &Fetcher{
		store:      store,
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
		now:        time.Now,
		logger:     logger,
	}
}

// Fetch downloads url and attaches the bytes to record id.
// The record is only written once the whole body has been read.
func (f *Fetcher) Fetch(ctx context.Context, url, id string) error {
	data, err := f.download(ctx, url)
	if err != nil {
		f.logger.Warn("content download failed", "id", id, "url", url, "error", err)
		return err
	}

	outcome, err := f.store.AttachContent(id, data, domain.FormatRetrievedAt(f.now()))
	if err != nil {
		f.logger.Error("failed to attach content", "id", id, "error", err)
		return fmt.Errorf("%w: attach %s: %w", domain.ErrStore, id, err)
	}

	f.logger.Debug("content attached", "id", id, "bytes", len(data), "outcome", outcome.String())
	return nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrNetwork, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", domain.ErrNetwork, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", domain.ErrNetwork, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrNetwork, f.maxBytes)
	}
	return data, nil
}

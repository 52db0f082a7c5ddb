package gallery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/mmcdole/gallerysync/internal/domain"
)

const defaultMaxConcurrentDownloads = 4

// Commands provides operations that hit the network.
// Implements domain.SyncCommands.
type Commands struct {
	feed     domain.FeedRepository
	store    domain.ContentStore
	fetcher  domain.ContentFetcher
	observer domain.SyncObserver
	logger   *slog.Logger

	sem      *semaphore.Weighted
	inflight *inflightSet
	wg       sync.WaitGroup
}

var _ domain.SyncCommands = (*Commands)(nil)

// NewCommands creates a new Commands instance.
// maxConcurrent bounds the number of downloads running at once.
func NewCommands(
	feed domain.FeedRepository,
	store domain.ContentStore,
	fetcher domain.ContentFetcher,
	observer domain.SyncObserver,
	maxConcurrent int,
	logger *slog.Logger,
) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = domain.NoOpObserver{}
	}
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentDownloads
	}
	return &Commands{
		feed:     feed,
		store:    store,
		fetcher:  fetcher,
		observer: observer,
		logger:   logger,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		inflight: newInflightSet(),
	}
}

// SyncNewItems fetches the page at the stored cursor, writes a skeleton for
// every unseen item and dispatches its download.
// Feed failures abort the cycle before anything is written.
func (c *Commands) SyncNewItems(ctx context.Context) (domain.SyncResult, error) {
	result := domain.SyncResult{CycleID: uuid.NewString()}
	logger := c.logger.With("cycle", result.CycleID)

	page, err := c.store.PageCursor()
	if err != nil {
		logger.Error("failed to read page cursor", "error", err)
		page = 1
	}
	result.Page = page

	c.report(result, domain.StateFetchingPage, nil)
	items, err := c.feed.FetchPage(ctx, page)
	if err != nil {
		logger.Error("failed to fetch feed page", "page", page, "error", err)
		c.report(result, domain.StateIdle, err)
		return result, err
	}

	c.report(result, domain.StateFiltering, nil)
	result.Fetched = len(items)

	// A download is claimed before the next skeleton is written.
	c.report(result, domain.StatePersistingSkeletons, nil)
	for _, item := range items {
		outcome, err := c.store.UpsertSkeleton(item.ID, item.Title, item.SourceURL)
		if err != nil {
			logger.Error("failed to persist skeleton", "id", item.ID, "error", err)
			result.Failed++
			continue
		}
		if outcome == domain.UpsertAlreadyExists {
			result.Skipped++
			continue
		}
		result.Inserted++

		if !c.inflight.tryAcquire(item.ID) {
			continue
		}
		if err := c.dispatch(ctx, item.SourceURL, item.ID); err != nil {
			// Skeleton stays behind for the next repair pass.
			logger.Warn("download dispatch interrupted", "id", item.ID, "error", err)
			c.report(result, domain.StateIdle, err)
			return result, err
		}
		result.Dispatched++
	}

	c.report(result, domain.StateDownloadingContent, nil)

	c.advanceCursor(logger, result)

	logger.Info("sync cycle finished",
		"page", result.Page,
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	c.report(result, domain.StateIdle, nil)
	return result, nil
}

// advanceCursor moves backfill to the next page once every item of the
// current one is persisted. A page with write failures is fetched again.
// An empty page marks the end of the feed and wraps to 1.
func (c *Commands) advanceCursor(logger *slog.Logger, result domain.SyncResult) {
	next := result.Page
	switch {
	case result.Fetched == 0:
		next = 1
	case result.Failed == 0:
		next = result.Page + 1
	}
	if next == result.Page {
		return
	}
	if err := c.store.SavePageCursor(next); err != nil {
		logger.Error("failed to save page cursor", "page", next, "error", err)
		return
	}
	logger.Debug("page cursor moved", "from", result.Page, "to", next)
}

// RepairMissingContent dispatches a download for every record without content
// that is not already being downloaded.
func (c *Commands) RepairMissingContent(ctx context.Context) (domain.RepairResult, error) {
	var result domain.RepairResult

	missing, err := c.store.ListMissingContent()
	if err != nil {
		c.logger.Error("failed to list missing content", "error", err)
		return result, err
	}
	result.Missing = len(missing)

	for _, rec := range missing {
		if !c.inflight.tryAcquire(rec.ID) {
			result.Suppressed++
			continue
		}
		if err := c.dispatch(ctx, rec.SourceURL, rec.ID); err != nil {
			c.logger.Warn("repair interrupted", "id", rec.ID, "error", err)
			return result, err
		}
		result.Dispatched++
	}

	c.logger.Debug("repair pass dispatched",
		"missing", result.Missing,
		"dispatched", result.Dispatched,
		"suppressed", result.Suppressed,
	)
	return result, nil
}

// Wait blocks until every dispatched download has finished.
func (c *Commands) Wait() {
	c.wg.Wait()
}

// dispatch starts the download of an id the caller already claimed.
// It blocks while all download slots are taken.
func (c *Commands) dispatch(ctx context.Context, url, id string) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		c.inflight.release(id)
		return err
	}

	// Downloads outlive the triggering call; the http timeout bounds them.
	fetchCtx := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.sem.Release(1)
		defer c.inflight.release(id)

		if err := c.fetcher.Fetch(fetchCtx, url, id); err != nil {
			c.logger.Warn("download failed, left for repair", "id", id, "error", err)
		}
	}()
	return nil
}

func (c *Commands) report(result domain.SyncResult, state domain.SyncState, err error) {
	c.observer.OnProgress(domain.SyncProgress{
		CycleID: result.CycleID,
		State:   state,
		Page:    result.Page,
		Error:   err,
	})
}

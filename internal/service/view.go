package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/singleflight"

	"github.com/mmcdole/gallerysync/internal/domain"
)

const (
	// DefaultNearEndThreshold is how many items may remain past the cursor before a refresh.
	DefaultNearEndThreshold = 10

	nearEndKey = "near-end"
)

// RefreshResult summarizes one near-end refresh.
type RefreshResult struct {
	Sync   domain.SyncResult
	Repair domain.RepairResult
	Shared bool // Result came from a refresh started by another caller
}

// ViewAdapter is the paged, change-notifying view handed to presentation code.
type ViewAdapter struct {
	queries   domain.CacheQueries
	commands  domain.SyncCommands
	threshold int
	logger    *slog.Logger

	group singleflight.Group
}

// NewViewAdapter creates a view over queries that refreshes through commands.
// A threshold <= 0 selects DefaultNearEndThreshold.
func NewViewAdapter(queries domain.CacheQueries, commands domain.SyncCommands, threshold int, logger *slog.Logger) *ViewAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = DefaultNearEndThreshold
	}
	return &ViewAdapter{
		queries:   queries,
		commands:  commands,
		threshold: threshold,
		logger:    logger,
	}
}

// GetPage returns cached records in insertion order.
func (v *ViewAdapter) GetPage(offset, limit int) ([]domain.CachedRecord, error) {
	return v.queries.GetPage(offset, limit)
}

// GetPageMeta is GetPage without content bytes, for listings.
func (v *ViewAdapter) GetPageMeta(offset, limit int) ([]domain.CachedRecord, error) {
	return v.queries.GetPageMeta(offset, limit)
}

// Get returns one cached record, content included.
func (v *ViewAdapter) Get(id string) (domain.CachedRecord, error) {
	rec, ok, err := v.queries.Get(id)
	if err != nil {
		return domain.CachedRecord{}, err
	}
	if !ok {
		return domain.CachedRecord{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

func (v *ViewAdapter) Count() (int, error) {
	return v.queries.Count()
}

// OnChange registers fn for every cache mutation.
func (v *ViewAdapter) OnChange(fn func(domain.ChangeEvent)) func() {
	return v.queries.OnChange(fn)
}

// NotifyNearEnd runs a sync cycle followed by a repair pass.
// Calls made while a refresh is running join it instead of starting another.
func (v *ViewAdapter) NotifyNearEnd(ctx context.Context) (RefreshResult, error) {
	val, err, shared := v.group.Do(nearEndKey, func() (any, error) {
		return v.refresh(ctx)
	})
	result, _ := val.(RefreshResult)
	result.Shared = shared
	return result, err
}

func (v *ViewAdapter) refresh(ctx context.Context) (RefreshResult, error) {
	var result RefreshResult

	syncResult, syncErr := v.commands.SyncNewItems(ctx)
	result.Sync = syncResult
	if syncErr != nil {
		v.logger.Warn("near-end sync failed", "error", syncErr)
	}

	// Repair runs even when the page fetch failed; it only needs the cache.
	repairResult, repairErr := v.commands.RepairMissingContent(ctx)
	result.Repair = repairResult
	if repairErr != nil {
		v.logger.Warn("near-end repair failed", "error", repairErr)
	}

	return result, errors.Join(syncErr, repairErr)
}

// OnPosition triggers NotifyNearEnd when fewer than the threshold of items
// remain past position. It reports whether a refresh ran.
func (v *ViewAdapter) OnPosition(ctx context.Context, position int) (bool, error) {
	total, err := v.queries.Count()
	if err != nil {
		return false, err
	}
	if total-position-1 >= v.threshold {
		return false, nil
	}
	v.logger.Debug("near end of cache", "position", position, "total", total)
	_, err = v.NotifyNearEnd(ctx)
	return true, err
}

// Search ranks cached records by fuzzy title match.
// Records without a title are never matched. Results carry no content.
func (v *ViewAdapter) Search(query string) ([]domain.CachedRecord, error) {
	if query == "" {
		return nil, nil
	}

	recs, err := fetchAll(v.queries.GetPageMeta, defaultChunkSize)
	if err != nil {
		return nil, err
	}

	titles := make([]string, len(recs))
	for i, rec := range recs {
		titles[i] = rec.Title
	}

	matches := fuzzy.RankFindFold(query, titles)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	results := make([]domain.CachedRecord, 0, len(matches))
	for _, m := range matches {
		results = append(results, recs[m.OriginalIndex])
	}
	v.logger.Debug("search complete", "query", query, "results", len(results))
	return results, nil
}

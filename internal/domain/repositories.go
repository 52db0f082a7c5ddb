package domain

import (
	"context"
)

// FeedRepository provides access to the remote gallery feed
type FeedRepository interface {
	// FetchPage returns the surviving candidate items of one feed page, in upstream order.
	// Errors wrap ErrNetwork or ErrDecode.
	FetchPage(ctx context.Context, page int) ([]GalleryItem, error)
}

// ContentFetcher downloads a binary payload and attaches it to the cached record
type ContentFetcher interface {
	// Fetch retrieves url and stores it as the content of record id.
	// On failure the record is left in its prior state.
	Fetch(ctx context.Context, url, id string) error
}

// SyncCommands: operations that hit the network.
// Implemented by gallery.Commands.
type SyncCommands interface {
	SyncNewItems(ctx context.Context) (SyncResult, error)
	RepairMissingContent(ctx context.Context) (RepairResult, error)
}

// CacheQueries: synchronous, cache-only reads.
// All methods return without touching the network.
type CacheQueries interface {
	GetPage(offset, limit int) ([]CachedRecord, error)
	GetPageMeta(offset, limit int) ([]CachedRecord, error) // GetPage without Content
	Get(id string) (CachedRecord, bool, error)
	Count() (int, error)
	OnChange(fn func(ChangeEvent)) (unsubscribe func())
}

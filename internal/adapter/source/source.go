package source

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/gallerysync/internal/adapter"
	"github.com/mmcdole/gallerysync/internal/adapter/source/imgur"
	"github.com/mmcdole/gallerysync/internal/domain"
)

// NewFeed creates the feed client for cfg.
// An empty client id is accepted; FetchPage then fails with domain.ErrNotConfigured.
func NewFeed(cfg *adapter.Config, logger *slog.Logger) (domain.FeedRepository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config is nil")
	}
	if cfg.Feed.URL == "" {
		return nil, fmt.Errorf("feed URL is required")
	}
	return imgur.NewClient(cfg.Feed.URL, cfg.Feed.ClientID, cfg.Feed.QueryTags, cfg.Feed.Timeout, logger), nil
}

package tui

import (
	"github.com/mmcdole/gallerysync/internal/domain"
	"github.com/mmcdole/gallerysync/internal/service"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PageLoadedMsg carries records read from the cache.
// Offset 0 replaces the list; any other offset appends.
type PageLoadedMsg struct {
	Records []domain.CachedRecord
	Offset  int
	Total   int
	Err     error
}

// CacheChangedMsg signals that the store committed a mutation
type CacheChangedMsg struct {
	Event domain.ChangeEvent
}

// SyncProgressMsg forwards a sync cycle state transition
type SyncProgressMsg struct {
	Progress domain.SyncProgress
}

// RefreshDoneMsg signals that a near-end refresh finished
type RefreshDoneMsg struct {
	Result service.RefreshResult
	Err    error
}

// PositionCheckedMsg reports whether a cursor move triggered a refresh
type PositionCheckedMsg struct {
	Fired bool
	Err   error
}

// OpenedMsg signals that a record was handed to the image viewer
type OpenedMsg struct {
	ID   string
	Path string
}

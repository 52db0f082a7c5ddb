package components

import (
	"github.com/mmcdole/gallerysync/internal/domain"
)

// SyncStatus represents the state of the most recent sync cycle
type SyncStatus int

const (
	StatusIdle SyncStatus = iota
	StatusSyncing
	StatusSynced
	StatusError
)

// SyncState tracks the cycle shown in the status bar
type SyncState struct {
	Status SyncStatus
	Step   domain.SyncState
	Page   int
	Error  error
}

// Apply folds a progress report into the state.
func (s SyncState) Apply(p domain.SyncProgress) SyncState {
	s.Step = p.State
	s.Page = p.Page
	switch {
	case p.State != domain.StateIdle:
		s.Status = StatusSyncing
		s.Error = nil
	case p.Error != nil:
		s.Status = StatusError
		s.Error = p.Error
	default:
		s.Status = StatusSynced
		s.Error = nil
	}
	return s
}

// Label is the short status bar text for the state.
func (s SyncState) Label() string {
	switch s.Status {
	case StatusSyncing:
		switch s.Step {
		case domain.StateFetchingPage:
			return "fetching page"
		case domain.StateFiltering:
			return "filtering"
		case domain.StatePersistingSkeletons:
			return "saving"
		case domain.StateDownloadingContent:
			return "downloading"
		}
		return "syncing"
	case StatusSynced:
		return "synced"
	case StatusError:
		return "sync failed"
	default:
		return ""
	}
}

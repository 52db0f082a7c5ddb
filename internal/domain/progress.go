package domain

// SyncState is a step of one sync cycle.
type SyncState int

const (
	StateIdle SyncState = iota
	StateFetchingPage
	StateFiltering
	StatePersistingSkeletons
	StateDownloadingContent
)

func (s SyncState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchingPage:
		return "fetching_page"
	case StateFiltering:
		return "filtering"
	case StatePersistingSkeletons:
		return "persisting_skeletons"
	case StateDownloadingContent:
		return "downloading_content"
	default:
		return "unknown"
	}
}

// SyncProgress reports a state transition of one cycle.
type SyncProgress struct {
	CycleID string
	State   SyncState
	Page    int
	Error   error // Set on the final Idle transition when the cycle failed
}

// SyncObserver receives progress updates during sync cycles.
type SyncObserver interface {
	OnProgress(progress SyncProgress)
}

// NoOpObserver discards progress updates (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnProgress(SyncProgress) {}

// SyncResult summarizes one SyncNewItems cycle.
type SyncResult struct {
	CycleID    string
	Page       int // Feed page that was fetched
	Fetched    int // Items surviving the feed filters
	Inserted   int // New skeletons written
	Skipped    int // Ids already cached
	Dispatched int // Downloads started
	Failed     int // Items whose skeleton write failed
}

// RepairResult summarizes one RepairMissingContent pass.
type RepairResult struct {
	Missing    int // Records without content at snapshot time
	Dispatched int // Downloads started
	Suppressed int // Already in flight
}

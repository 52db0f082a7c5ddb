package domain

// ContentStore handles the local record cache (BoltDB or memory).
// It exclusively owns all CachedRecord instances; callers only hold copies.
type ContentStore interface {
	// === Writes (serialized, linearizable per id) ===
	UpsertSkeleton(id, title, sourceURL string) (UpsertOutcome, error)
	AttachContent(id string, content []byte, retrievedAt string) (AttachOutcome, error)

	// === Reads ===
	Get(id string) (CachedRecord, bool, error)
	ListMissingContent() ([]CachedRecord, error)
	List(offset, limit int) ([]CachedRecord, error)
	ListMeta(offset, limit int) ([]CachedRecord, error) // List without Content
	Count() (int, error)

	// === Feed position ===
	PageCursor() (int, error)
	SavePageCursor(page int) error

	// === Change notification ===
	// Subscribe registers fn for every committed mutation, delivered in commit order.
	// The returned func unsubscribes and may be called from inside fn.
	Subscribe(fn func(ChangeEvent)) (unsubscribe func())

	// === Lifecycle ===
	Close() error
}

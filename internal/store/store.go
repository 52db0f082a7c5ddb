package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mmcdole/gallerysync/internal/domain"
)

// dbFileName is the BoltDB file inside the per-feed cache directory.
const dbFileName = "gallery.db"

// firstPage is the feed position used before any cursor was saved.
const firstPage = 1

// backend is the persistence layer under ContentStore.
// Mutating methods are only called with ContentStore.writeMu held.
type backend interface {
	upsertSkeleton(id, title, sourceURL string) (domain.UpsertOutcome, uint64, error)
	attachContent(id string, content []byte, retrievedAt string) (domain.AttachOutcome, uint64, error)
	get(id string) (domain.CachedRecord, bool, error)
	list(offset, limit int, withContent bool) ([]domain.CachedRecord, error)
	listMissing() ([]domain.CachedRecord, error)
	count() (int, error)
	pageCursor() (int, error)
	savePageCursor(page int) error
	close() error
}

// ContentStore implements domain.ContentStore using BoltDB.
// An empty cache dir selects a memory-only backend with identical semantics.
type ContentStore struct {
	backend backend

	// writeMu serializes every mutation and its notification so events
	// are published in commit order.
	writeMu sync.Mutex

	hub *notifier
}

var _ domain.ContentStore = (*ContentStore)(nil)

// NewContentStore opens the cache for feedURL under baseCacheDir.
func NewContentStore(baseCacheDir, feedURL string) (*ContentStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return newContentStore(newMemoryBackend()), nil
	}

	dir := baseCacheDir
	if feedURL != "" {
		dir = filepath.Join(baseCacheDir, hashFeedURL(feedURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create cache dir: %w", domain.ErrStore, err)
	}

	b, err := openBoltBackend(filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	return newContentStore(b), nil
}

func newContentStore(b backend) *ContentStore {
	return &ContentStore{backend: b, hub: newNotifier()}
}

// hashFeedURL keeps caches of different feeds apart.
func hashFeedURL(feedURL string) string {
	normalized := strings.TrimRight(strings.ToLower(feedURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

// Close stops notification delivery and releases the database.
func (s *ContentStore) Close() error {
	// Drain pending events first; subscribers may still write while draining.
	s.hub.close()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.backend.close()
}

// === Writes ===

// UpsertSkeleton creates a record without content unless id is already cached.
func (s *ContentStore) UpsertSkeleton(id, title, sourceURL string) (domain.UpsertOutcome, error) {
	if id == "" {
		return 0, fmt.Errorf("%w: empty record id", domain.ErrStore)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	outcome, seq, err := s.backend.upsertSkeleton(id, title, sourceURL)
	if err != nil {
		return 0, fmt.Errorf("%w: upsert skeleton %q: %w", domain.ErrStore, id, err)
	}
	if outcome == domain.UpsertInserted {
		s.hub.publish(domain.ChangeEvent{Kind: domain.ChangeInserted, ID: id, Seq: seq})
	}
	return outcome, nil
}

// AttachContent stores the payload of id together with its retrieval time.
// A missing record is created complete; a complete record is never rewritten.
func (s *ContentStore) AttachContent(id string, content []byte, retrievedAt string) (domain.AttachOutcome, error) {
	if id == "" {
		return 0, fmt.Errorf("%w: empty record id", domain.ErrStore)
	}
	if retrievedAt == "" {
		return 0, fmt.Errorf("%w: attach %q: retrieval time is required", domain.ErrStore, id)
	}
	if content == nil {
		content = []byte{}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	outcome, seq, err := s.backend.attachContent(id, content, retrievedAt)
	if err != nil {
		return 0, fmt.Errorf("%w: attach content %q: %w", domain.ErrStore, id, err)
	}

	switch outcome {
	case domain.AttachUpdated:
		s.hub.publish(domain.ChangeEvent{Kind: domain.ChangeUpdated, ID: id, Seq: seq})
	case domain.AttachNotFound:
		s.hub.publish(domain.ChangeEvent{Kind: domain.ChangeInserted, ID: id, Seq: seq})
	}
	return outcome, nil
}

// === Reads ===

func (s *ContentStore) Get(id string) (domain.CachedRecord, bool, error) {
	rec, ok, err := s.backend.get(id)
	if err != nil {
		return domain.CachedRecord{}, false, fmt.Errorf("%w: get %q: %w", domain.ErrStore, id, err)
	}
	return rec, ok, nil
}

// ListMissingContent returns a snapshot of skeleton records in insertion order.
func (s *ContentStore) ListMissingContent() ([]domain.CachedRecord, error) {
	recs, err := s.backend.listMissing()
	if err != nil {
		return nil, fmt.Errorf("%w: list missing content: %w", domain.ErrStore, err)
	}
	return recs, nil
}

// List returns records in insertion order. A limit <= 0 returns everything after offset.
func (s *ContentStore) List(offset, limit int) ([]domain.CachedRecord, error) {
	if offset < 0 {
		offset = 0
	}
	recs, err := s.backend.list(offset, limit, true)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", domain.ErrStore, err)
	}
	return recs, nil
}

// ListMeta is List without content bytes. RetrievedAt is still set, so
// HasContent reports the real status.
func (s *ContentStore) ListMeta(offset, limit int) ([]domain.CachedRecord, error) {
	if offset < 0 {
		offset = 0
	}
	recs, err := s.backend.list(offset, limit, false)
	if err != nil {
		return nil, fmt.Errorf("%w: list metadata: %w", domain.ErrStore, err)
	}
	return recs, nil
}

func (s *ContentStore) Count() (int, error) {
	n, err := s.backend.count()
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrStore, err)
	}
	return n, nil
}

// === Feed position ===

// PageCursor returns the feed page the next sync cycle should fetch.
func (s *ContentStore) PageCursor() (int, error) {
	page, err := s.backend.pageCursor()
	if err != nil {
		return 0, fmt.Errorf("%w: read page cursor: %w", domain.ErrStore, err)
	}
	if page < firstPage {
		page = firstPage
	}
	return page, nil
}

func (s *ContentStore) SavePageCursor(page int) error {
	if page < firstPage {
		page = firstPage
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.savePageCursor(page); err != nil {
		return fmt.Errorf("%w: save page cursor: %w", domain.ErrStore, err)
	}
	return nil
}

// === Change notification ===

func (s *ContentStore) Subscribe(fn func(domain.ChangeEvent)) func() {
	return s.hub.subscribe(fn)
}

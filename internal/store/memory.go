package store

import (
	"sync"

	"github.com/mmcdole/gallerysync/internal/domain"
)

// memoryBackend keeps records in process memory. Used when no cache dir is configured.
type memoryBackend struct {
	mu      sync.RWMutex
	records map[string]domain.CachedRecord
	order   []string
	cursor  int
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{records: make(map[string]domain.CachedRecord)}
}

func (m *memoryBackend) close() error { return nil }

// insertLocked appends rec with the next sequence. Caller holds m.mu.
func (m *memoryBackend) insertLocked(rec domain.CachedRecord) uint64 {
	m.order = append(m.order, rec.ID)
	rec.Seq = uint64(len(m.order))
	m.records[rec.ID] = rec
	return rec.Seq
}

func (m *memoryBackend) upsertSkeleton(id, title, sourceURL string) (domain.UpsertOutcome, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; ok {
		return domain.UpsertAlreadyExists, 0, nil
	}
	seq := m.insertLocked(domain.CachedRecord{ID: id, Title: title, SourceURL: sourceURL})
	return domain.UpsertInserted, seq, nil
}

func (m *memoryBackend) attachContent(id string, content []byte, retrievedAt string) (domain.AttachOutcome, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(content))
	copy(stored, content)

	rec, ok := m.records[id]
	switch {
	case !ok:
		seq := m.insertLocked(domain.CachedRecord{ID: id, RetrievedAt: retrievedAt, Content: stored})
		return domain.AttachNotFound, seq, nil
	case rec.HasContent():
		return domain.AttachAlreadyComplete, rec.Seq, nil
	default:
		rec.RetrievedAt = retrievedAt
		rec.Content = stored
		m.records[id] = rec
		return domain.AttachUpdated, rec.Seq, nil
	}
}

// copyRecord detaches the returned record from the stored payload.
func copyRecord(rec domain.CachedRecord, withContent bool) domain.CachedRecord {
	if !withContent || rec.Content == nil {
		rec.Content = nil
		return rec
	}
	c := make([]byte, len(rec.Content))
	copy(c, rec.Content)
	rec.Content = c
	return rec
}

func (m *memoryBackend) get(id string) (domain.CachedRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return domain.CachedRecord{}, false, nil
	}
	return copyRecord(rec, true), true, nil
}

func (m *memoryBackend) list(offset, limit int, withContent bool) ([]domain.CachedRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset >= len(m.order) {
		return nil, nil
	}
	ids := m.order[offset:]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	recs := make([]domain.CachedRecord, 0, len(ids))
	for _, id := range ids {
		recs = append(recs, copyRecord(m.records[id], withContent))
	}
	return recs, nil
}

func (m *memoryBackend) listMissing() ([]domain.CachedRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var recs []domain.CachedRecord
	for _, id := range m.order {
		if rec := m.records[id]; rec.IsSkeleton() {
			recs = append(recs, copyRecord(rec, false))
		}
	}
	return recs, nil
}

func (m *memoryBackend) count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order), nil
}

func (m *memoryBackend) pageCursor() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor, nil
}

func (m *memoryBackend) savePageCursor(page int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursor = page
	return nil
}

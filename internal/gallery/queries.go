package gallery

import "github.com/mmcdole/gallerysync/internal/domain"

// Queries provides synchronous, cache-only reads.
// Implements domain.CacheQueries.
type Queries struct {
	store domain.ContentStore
}

var _ domain.CacheQueries = (*Queries)(nil)

// NewQueries creates a new Queries instance.
func NewQueries(store domain.ContentStore) *Queries {
	return &Queries{store: store}
}

func (q *Queries) GetPage(offset, limit int) ([]domain.CachedRecord, error) {
	return q.store.List(offset, limit)
}

func (q *Queries) GetPageMeta(offset, limit int) ([]domain.CachedRecord, error) {
	return q.store.ListMeta(offset, limit)
}

func (q *Queries) Get(id string) (domain.CachedRecord, bool, error) {
	return q.store.Get(id)
}

func (q *Queries) Count() (int, error) {
	return q.store.Count()
}

func (q *Queries) OnChange(fn func(domain.ChangeEvent)) func() {
	return q.store.Subscribe(fn)
}

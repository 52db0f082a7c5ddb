package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/gallerysync/internal/domain"
)

func TestSubscribe_DeliversInCommitOrder(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ch := make(chan domain.ChangeEvent, 16)
			unsubscribe := s.Subscribe(func(e domain.ChangeEvent) { ch <- e })
			defer unsubscribe()

			_, err := s.UpsertSkeleton("a", "A", "u")
			require.NoError(t, err)
			_, err = s.UpsertSkeleton("a", "A", "u") // no-op, no event
			require.NoError(t, err)
			_, err = s.UpsertSkeleton("b", "B", "u")
			require.NoError(t, err)
			_, err = s.AttachContent("a", []byte("x"), testRetrievedAt)
			require.NoError(t, err)
			_, err = s.AttachContent("a", []byte("y"), testRetrievedAt) // already complete, no event
			require.NoError(t, err)
			_, err = s.AttachContent("c", []byte("z"), testRetrievedAt)
			require.NoError(t, err)

			got := waitEvents(t, ch, 4)
			assert.Equal(t, []domain.ChangeEvent{
				{Kind: domain.ChangeInserted, ID: "a", Seq: 1},
				{Kind: domain.ChangeInserted, ID: "b", Seq: 2},
				{Kind: domain.ChangeUpdated, ID: "a", Seq: 1},
				{Kind: domain.ChangeInserted, ID: "c", Seq: 3},
			}, got)

			select {
			case e := <-ch:
				t.Fatalf("unexpected extra event: %+v", e)
			case <-time.After(50 * time.Millisecond):
			}
		})
	}
}

func TestSubscribe_UnsubscribeInsideCallback(t *testing.T) {
	s, err := NewContentStore("", "")
	require.NoError(t, err)
	defer s.Close()

	var (
		mu    sync.Mutex
		calls int
	)
	var unsubscribe func()
	unsubscribe = s.Subscribe(func(domain.ChangeEvent) {
		mu.Lock()
		calls++
		mu.Unlock()
		unsubscribe()
	})

	other := make(chan domain.ChangeEvent, 4)
	defer s.Subscribe(func(e domain.ChangeEvent) { other <- e })()

	_, err = s.UpsertSkeleton("one", "1", "u")
	require.NoError(t, err)
	_, err = s.UpsertSkeleton("two", "2", "u")
	require.NoError(t, err)

	waitEvents(t, other, 2)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "callback must not run after unsubscribing")
}

func TestSubscribe_CallbackMayWriteToStore(t *testing.T) {
	s, err := NewContentStore(t.TempDir(), "")
	require.NoError(t, err)
	defer s.Close()

	ch := make(chan domain.ChangeEvent, 4)
	defer s.Subscribe(func(e domain.ChangeEvent) {
		if e.Kind == domain.ChangeInserted {
			if _, err := s.AttachContent(e.ID, []byte("auto"), testRetrievedAt); err != nil {
				t.Errorf("attach from callback: %v", err)
			}
		}
		ch <- e
	})()

	_, err = s.UpsertSkeleton("loop", "Loop", "u")
	require.NoError(t, err)

	got := waitEvents(t, ch, 2)
	assert.Equal(t, domain.ChangeInserted, got[0].Kind)
	assert.Equal(t, domain.ChangeUpdated, got[1].Kind)
}

func TestClose_DeliversPendingEvents(t *testing.T) {
	s, err := NewContentStore("", "")
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		ids []string
	)
	s.Subscribe(func(e domain.ChangeEvent) {
		mu.Lock()
		ids = append(ids, e.ID)
		mu.Unlock()
	})

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.UpsertSkeleton(id, id, "u")
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestSubscribe_NilCallback(t *testing.T) {
	s, err := NewContentStore("", "")
	require.NoError(t, err)
	defer s.Close()

	unsubscribe := s.Subscribe(nil)
	unsubscribe()
	unsubscribe()

	_, err = s.UpsertSkeleton("a", "A", "u")
	assert.NoError(t, err)
}

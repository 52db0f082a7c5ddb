package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/gallerysync/internal/adapter"
	"github.com/mmcdole/gallerysync/internal/domain"
	"github.com/mmcdole/gallerysync/internal/gallery"
	"github.com/mmcdole/gallerysync/internal/store"
)

// fakeCommands counts cycles; when gate is set SyncNewItems blocks on it.
type fakeCommands struct {
	gate    chan struct{}
	started chan struct{}
	syncErr error

	syncs   atomic.Int32
	repairs atomic.Int32
}

func (f *fakeCommands) SyncNewItems(context.Context) (domain.SyncResult, error) {
	f.syncs.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return domain.SyncResult{Inserted: 1}, f.syncErr
}

func (f *fakeCommands) RepairMissingContent(context.Context) (domain.RepairResult, error) {
	f.repairs.Add(1)
	return domain.RepairResult{Missing: 2}, nil
}

func newTestView(t *testing.T, titles ...string) (*ViewAdapter, *store.ContentStore, *fakeCommands) {
	t.Helper()
	s, err := store.NewContentStore("", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	for i, title := range titles {
		_, err := s.UpsertSkeleton(fmt.Sprintf("id%d", i), title, "u")
		require.NoError(t, err)
	}

	cmds := &fakeCommands{}
	return NewViewAdapter(gallery.NewQueries(s), cmds, 3, adapter.NullLogger()), s, cmds
}

func TestViewAdapter_GetPage(t *testing.T) {
	v, _, _ := newTestView(t, "one", "two", "three", "four")

	page, err := v.GetPage(1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "two", page[0].Title)
	assert.Equal(t, "three", page[1].Title)

	n, err := v.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestViewAdapter_Get(t *testing.T) {
	v, _, _ := newTestView(t, "one")

	rec, err := v.Get("id0")
	require.NoError(t, err)
	assert.Equal(t, "one", rec.Title)

	_, err = v.Get("nope")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestViewAdapter_OnChange(t *testing.T) {
	v, s, _ := newTestView(t)

	events := make(chan domain.ChangeEvent, 4)
	unsubscribe := v.OnChange(func(e domain.ChangeEvent) { events <- e })
	defer unsubscribe()

	_, err := s.UpsertSkeleton("a", "A", "u")
	require.NoError(t, err)

	select {
	case e := <-events:
		assert.Equal(t, domain.ChangeInserted, e.Kind)
		assert.Equal(t, "a", e.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no change event")
	}
}

func TestViewAdapter_NotifyNearEndRunsSyncThenRepair(t *testing.T) {
	v, _, cmds := newTestView(t)

	result, err := v.NotifyNearEnd(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sync.Inserted)
	assert.Equal(t, 2, result.Repair.Missing)
	assert.False(t, result.Shared)
	assert.EqualValues(t, 1, cmds.syncs.Load())
	assert.EqualValues(t, 1, cmds.repairs.Load())
}

func TestViewAdapter_NotifyNearEndRepairsAfterSyncError(t *testing.T) {
	v, _, cmds := newTestView(t)
	cmds.syncErr = fmt.Errorf("%w: offline", domain.ErrNetwork)

	_, err := v.NotifyNearEnd(context.Background())
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.EqualValues(t, 1, cmds.repairs.Load())
}

func TestViewAdapter_NotifyNearEndCoalesces(t *testing.T) {
	v, _, cmds := newTestView(t)
	cmds.gate = make(chan struct{})
	cmds.started = make(chan struct{}, 1)

	ctx := context.Background()
	var wg sync.WaitGroup
	results := make(chan RefreshResult, 5)

	wg.Add(1)
	go func() {
		defer wg.Done()
		r, _ := v.NotifyNearEnd(ctx)
		results <- r
	}()
	<-cmds.started

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, _ := v.NotifyNearEnd(ctx)
			results <- r
		}()
	}

	// Give the joiners time to reach the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(cmds.gate)
	wg.Wait()
	close(results)

	shared := 0
	for r := range results {
		if r.Shared {
			shared++
		}
	}
	assert.EqualValues(t, 1, cmds.syncs.Load())
	assert.Equal(t, 5, shared)
}

func TestViewAdapter_OnPosition(t *testing.T) {
	// threshold is 3; six records
	v, _, cmds := newTestView(t, "a", "b", "c", "d", "e", "f")
	ctx := context.Background()

	tests := []struct {
		position int
		want     bool
	}{
		{0, false},
		{2, false}, // three remain
		{3, true},  // two remain
		{5, true},
	}
	for _, tt := range tests {
		fired, err := v.OnPosition(ctx, tt.position)
		require.NoError(t, err)
		assert.Equal(t, tt.want, fired, "position %d", tt.position)
	}
	assert.EqualValues(t, 2, cmds.syncs.Load())
}

func TestViewAdapter_OnPositionEmptyCache(t *testing.T) {
	v, _, cmds := newTestView(t)

	fired, err := v.OnPosition(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.EqualValues(t, 1, cmds.syncs.Load())
}

func TestViewAdapter_Search(t *testing.T) {
	v, _, _ := newTestView(t, "Cute cat picture", "Dog at the beach", "", "catalog of cats")

	results, err := v.Search("cat")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "Dog at the beach", r.Title)
		assert.NotEmpty(t, r.Title)
	}

	results, err = v.Search("BEACH")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "id1", results[0].ID)

	results, err = v.Search("")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestViewAdapter_SearchSkipsContent(t *testing.T) {
	v, s, _ := newTestView(t)
	payload := make([]byte, 1<<20)
	for i := range 5 {
		_, err := s.AttachContent(fmt.Sprintf("dog%d", i), payload, "2021-09-02T10:00:00Z")
		require.NoError(t, err)
	}
	_, err := s.UpsertSkeleton("dog-pending", "dog at the park", "u")
	require.NoError(t, err)

	results, err := v.Search("dog")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "dog-pending", results[0].ID)

	page, err := v.GetPageMeta(0, 0)
	require.NoError(t, err)
	require.Len(t, page, 6)
	for _, rec := range page {
		assert.Nil(t, rec.Content, rec.ID)
	}
	assert.True(t, page[0].HasContent())

	full, err := v.GetPage(0, 1)
	require.NoError(t, err)
	assert.Len(t, full[0].Content, len(payload))
}

func TestViewAdapter_Export(t *testing.T) {
	v, s, _ := newTestView(t, "pending")
	png := []byte("\x89PNG\r\n\x1a\n0000")
	_, err := s.AttachContent("done", png, "2021-09-02T10:00:00Z")
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	rec, err := v.Export("done", path)
	require.NoError(t, err)
	assert.Equal(t, "done", rec.ID)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, png, written)

	_, err = v.Export("id0", filepath.Join(dir, "x"))
	assert.ErrorIs(t, err, ErrContentPending)

	_, err = v.Export("missing", filepath.Join(dir, "y"))
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	tmp, err := v.ExportTemp("done", dir)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(tmp))
}

func TestViewAdapter_ExportTempSanitizesID(t *testing.T) {
	v, s, _ := newTestView(t)
	_, err := s.AttachContent("../a/b", []byte("GIF89a...."), "2021-09-02T10:00:00Z")
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := v.ExportTemp("../a/b", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "gallerysync-___a_b-"), filepath.Base(path))
	assert.Equal(t, ".gif", filepath.Ext(path))
}

func TestContentExtension(t *testing.T) {
	assert.Equal(t, ".jpg", ContentExtension([]byte("\xff\xd8\xff\xe0 JFIF")))
	assert.Equal(t, ".gif", ContentExtension([]byte("GIF89a....")))
	assert.Equal(t, ".bin", ContentExtension([]byte("plain text")))
}

func TestFetchAll_Chunks(t *testing.T) {
	data := []int{1, 2, 3, 4, 5}
	var calls []int
	fetch := func(offset, limit int) ([]int, error) {
		calls = append(calls, offset)
		end := min(offset+limit, len(data))
		if offset >= end {
			return nil, nil
		}
		return data[offset:end], nil
	}

	all, err := fetchAll(fetch, 2)
	require.NoError(t, err)
	assert.Equal(t, data, all)
	assert.Equal(t, []int{0, 2, 4}, calls)

	all, err = fetchAll(fetch, 5)
	require.NoError(t, err)
	assert.Equal(t, data, all)
}

package tui

import (
	"context"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/gallerysync/internal/adapter"
	"github.com/mmcdole/gallerysync/internal/domain"
	"github.com/mmcdole/gallerysync/internal/gallery"
	"github.com/mmcdole/gallerysync/internal/service"
	"github.com/mmcdole/gallerysync/internal/store"
)

type idleCommands struct{}

func (idleCommands) SyncNewItems(context.Context) (domain.SyncResult, error) {
	return domain.SyncResult{Page: 1}, nil
}

func (idleCommands) RepairMissingContent(context.Context) (domain.RepairResult, error) {
	return domain.RepairResult{}, nil
}

type recordingOpener struct{ paths []string }

func (o *recordingOpener) Open(path string) error {
	o.paths = append(o.paths, path)
	return nil
}

func newTestModel(t *testing.T) (Model, *store.ContentStore, *recordingOpener) {
	t.Helper()
	s, err := store.NewContentStore("", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	view := service.NewViewAdapter(gallery.NewQueries(s), idleCommands{}, 10, adapter.NullLogger())
	opener := &recordingOpener{}
	m := NewModel(context.Background(), view, opener, make(chan domain.ChangeEvent), make(chan domain.SyncProgress))

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return updated.(Model), s, opener
}

func TestModel_PageLoadAndChange(t *testing.T) {
	m, s, _ := newTestModel(t)

	_, err := s.UpsertSkeleton("a", "First", "u")
	require.NoError(t, err)

	msg := LoadPageCmd(m.view, 0, PageSize)()
	updated, _ := m.Update(msg)
	m = updated.(Model)
	assert.Equal(t, 1, m.Total)
	assert.Equal(t, 1, m.List.Len())
	assert.False(t, m.loading)

	// a change while idle starts a reload
	updated, cmd := m.Update(CacheChangedMsg{Event: domain.ChangeEvent{Kind: domain.ChangeInserted, ID: "b"}})
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.True(t, m.loading)

	// a change during the reload is remembered
	updated, _ = m.Update(CacheChangedMsg{})
	m = updated.(Model)
	assert.True(t, m.reloadPending)

	updated, cmd = m.Update(PageLoadedMsg{Records: nil, Offset: 0, Total: 1})
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.False(t, m.reloadPending)
	assert.True(t, m.loading)
}

func TestModel_SyncProgressAndRefresh(t *testing.T) {
	m, _, _ := newTestModel(t)

	updated, _ := m.Update(SyncProgressMsg{Progress: domain.SyncProgress{State: domain.StateFetchingPage}})
	m = updated.(Model)
	assert.Contains(t, m.View(), "fetching page")

	updated, _ = m.Update(RefreshDoneMsg{Result: service.RefreshResult{Sync: domain.SyncResult{Page: 2, Inserted: 3}}})
	m = updated.(Model)
	updated, _ = m.Update(SyncProgressMsg{Progress: domain.SyncProgress{State: domain.StateIdle}})
	m = updated.(Model)
	assert.Contains(t, m.View(), "page 2: 3 new")
}

func TestModel_OpenSelected(t *testing.T) {
	m, s, opener := newTestModel(t)

	_, err := s.AttachContent("img", []byte("GIF89a...."), "2021-09-02T10:00:00Z")
	require.NoError(t, err)
	updated, _ := m.Update(LoadPageCmd(m.view, 0, PageSize)())
	m = updated.(Model)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	require.NotNil(t, cmd)
	msg := cmd()
	opened, ok := msg.(OpenedMsg)
	require.True(t, ok, "%T", msg)
	t.Cleanup(func() { _ = os.Remove(opened.Path) })
	assert.Equal(t, "img", opened.ID)
	assert.Equal(t, []string{opened.Path}, opener.paths)
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

package components

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/gallerysync/internal/domain"
)

func records(titles ...string) []domain.CachedRecord {
	recs := make([]domain.CachedRecord, len(titles))
	for i, title := range titles {
		recs[i] = domain.CachedRecord{ID: fmt.Sprintf("id%d", i), Title: title, Seq: uint64(i + 1)}
	}
	return recs
}

func typeFilter(l *RecordList, s string) {
	for _, r := range s {
		l.UpdateFilter(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestRecordList_Navigation(t *testing.T) {
	l := NewRecordList()
	l.SetSize(80, 5) // three visible rows
	l.SetRecords(records("a", "b", "c", "d", "e"))

	l.MoveUp()
	assert.Equal(t, 0, l.Cursor())

	l.MoveDown()
	l.MoveDown()
	l.MoveDown()
	assert.Equal(t, 3, l.Cursor())
	assert.Equal(t, 1, l.offset)

	l.GoBottom()
	assert.Equal(t, 4, l.Cursor())
	l.MoveDown()
	assert.Equal(t, 4, l.Cursor())

	l.GoTop()
	assert.Equal(t, 0, l.Cursor())
	assert.Equal(t, 0, l.offset)
}

func TestRecordList_SetRecordsKeepsSelection(t *testing.T) {
	l := NewRecordList()
	l.SetSize(80, 10)
	l.SetRecords(records("a", "b", "c"))
	l.MoveDown()

	rec, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, "id1", rec.ID)

	// id1 is still present after a reload
	l.SetRecords(records("a", "b", "c", "d"))
	rec, ok = l.Selected()
	require.True(t, ok)
	assert.Equal(t, "id1", rec.ID)
}

func TestRecordList_AppendRecords(t *testing.T) {
	l := NewRecordList()
	l.SetSize(80, 10)
	l.SetRecords(records("a", "b"))
	l.AppendRecords([]domain.CachedRecord{{ID: "id2", Title: "c"}})
	assert.Equal(t, 3, l.Len())
}

func TestRecordList_Filter(t *testing.T) {
	l := NewRecordList()
	l.SetSize(80, 10)
	l.SetRecords(records("Cute cat", "Dog at beach", "Catalog"))

	l.StartFilter()
	assert.True(t, l.FilterFocused())
	typeFilter(l, "cat")

	assert.Equal(t, 2, l.Len())
	for i := 0; i < l.Len(); i++ {
		assert.NotEqual(t, "id1", l.records[l.mapIndex(i)].ID)
	}

	// enter keeps the filter but returns keys to navigation
	l.UpdateFilter(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, l.FilterFocused())
	assert.True(t, l.Filtering())

	l.MoveDown()
	selected := l.Position()

	l.ClearFilter()
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, selected, l.Position())
}

func TestRecordList_EscClearsFilter(t *testing.T) {
	l := NewRecordList()
	l.SetSize(80, 10)
	l.SetRecords(records("one", "two"))

	l.StartFilter()
	typeFilter(l, "zzz")
	assert.Zero(t, l.Len())
	assert.Contains(t, l.View(), "No matches")

	l.UpdateFilter(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, l.Filtering())
	assert.Equal(t, 2, l.Len())
}

func TestRecordList_ViewShowsStatus(t *testing.T) {
	l := NewRecordList()
	l.SetSize(80, 10)
	recs := records("pending one", "done one")
	recs[1].RetrievedAt = "2021-09-02T10:00:00Z"
	recs[1].Content = []byte("x")
	l.SetRecords(recs)

	view := l.View()
	assert.Contains(t, view, "pending one")
	assert.Contains(t, view, "pending")
	assert.Contains(t, view, "2021-09-02")
}

func TestHighlightTitle(t *testing.T) {
	parts := highlightTitle("abcd", []int{1, 2})
	require.Len(t, parts, 3)
	assert.Equal(t, "a", parts[0].Text)
	assert.Equal(t, "bc", parts[1].Text)
	assert.True(t, parts[1].Bold)
	assert.Equal(t, "d", parts[2].Text)

	assert.Len(t, highlightTitle("abcd", nil), 1)
}

func TestSyncState_Apply(t *testing.T) {
	var s SyncState

	s = s.Apply(domain.SyncProgress{State: domain.StateDownloadingContent, Page: 2})
	assert.Equal(t, StatusSyncing, s.Status)
	assert.Equal(t, "downloading", s.Label())

	s = s.Apply(domain.SyncProgress{State: domain.StateIdle, Error: domain.ErrNetwork})
	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, "sync failed", s.Label())

	s = s.Apply(domain.SyncProgress{State: domain.StateIdle})
	assert.Equal(t, StatusSynced, s.Status)
	assert.NoError(t, s.Error)
}

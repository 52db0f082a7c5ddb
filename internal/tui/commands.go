package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/gallerysync/internal/domain"
	"github.com/mmcdole/gallerysync/internal/service"
)

// Command factories for async operations

// LoadPageCmd reads a page of records from the cache
func LoadPageCmd(view *service.ViewAdapter, offset, limit int) tea.Cmd {
	return func() tea.Msg {
		records, err := view.GetPageMeta(offset, limit)
		if err != nil {
			return PageLoadedMsg{Offset: offset, Err: ErrMsg{Err: err, Context: "loading records"}}
		}
		total, err := view.Count()
		if err != nil {
			return PageLoadedMsg{Offset: offset, Err: ErrMsg{Err: err, Context: "counting records"}}
		}
		return PageLoadedMsg{Records: records, Offset: offset, Total: total}
	}
}

// RefreshCmd runs a sync cycle and a repair pass
func RefreshCmd(ctx context.Context, view *service.ViewAdapter) tea.Cmd {
	return func() tea.Msg {
		result, err := view.NotifyNearEnd(ctx)
		return RefreshDoneMsg{Result: result, Err: err}
	}
}

// PositionCmd reports the cursor position so the view can refresh near the end
func PositionCmd(ctx context.Context, view *service.ViewAdapter, position int) tea.Cmd {
	return func() tea.Msg {
		fired, err := view.OnPosition(ctx, position)
		return PositionCheckedMsg{Fired: fired, Err: err}
	}
}

// Opener shows a file to the user
type Opener interface {
	Open(path string) error
}

// OpenCmd exports a record's content to a temp file and opens it
func OpenCmd(view *service.ViewAdapter, opener Opener, id string) tea.Cmd {
	return func() tea.Msg {
		path, err := view.ExportTemp(id, "")
		if err != nil {
			return ErrMsg{Err: err, Context: "opening " + id}
		}
		if err := opener.Open(path); err != nil {
			return ErrMsg{Err: err, Context: "opening " + id}
		}
		return OpenedMsg{ID: id, Path: path}
	}
}

// WaitForChangeCmd blocks until the store reports a mutation
func WaitForChangeCmd(ch <-chan domain.ChangeEvent) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return CacheChangedMsg{Event: e}
	}
}

// WaitForProgressCmd blocks until the next sync state transition
func WaitForProgressCmd(ch <-chan domain.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return SyncProgressMsg{Progress: p}
	}
}

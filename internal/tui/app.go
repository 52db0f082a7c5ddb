package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/gallerysync/internal/domain"
	"github.com/mmcdole/gallerysync/internal/service"
	"github.com/mmcdole/gallerysync/internal/tui/components"
	"github.com/mmcdole/gallerysync/internal/tui/styles"
)

const (
	// PageSize is how many records are read from the cache at a time
	PageSize = 50

	// Vertical layout: header line and status line
	ChromeHeight = 2
)

// Model is the main Bubble Tea model for the application
type Model struct {
	ctx      context.Context
	view     *service.ViewAdapter
	opener   Opener
	changes  <-chan domain.ChangeEvent
	progress <-chan domain.SyncProgress

	// UI Components
	List    *components.RecordList
	Spinner spinner.Model
	Help    help.Model

	// Data
	Total int

	// Dimensions
	Width  int
	Height int
	Ready  bool

	// UI state
	StatusMsg   string
	StatusIsErr bool
	Sync        components.SyncState

	loading       bool // cache read in flight
	reloadPending bool // store changed during a read
	refreshing    bool // near-end refresh in flight
}

// NewModel creates the browser over view.
// changes and progress are fed by ChangeForwarder and ChannelObserver.
func NewModel(
	ctx context.Context,
	view *service.ViewAdapter,
	opener Opener,
	changes <-chan domain.ChangeEvent,
	progress <-chan domain.SyncProgress,
) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return Model{
		ctx:        ctx,
		view:       view,
		opener:     opener,
		changes:    changes,
		progress:   progress,
		List:       components.NewRecordList(),
		Spinner:    sp,
		Help:       help.New(),
		loading:    true,
		refreshing: true, // Init starts the first refresh
	}
}

// Init loads the first page and asks for new items, like a fresh view would
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadPageCmd(m.view, 0, PageSize),
		RefreshCmd(m.ctx, m.view),
		WaitForChangeCmd(m.changes),
		WaitForProgressCmd(m.progress),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.List.SetSize(msg.Width, msg.Height-ChromeHeight)
		m.Help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case PageLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.setError(msg.Err)
			return m, nil
		}
		m.Total = msg.Total
		switch {
		case msg.Offset == 0:
			m.List.SetRecords(msg.Records)
		case msg.Offset == len(m.List.Records()):
			m.List.AppendRecords(msg.Records)
		default:
			// Stale append; the list changed underneath it
			m.reloadPending = true
		}
		if m.reloadPending {
			m.reloadPending = false
			return m, m.reload()
		}
		return m, nil

	case CacheChangedMsg:
		cmds := []tea.Cmd{WaitForChangeCmd(m.changes)}
		if m.loading {
			m.reloadPending = true
		} else {
			cmds = append(cmds, m.reload())
		}
		return m, tea.Batch(cmds...)

	case SyncProgressMsg:
		m.Sync = m.Sync.Apply(msg.Progress)
		return m, WaitForProgressCmd(m.progress)

	case RefreshDoneMsg:
		m.refreshing = false
		if msg.Err != nil {
			m.setError(msg.Err)
			return m, nil
		}
		m.StatusIsErr = false
		m.StatusMsg = fmt.Sprintf("page %d: %d new, %d downloading",
			msg.Result.Sync.Page,
			msg.Result.Sync.Inserted,
			msg.Result.Sync.Dispatched+msg.Result.Repair.Dispatched,
		)
		return m, nil

	case OpenedMsg:
		m.StatusIsErr = false
		m.StatusMsg = "opened " + msg.Path
		return m, nil

	case PositionCheckedMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
		}
		return m, nil

	case ErrMsg:
		m.setError(msg)
		return m, nil
	}

	return m, nil
}

func (m *Model) setError(err error) {
	m.StatusMsg = err.Error()
	m.StatusIsErr = true
}

// reload re-reads every record currently shown.
func (m *Model) reload() tea.Cmd {
	m.loading = true
	return LoadPageCmd(m.view, 0, max(len(m.List.Records()), PageSize))
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.List.FilterFocused() {
		return m, m.List.UpdateFilter(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Up):
		m.List.MoveUp()
		return m, m.afterMove()

	case key.Matches(msg, Keys.Down):
		m.List.MoveDown()
		return m, m.afterMove()

	case key.Matches(msg, Keys.PageUp):
		m.List.PageUp()
		return m, m.afterMove()

	case key.Matches(msg, Keys.PageDown):
		m.List.PageDown()
		return m, m.afterMove()

	case key.Matches(msg, Keys.Home):
		m.List.GoTop()
		return m, m.afterMove()

	case key.Matches(msg, Keys.End):
		m.List.GoBottom()
		return m, m.afterMove()

	case key.Matches(msg, Keys.Filter):
		return m, m.List.StartFilter()

	case key.Matches(msg, Keys.Escape):
		if m.List.Filtering() {
			m.List.ClearFilter()
		}
		return m, nil

	case key.Matches(msg, Keys.Open):
		rec, ok := m.List.Selected()
		if !ok || m.opener == nil {
			return m, nil
		}
		return m, OpenCmd(m.view, m.opener, rec.ID)

	case key.Matches(msg, Keys.Refresh):
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.StatusMsg = ""
		return m, RefreshCmd(m.ctx, m.view)
	}

	return m, nil
}

// afterMove loads the next cache page and reports the position when the
// cursor nears the end of what is loaded.
func (m *Model) afterMove() tea.Cmd {
	if m.List.Filtering() {
		return nil
	}

	var cmds []tea.Cmd
	pos := m.List.Position()
	loaded := len(m.List.Records())
	if !m.loading && loaded < m.Total && pos >= loaded-PageSize/2 {
		m.loading = true
		cmds = append(cmds, LoadPageCmd(m.view, loaded, PageSize))
	}
	cmds = append(cmds, PositionCmd(m.ctx, m.view, pos))
	return tea.Batch(cmds...)
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("gallerysync")
	if m.List.Filtering() {
		header += styles.DimStyle.Render(fmt.Sprintf("  %d matches", m.List.Len()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.List.View(),
		m.renderStatusBar(),
	)
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.refreshing || m.Sync.Status == components.StatusSyncing:
		label := m.Sync.Label()
		if label == "" || m.Sync.Status != components.StatusSyncing {
			label = "syncing"
		}
		left = m.Spinner.View() + " " + label
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	default:
		left = m.Help.ShortHelpView(Keys.ShortHelp())
	}

	position := 0
	if m.List.Len() > 0 {
		position = m.List.Position() + 1
	}
	right := styles.AccentStyle.Render(fmt.Sprintf("%d / %d", position, m.Total))

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.StatusBarStyle.Width(m.Width).Render(left + strings.Repeat(" ", gap) + right)
}

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/gallerysync/internal/domain"
	"github.com/mmcdole/gallerysync/internal/tui/styles"
)

const (
	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2

	// FilterBarLines is the height of the filter input
	FilterBarLines = 1

	retrievedColumnWidth = 19
)

// RecordList is a scrollable, filterable list of cached records.
type RecordList struct {
	records []domain.CachedRecord

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width  int
	height int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	matches      []filterMatch // nil when no query
}

// NewRecordList creates an empty list.
func NewRecordList() *RecordList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &RecordList{filterInput: ti}
}

// SetRecords replaces the list content, keeping the selected record when possible.
func (l *RecordList) SetRecords(records []domain.CachedRecord) {
	selectedID := ""
	if rec, ok := l.Selected(); ok {
		selectedID = rec.ID
	}

	l.records = records
	if l.filterQuery != "" {
		l.applyFilter()
	}

	if selectedID != "" {
		for i := 0; i < l.Len(); i++ {
			if l.records[l.mapIndex(i)].ID == selectedID {
				l.cursor = i
				break
			}
		}
	}
	l.clampCursor()
}

// AppendRecords adds records loaded past the current end.
func (l *RecordList) AppendRecords(records []domain.CachedRecord) {
	l.records = append(l.records, records...)
	if l.filterQuery != "" {
		l.applyFilter()
	}
	l.clampCursor()
}

// Records returns the unfiltered content.
func (l *RecordList) Records() []domain.CachedRecord {
	return l.records
}

// SetSize sets the dimensions of the list
func (l *RecordList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
}

func (l *RecordList) recalcMaxVisible() {
	l.maxVisible = l.height - ScrollIndicatorLines
	if l.filterActive {
		l.maxVisible -= FilterBarLines
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
	l.ensureVisible()
}

// Len returns the number of visible rows (after filtering)
func (l *RecordList) Len() int {
	if l.matches != nil {
		return len(l.matches)
	}
	return len(l.records)
}

// Cursor returns the selected row
func (l *RecordList) Cursor() int {
	return l.cursor
}

// Position returns the index of the selected record in the unfiltered list.
func (l *RecordList) Position() int {
	return l.mapIndex(l.cursor)
}

// Selected returns the record under the cursor.
func (l *RecordList) Selected() (domain.CachedRecord, bool) {
	if l.Len() == 0 {
		return domain.CachedRecord{}, false
	}
	return l.records[l.mapIndex(l.cursor)], true
}

// Filtering reports whether a filter query narrows the list.
func (l *RecordList) Filtering() bool {
	return l.filterActive
}

// FilterFocused reports whether the filter input captures keystrokes.
func (l *RecordList) FilterFocused() bool {
	return l.filterActive && l.filterInput.Focused()
}

// Navigation

func (l *RecordList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
		l.ensureVisible()
	}
}

func (l *RecordList) MoveDown() {
	if l.cursor < l.Len()-1 {
		l.cursor++
		l.ensureVisible()
	}
}

func (l *RecordList) PageDown() {
	l.cursor += l.maxVisible
	l.clampCursor()
}

func (l *RecordList) PageUp() {
	l.cursor -= l.maxVisible
	l.clampCursor()
}

func (l *RecordList) GoTop() {
	l.cursor = 0
	l.ensureVisible()
}

func (l *RecordList) GoBottom() {
	l.cursor = l.Len() - 1
	l.clampCursor()
}

func (l *RecordList) clampCursor() {
	if l.cursor >= l.Len() {
		l.cursor = l.Len() - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.ensureVisible()
}

func (l *RecordList) ensureVisible() {
	// Don't adjust offset if size hasn't been set yet
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

// Filter

// StartFilter opens and focuses the filter input.
func (l *RecordList) StartFilter() tea.Cmd {
	l.filterActive = true
	l.recalcMaxVisible()
	return l.filterInput.Focus()
}

// ClearFilter closes the filter and shows every record again.
func (l *RecordList) ClearFilter() {
	selected := l.Position()
	l.filterActive = false
	l.filterQuery = ""
	l.matches = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.cursor = selected
	l.recalcMaxVisible()
	l.clampCursor()
}

// UpdateFilter feeds a key to the focused filter input.
func (l *RecordList) UpdateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		l.ClearFilter()
		return nil
	case "enter":
		// Accept filter, blur input to allow navigation
		l.filterInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	l.filterInput, cmd = l.filterInput.Update(msg)
	if l.filterInput.Value() != l.filterQuery {
		l.applyFilter()
		l.cursor = 0
		l.offset = 0
	}
	return cmd
}

func (l *RecordList) applyFilter() {
	l.filterQuery = l.filterInput.Value()
	if l.filterQuery == "" {
		l.matches = nil
		return
	}
	l.matches = filterRecords(l.records, l.filterQuery)
}

func (l *RecordList) mapIndex(i int) int {
	if l.matches != nil && i < len(l.matches) {
		return l.matches[i].index
	}
	return i
}

// Rendering

// View renders the list.
func (l *RecordList) View() string {
	itemWidth := l.width
	if itemWidth < 10 {
		itemWidth = 10
	}

	count := l.Len()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render("No items yet")
		if l.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := " \n" + emptyMsg + "\n "
		if l.filterActive {
			content += "\n" + l.filterInput.View()
		}
		return content
	}

	end := min(l.offset+l.maxVisible, count)

	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		var matched []int
		if l.matches != nil {
			matched = l.matches[i].matchedIndexes
		}
		lines = append(lines, l.renderRecord(l.records[l.mapIndex(i)], matched, i == l.cursor, itemWidth))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if l.filterActive {
		content += "\n" + l.filterInput.View()
	}
	return content
}

func (l *RecordList) renderRecord(rec domain.CachedRecord, matched []int, selected bool, width int) string {
	retrieved := "pending"
	if t := rec.RetrievedTime(); !t.IsZero() {
		retrieved = t.Format("2006-01-02 15:04:05")
	}

	// margins, status glyph, and separating spaces
	titleWidth := width - retrievedColumnWidth - 6
	title := rec.Title
	if title == "" {
		title = rec.ID
	}
	title = styles.Truncate(title, titleWidth)
	pad := titleWidth - lipgloss.Width(title)

	status := styles.Green
	if rec.IsSkeleton() {
		status = styles.Amber
	}
	dim := styles.DimGray

	parts := []styles.RowPart{
		{Text: statusChar(rec), Foreground: &status},
		{Text: " "},
	}
	parts = append(parts, highlightTitle(title, matched)...)
	parts = append(parts,
		styles.RowPart{Text: strings.Repeat(" ", max(pad, 0)) + "  "},
		styles.RowPart{Text: fmt.Sprintf("%*s", retrievedColumnWidth, retrieved), Foreground: &dim},
	)
	return styles.RenderListRow(parts, selected, width)
}

func statusChar(rec domain.CachedRecord) string {
	if rec.HasContent() {
		return styles.CompleteChar
	}
	return styles.PendingChar
}

// highlightTitle splits title into parts, emphasizing the fuzzy-matched runes.
func highlightTitle(title string, matched []int) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: title}}
	}

	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	accent := styles.Accent
	var parts []styles.RowPart
	var run strings.Builder
	runHit := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		part := styles.RowPart{Text: run.String()}
		if runHit {
			part.Foreground = &accent
			part.Bold = true
		}
		parts = append(parts, part)
		run.Reset()
	}

	// sahilm/fuzzy reports byte offsets
	for i, r := range title {
		if hit[i] != runHit {
			flush()
			runHit = hit[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}

package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Accent     = lipgloss.Color("#1BB76E")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Amber      = lipgloss.Color("#E5A00D")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Accent)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)
)

// Raw content status characters (unstyled)
const (
	PendingChar  = "●"
	CompleteChar = "✓"
)

// Status bar
var (
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateDark).
			Padding(0, 1)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Accent)
)

// Filter styles
var (
	FilterStyle = lipgloss.NewStyle().
			Foreground(Accent)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Accent).
				Bold(true)
)

// Helper functions

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// RowPart represents a part of a row with optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
	Bold       bool
}

// RenderListRow renders a complete list row with uniform background when selected.
// Each part is styled explicitly to avoid ANSI reset codes breaking the background.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	bg := SlateLight

	var result string
	visibleLen := 0

	for _, part := range parts {
		style := lipgloss.NewStyle().Bold(part.Bold)
		switch {
		case part.Foreground != nil:
			style = style.Foreground(*part.Foreground)
		case selected:
			style = style.Foreground(White)
		default:
			style = style.Foreground(LightGray)
		}
		if selected {
			style = style.Background(bg)
		}
		result += style.Render(part.Text)
		visibleLen += lipgloss.Width(part.Text)
	}

	// Fill to width (minus the two margins)
	padStyle := lipgloss.NewStyle()
	if selected {
		padStyle = padStyle.Background(bg)
	}
	if pad := width - visibleLen - 2; pad > 0 {
		result += padStyle.Render(spaces(pad))
	}

	margin := padStyle.Render(" ")
	return margin + result + margin
}

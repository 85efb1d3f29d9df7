package render

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#7a8597")
	danger = lipgloss.Color("#e53935")
)

// Styles are the lipgloss styles used by Terminal.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Price    lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Enabled  lipgloss.Style
	Disabled lipgloss.Style
	Group    lipgloss.Style
}

// DefaultStyles builds styles for the given renderer, which decides the
// color profile of the output.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:    r.NewStyle().Bold(true).Foreground(accent),
		Header:   r.NewStyle().Bold(true).Underline(true),
		Cell:     r.NewStyle().PaddingRight(2),
		Price:    r.NewStyle().PaddingRight(2).Align(lipgloss.Right),
		Muted:    r.NewStyle().Foreground(muted),
		Error:    r.NewStyle().Foreground(danger).Bold(true),
		Enabled:  r.NewStyle().Bold(true),
		Disabled: r.NewStyle().Foreground(muted).Faint(true),
		Group:    r.NewStyle().Bold(true).Width(14),
	}
}

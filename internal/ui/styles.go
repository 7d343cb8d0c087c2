package ui

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.Color("#2563EB")
	border  = lipgloss.Color("#D1D5DB")
	muted   = lipgloss.Color("#9CA3AF")
	success = lipgloss.Color("#16A34A")
	warning = lipgloss.Color("#D97706")
)

// Styles groups the lipgloss styles the browser renders with.
type Styles struct {
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Active   lipgloss.Style
	Input    lipgloss.Style
	Focused  lipgloss.Style
	Content  lipgloss.Style
	Disabled lipgloss.Style
}

func DefaultStyles() Styles {
	input := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)

	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(primary).Padding(0, 1),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Success:  lipgloss.NewStyle().Foreground(success).Bold(true),
		Warning:  lipgloss.NewStyle().Foreground(warning),
		Active:   lipgloss.NewStyle().Foreground(primary).Bold(true).Underline(true),
		Input:    input,
		Focused:  input.BorderForeground(primary),
		Content:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(border),
		Disabled: lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
	}
}

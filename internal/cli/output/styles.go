package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used across commands.
type Styles struct {
	Header1   lipgloss.Style
	Header2   lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	ModelPath lipgloss.Style
}

// NewStyles builds styles bound to a lipgloss renderer, so the color
// profile follows the destination writer.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFD7")).MarginBottom(1),
		Header2:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#87AFFF")),
		Bold:      r.NewStyle().Bold(true),
		Muted:     r.NewStyle().Foreground(lipgloss.Color("#6C6C6C")),
		Success:   r.NewStyle().Foreground(lipgloss.Color("#00D787")),
		Error:     r.NewStyle().Foreground(lipgloss.Color("#FF005F")).Bold(true),
		Warning:   r.NewStyle().Foreground(lipgloss.Color("#FFAF00")),
		Info:      r.NewStyle().Foreground(lipgloss.Color("#5FAFD7")),
		ModelPath: r.NewStyle().Foreground(lipgloss.Color("#AF87FF")),
	}
}

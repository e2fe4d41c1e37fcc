package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the console's text styles. Colors are dropped automatically
// when the output is not a terminal.
type Styles struct {
	Header  lipgloss.Style
	Prompt  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds styles for the given output.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Prompt:  r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Faint(true),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the text-mode styles. Without a terminal every style is plain.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	// NodeType highlights node and edge type names.
	NodeType lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles returns colored styles when color is true.
func NewStyles(color bool) Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return Styles{
			Header1:       plain,
			Header2:       plain,
			Bold:          plain,
			Muted:         plain,
			Success:       plain,
			Warning:       plain,
			Error:         plain,
			Info:          plain,
			NodeType:      plain,
			StatusSuccess: plain.SetString("✓"),
			StatusWarning: plain.SetString("!"),
			StatusFailed:  plain.SetString("✗"),
		}
	}

	green := lipgloss.Color("10")
	yellow := lipgloss.Color("11")
	red := lipgloss.Color("9")
	cyan := lipgloss.Color("14")
	gray := lipgloss.Color("8")

	return Styles{
		Header1:       lipgloss.NewStyle().Bold(true).Underline(true),
		Header2:       lipgloss.NewStyle().Bold(true),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(gray),
		Success:       lipgloss.NewStyle().Foreground(green),
		Warning:       lipgloss.NewStyle().Foreground(yellow),
		Error:         lipgloss.NewStyle().Foreground(red).Bold(true),
		Info:          lipgloss.NewStyle().Foreground(cyan),
		NodeType:      lipgloss.NewStyle().Foreground(cyan),
		StatusSuccess: lipgloss.NewStyle().Foreground(green).SetString("✓"),
		StatusWarning: lipgloss.NewStyle().Foreground(yellow).SetString("!"),
		StatusFailed:  lipgloss.NewStyle().Foreground(red).SetString("✗"),
	}
}

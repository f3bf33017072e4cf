package components

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ckdrisk/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a fraction in [0,1] followed
// by a caller-formatted value.
type ProgressBar struct {
	Label    string
	Fraction float64
	Value    string
	Width    int
	Fill     color.Color
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, fraction float64, value string, width int) ProgressBar {
	return ProgressBar{
		Label:    label,
		Fraction: fraction,
		Value:    value,
		Width:    width,
		Fill:     theme.Secondary,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	valueWidth := 0
	if p.Value != "" {
		valueWidth = lipgloss.Width(p.Value) + 2
	}

	barWidth := p.Width - lipgloss.Width(result) - valueWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth)*p.Fraction + 0.5)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	result += lipgloss.NewStyle().Background(p.Fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	if p.Value != "" {
		result += "  " + lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(p.Value)
	}

	return result
}

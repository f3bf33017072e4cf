package home

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ckdrisk/internal/ui/theme"
)

const titleFull = ` ██████╗██╗  ██╗██████╗     ██████╗ ██╗███████╗██╗  ██╗
██╔════╝██║ ██╔╝██╔══██╗    ██╔══██╗██║██╔════╝██║ ██╔╝
██║     █████╔╝ ██║  ██║    ██████╔╝██║███████╗█████╔╝
██║     ██╔═██╗ ██║  ██║    ██╔══██╗██║╚════██║██╔═██╗
╚██████╗██║  ██╗██████╔╝    ██║  ██║██║███████║██║  ██╗
 ╚═════╝╚═╝  ╚═╝╚═════╝     ╚═╝  ╚═╝╚═╝╚══════╝╚═╝  ╚═╝`

const titleCompact = "C K D · R I S K"

const subtitle = "Chronic Kidney Disease risk assessment"

// contentWidth returns the shared inner width of every home section.
func contentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	title := titleFull
	if compact {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title) + "\n\n" + theme.Hint.Render(subtitle))
}

// renderStatus shows the model state in a bordered box. A failed load is
// rendered in the error color.
func renderStatus(text string, failed bool, cw int) string {
	fg := theme.Secondary
	if failed {
		fg = theme.Error
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(fg).
		Foreground(fg).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(text)
}

const buttonWidth = 24

// renderMenu draws each item as a fixed-width button, or as plain lines
// when the terminal is short.
func renderMenu(labels []string, selected int, disabled map[int]bool, cw int, compact bool) string {
	base := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Padding(0, 1)
	if !compact {
		base = base.Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border)
	}

	var buttons []string
	for i, label := range labels {
		switch {
		case disabled[i]:
			buttons = append(buttons, base.Foreground(theme.Border).Render(label))
		case i == selected:
			st := base.Bold(true).Foreground(theme.Text).Background(theme.Primary)
			if !compact {
				st = st.BorderForeground(theme.Primary)
			}
			buttons = append(buttons, st.Render("▸ "+label))
		default:
			buttons = append(buttons, base.Foreground(theme.Text).Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

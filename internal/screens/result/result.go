package result

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ckdrisk/internal/report"
	"github.com/abhisek/ckdrisk/internal/router"
	"github.com/abhisek/ckdrisk/internal/screen"
	"github.com/abhisek/ckdrisk/internal/ui/components"
	"github.com/abhisek/ckdrisk/internal/ui/layout"
	"github.com/abhisek/ckdrisk/internal/ui/theme"
)

const cardWidth = 64

// ResultScreen shows one prediction. The form stays underneath so the
// values can be edited and resubmitted.
type ResultScreen struct {
	summary report.Summary
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a result screen for s.
func New(s report.Summary) *ResultScreen {
	return &ResultScreen{summary: s}
}

func (r *ResultScreen) Init() tea.Cmd { return nil }

func (r *ResultScreen) Title() string { return "Result" }

// Summary returns the displayed prediction.
func (r *ResultScreen) Summary() report.Summary { return r.summary }

func (r *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Edit values"},
		{Key: "h", Description: "Home"},
	}
}

func (r *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "e":
			return r, func() tea.Msg { return router.PopScreenMsg{} }
		case "h":
			return r, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return r, nil
}

func (r *ResultScreen) View(width, height int) string {
	s := r.summary

	style := theme.LowRisk
	fill := theme.Success
	if s.Category == report.HighRisk {
		style = theme.HighRisk
		fill = theme.Error
	}

	w := cardWidth
	if width-4 < w {
		w = width - 4
	}

	bar := components.NewProgressBar("Probability of CKD", s.Probability, s.Percent, w-6)
	bar.Fill = fill

	meta := lipgloss.NewStyle().Foreground(theme.TextDim)
	var b strings.Builder
	b.WriteString(style.Render(s.Headline))
	b.WriteString("\n\n")
	b.WriteString(bar.View())
	b.WriteString("\n\n")
	b.WriteString(meta.Render("Model " + s.ModelVersion + "  ·  schema " + s.Schema))
	b.WriteString("\n")
	b.WriteString(meta.Render("Request " + s.RequestID))

	card := theme.Card.Width(w).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

package events

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ckdrisk/internal/router"
	"github.com/abhisek/ckdrisk/internal/screen"
	"github.com/abhisek/ckdrisk/internal/store"
	"github.com/abhisek/ckdrisk/internal/ui/layout"
	"github.com/abhisek/ckdrisk/internal/ui/theme"
)

const recentLimit = 20

type eventsLoadedMsg struct {
	Stats      []store.InferenceStat
	Loads      []store.ModelLoadEvent
	Inferences []store.InferenceEvent
	Err        error
}

type tab int

const (
	tabLoads tab = iota
	tabInferences
)

// EventsScreen shows recent model loads and model calls with per-model
// call statistics.
type EventsScreen struct {
	eventRepo  store.EventRepo
	stats      []store.InferenceStat
	loads      []store.ModelLoadEvent
	inferences []store.InferenceEvent
	tab        tab
	selected   int
	loaded     bool
	errMsg     string
}

var _ screen.Screen = (*EventsScreen)(nil)
var _ screen.KeyHintProvider = (*EventsScreen)(nil)

// New creates a new EventsScreen.
func New(eventRepo store.EventRepo) *EventsScreen {
	return &EventsScreen{eventRepo: eventRepo}
}

func (s *EventsScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		ctx := context.Background()

		stats, err := repo.InferenceStats(ctx)
		if err != nil {
			return eventsLoadedMsg{Err: err}
		}
		loads, err := repo.QueryModelLoads(ctx, store.QueryOpts{Limit: recentLimit})
		if err != nil {
			return eventsLoadedMsg{Err: err}
		}
		calls, err := repo.QueryInferences(ctx, store.QueryOpts{Limit: recentLimit})
		if err != nil {
			return eventsLoadedMsg{Err: err}
		}
		return eventsLoadedMsg{Stats: stats, Loads: loads, Inferences: calls}
	}
}

func (s *EventsScreen) Title() string {
	return "Event Log"
}

func (s *EventsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Loads/Calls"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *EventsScreen) rows() int {
	if s.tab == tabLoads {
		return len(s.loads)
	}
	return len(s.inferences)
}

func (s *EventsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.stats = msg.Stats
			s.loads = msg.Loads
			s.inferences = msg.Inferences
		}
		s.loaded = true
		s.selected = 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab":
			s.tab = 1 - s.tab
			s.selected = 0
			return s, nil
		case "r":
			s.loaded = false
			return s, s.Init()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < s.rows()-1 {
				s.selected++
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *EventsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading events...")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderStats())
	b.WriteString("\n\n")

	loads, calls := "Model loads", "Model calls"
	if s.tab == tabLoads {
		loads = theme.Selected.Render("[" + loads + "]")
		calls = theme.Hint.Render(" " + calls + " ")
	} else {
		loads = theme.Hint.Render(" " + loads + " ")
		calls = theme.Selected.Render("[" + calls + "]")
	}
	b.WriteString("  " + loads + "  " + calls + "\n\n")

	var lines []string
	if s.tab == tabLoads {
		lines = s.loadLines()
	} else {
		lines = s.inferenceLines()
	}
	if len(lines) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("  No events recorded yet."))
		return b.String()
	}

	for i, line := range lines {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(prefix + line))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *EventsScreen) renderStats() string {
	if len(s.stats) == 0 {
		return theme.Hint.Render("  No model calls yet.")
	}
	var parts []string
	for _, st := range s.stats {
		parts = append(parts, fmt.Sprintf("  %-10s %-14s %5d calls  %3d failed  %4d ms avg",
			st.ModelID, st.Operation, st.Calls, st.Failures, st.AvgLatencyMs))
	}
	return theme.Body.Render(strings.Join(parts, "\n"))
}

func (s *EventsScreen) loadLines() []string {
	lines := make([]string, len(s.loads))
	for i, e := range s.loads {
		status := "ok"
		if !e.Success {
			status = "failed: " + e.ErrorMessage
		}
		lines[i] = fmt.Sprintf("%s  %-20s %-8s %-8s %4d ms  %s",
			e.Timestamp.Local().Format("Jan 02 15:04:05"), e.Format, e.Version, e.Schema, e.LatencyMs, status)
	}
	return lines
}

func (s *EventsScreen) inferenceLines() []string {
	lines := make([]string, len(s.inferences))
	for i, e := range s.inferences {
		status := "ok"
		if !e.Success {
			status = "failed: " + e.ErrorMessage
		}
		id := e.RequestID
		if len(id) > 8 {
			id = id[:8]
		}
		lines[i] = fmt.Sprintf("%s  %-8s %-10s %-14s %4d ms  %s",
			e.Timestamp.Local().Format("Jan 02 15:04:05"), id, e.ModelID, e.Operation, e.LatencyMs, status)
	}
	return lines
}

package reference

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ckdrisk/internal/features"
	"github.com/abhisek/ckdrisk/internal/screen"
	"github.com/abhisek/ckdrisk/internal/ui/layout"
	"github.com/abhisek/ckdrisk/internal/ui/theme"
)

// ReferenceScreen lists the fields of one schema in vector order.
type ReferenceScreen struct {
	schema *features.Schema
	offset int
}

var _ screen.Screen = (*ReferenceScreen)(nil)
var _ screen.KeyHintProvider = (*ReferenceScreen)(nil)

// New creates a reference screen for s.
func New(s *features.Schema) *ReferenceScreen {
	return &ReferenceScreen{schema: s}
}

func (r *ReferenceScreen) Init() tea.Cmd { return nil }

func (r *ReferenceScreen) Title() string {
	return "Field Reference · " + r.schema.Version
}

func (r *ReferenceScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (r *ReferenceScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			if r.offset > 0 {
				r.offset--
			}
		case "down", "j":
			if r.offset < r.schema.Len()-1 {
				r.offset++
			}
		case "home", "g":
			r.offset = 0
		}
	}
	return r, nil
}

func (r *ReferenceScreen) View(width, height int) string {
	head := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	header := fmt.Sprintf("  %-3s %-24s %-8s %-26s %-20s %s", "#", "Field", "Alias", "Label", "Accepts", "Encoding")
	lines := []string{head.Render(header)}

	fields := r.schema.Fields()
	for i, f := range fields {
		alias := ""
		if len(f.Aliases) > 0 {
			alias = f.Aliases[0]
		}
		label := f.Label
		if f.Unit != "" {
			label += " (" + f.Unit + ")"
		}
		line := fmt.Sprintf("  %-3d %-24s %-8s %-26s %-20s %s",
			i, f.Name, alias, truncate(label, 26), truncate(f.Bounds(), 20), f.Encoding())
		lines = append(lines, theme.Body.Render(line))
	}

	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	if r.offset > len(fields)-visible {
		r.offset = max(0, len(fields)-visible)
	}
	end := min(len(fields), r.offset+visible)

	out := append([]string{lines[0]}, lines[1+r.offset:1+end]...)
	out = append(out, dim.Render(fmt.Sprintf("  %d-%d of %d  ·  %s", r.offset+1, end, len(fields), r.schema.Description)))
	return strings.Join(out, "\n")
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

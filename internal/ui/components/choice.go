package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ckdrisk/internal/ui/theme"
)

// Choice is a horizontal single-select over a fixed set of options,
// changed with left/right while focused.
type Choice struct {
	Options  []string
	Selected int
	Focused  bool
}

// NewChoice creates a Choice with value preselected. An unknown value
// selects the first option.
func NewChoice(options []string, value string) Choice {
	c := Choice{Options: options}
	for i, o := range options {
		if strings.EqualFold(o, value) {
			c.Selected = i
			break
		}
	}
	return c
}

// Update handles left/right selection.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	if !c.Focused {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "left", "h":
		if c.Selected > 0 {
			c.Selected--
		}
	case "right", "l", "space":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		} else if kmsg.String() == "space" {
			c.Selected = 0
		}
	}
	return c, nil
}

// Value returns the selected option.
func (c Choice) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return ""
	}
	return c.Options[c.Selected]
}

// View renders the options in a row with the selection marked.
func (c Choice) View() string {
	parts := make([]string, len(c.Options))
	for i, o := range c.Options {
		switch {
		case i == c.Selected && c.Focused:
			parts[i] = theme.Selected.Render("(•) " + o)
		case i == c.Selected:
			parts[i] = theme.Unselected.Render("(•) " + o)
		default:
			parts[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Render("( ) " + o)
		}
	}
	return strings.Join(parts, "  ")
}

package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ckdrisk/internal/ui/theme"
)

// Button is a focusable action. A busy button ignores presses and shows
// BusyLabel instead of Label.
type Button struct {
	Label     string
	BusyLabel string
	Focused   bool
	Busy      bool
	OnPress   func() tea.Cmd
}

// NewButton creates a new button.
func NewButton(label, busyLabel string, onPress func() tea.Cmd) Button {
	return Button{
		Label:     label,
		BusyLabel: busyLabel,
		OnPress:   onPress,
	}
}

// Update fires OnPress on enter or space while focused and idle.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if !b.Focused || b.Busy || b.OnPress == nil {
		return b, nil
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "space":
			return b, b.OnPress()
		}
	}

	return b, nil
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Busy && b.BusyLabel != "" {
		label = b.BusyLabel
	}
	label = " ▸ " + label + " "
	if b.Focused {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}

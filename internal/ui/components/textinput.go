package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ckdrisk/internal/ui/theme"
)

// TextInput wraps bubbles/textinput for numeric measurements. Only digits
// and, when Decimal is set, a single decimal point are accepted.
type TextInput struct {
	Model   textinput.Model
	Decimal bool
	errMsg  string
}

// NewTextInput creates a blurred numeric input holding value.
func NewTextInput(value, placeholder string, decimal bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.SetValue(value)
	ti.CursorEnd()

	return TextInput{
		Model:   ti,
		Decimal: decimal,
	}
}

// Focus focuses the input and returns the cursor blink command.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update filters key presses to numeric input and forwards the rest.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len(key) == 1 && !t.accepts(key[0]) {
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) accepts(c byte) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	return c == '.' && t.Decimal && !strings.Contains(t.Model.Value(), ".")
}

// View renders the input followed by its error, if any.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.errMsg != "" {
		view += "  " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+t.errMsg)
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetError marks the input invalid with msg; an empty msg clears it.
func (t *TextInput) SetError(msg string) {
	t.errMsg = msg
}

// Err returns the current error message.
func (t TextInput) Err() string {
	return t.errMsg
}

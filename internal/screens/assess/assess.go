package assess

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ckdrisk/internal/features"
	"github.com/abhisek/ckdrisk/internal/inference"
	"github.com/abhisek/ckdrisk/internal/report"
	"github.com/abhisek/ckdrisk/internal/router"
	"github.com/abhisek/ckdrisk/internal/screen"
	"github.com/abhisek/ckdrisk/internal/screens/result"
	"github.com/abhisek/ckdrisk/internal/ui/components"
	"github.com/abhisek/ckdrisk/internal/ui/layout"
	"github.com/abhisek/ckdrisk/internal/ui/theme"
)

const labelWidth = 34

// Predictor runs one prediction request.
type Predictor interface {
	Predict(ctx context.Context, obs features.Observation) (*inference.Result, error)
}

type predictionMsg struct {
	res *inference.Result
	err error
}

// row is one form field: a numeric input or a choice.
type row struct {
	field  features.Field
	text   bool
	input  components.TextInput
	choice components.Choice
}

func (r *row) value() string {
	if r.text {
		return r.input.Value()
	}
	return r.choice.Value()
}

// AssessScreen is the patient data form. Fields are grouped by section;
// the observation is built in schema order only when Predict is pressed.
type AssessScreen struct {
	pred    Predictor
	schema  *features.Schema
	encoder *features.Encoder

	rows   []row
	focus  int // len(rows) is the Predict button
	button components.Button
	busy   bool
	errMsg string
	offset int
}

var _ screen.Screen = (*AssessScreen)(nil)
var _ screen.KeyHintProvider = (*AssessScreen)(nil)

// New creates a form for s pre-filled with each field's default.
func New(pred Predictor, s *features.Schema) *AssessScreen {
	a := &AssessScreen{
		pred:    pred,
		schema:  s,
		encoder: features.NewEncoder(s),
	}
	a.rows = buildRows(s, features.DefaultObservation(s))
	a.button = components.NewButton("Predict", "Predicting...", a.submit)
	a.setFocus(0)
	return a
}

func buildRows(s *features.Schema, obs features.Observation) []row {
	var rows []row
	for _, sec := range features.Sections {
		for _, f := range s.Fields() {
			if f.Section != sec {
				continue
			}
			value, _ := obs.Lookup(f)
			r := row{field: f}
			switch f.Kind {
			case features.KindInteger:
				r.text = true
				r.input = components.NewTextInput(value, f.Bounds(), false, 6)
			case features.KindFloat:
				r.text = true
				r.input = components.NewTextInput(value, f.Bounds(), true, 6)
			case features.KindOrdinal, features.KindDiscrete:
				r.choice = components.NewChoice(allowedLabels(f), value)
			case features.KindBinary:
				r.choice = components.NewChoice(f.Choices, value)
			}
			rows = append(rows, r)
		}
	}
	return rows
}

func allowedLabels(f features.Field) []string {
	out := make([]string, len(f.Allowed))
	for i, v := range f.Allowed {
		if f.Kind == features.KindDiscrete {
			out[i] = fmt.Sprintf("%.3f", v)
		} else {
			out[i] = fmt.Sprintf("%g", v)
		}
	}
	return out
}

func (a *AssessScreen) Init() tea.Cmd {
	if a.focus < len(a.rows) && a.rows[a.focus].text {
		return a.rows[a.focus].input.Focus()
	}
	return nil
}

func (a *AssessScreen) Title() string {
	return "New Assessment"
}

func (a *AssessScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab/↑↓", Description: "Field"},
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Next/Predict"},
		{Key: "Ctrl+R", Description: "Reset"},
		{Key: "Esc", Description: "Back"},
	}
}

// Observation returns the current form values keyed by field name.
func (a *AssessScreen) Observation() features.Observation {
	raw := make(map[string]string, len(a.rows))
	for i := range a.rows {
		raw[a.rows[i].field.Name] = a.rows[i].value()
	}
	return features.NewObservation(raw)
}

func (a *AssessScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case predictionMsg:
		a.busy = false
		a.button.Busy = false
		if msg.err != nil {
			a.errMsg = report.ErrorMessage(msg.err)
			a.flagField(msg.err)
			return a, nil
		}
		a.errMsg = ""
		summary := report.Summarize(msg.res)
		return a, func() tea.Msg {
			return router.PushScreenMsg{Screen: result.New(summary)}
		}

	case tea.KeyMsg:
		if a.busy {
			return a, nil
		}
		switch msg.String() {
		case "tab", "down":
			return a, a.moveFocus(1)
		case "shift+tab", "up":
			return a, a.moveFocus(-1)
		case "enter":
			if a.focus == len(a.rows) {
				return a, a.submit()
			}
			return a, a.moveFocus(1)
		case "ctrl+r":
			a.rows = buildRows(a.schema, features.DefaultObservation(a.schema))
			a.errMsg = ""
			return a, a.setFocus(0)
		}
	}

	if a.focus < len(a.rows) {
		r := &a.rows[a.focus]
		var cmd tea.Cmd
		if r.text {
			r.input, cmd = r.input.Update(msg)
		} else {
			r.choice, cmd = r.choice.Update(msg)
		}
		return a, cmd
	}

	var cmd tea.Cmd
	a.button, cmd = a.button.Update(msg)
	return a, cmd
}

// submit starts the prediction for the current form values.
func (a *AssessScreen) submit() tea.Cmd {
	obs := a.Observation()
	pred := a.pred
	a.busy = true
	a.button.Busy = true
	a.errMsg = ""
	return func() tea.Msg {
		res, err := pred.Predict(context.Background(), obs)
		return predictionMsg{res: res, err: err}
	}
}

// moveFocus validates the field being left and focuses the next one,
// wrapping around through the Predict button.
func (a *AssessScreen) moveFocus(delta int) tea.Cmd {
	if a.focus < len(a.rows) && a.rows[a.focus].text {
		a.checkField(a.focus)
	}
	n := len(a.rows) + 1
	return a.setFocus(((a.focus+delta)%n + n) % n)
}

func (a *AssessScreen) setFocus(i int) tea.Cmd {
	for j := range a.rows {
		a.rows[j].input.Blur()
		a.rows[j].choice.Focused = false
	}
	a.button.Focused = false
	a.focus = i

	if i == len(a.rows) {
		a.button.Focused = true
		return nil
	}
	r := &a.rows[i]
	if r.text {
		return r.input.Focus()
	}
	r.choice.Focused = true
	return nil
}

// checkField validates one numeric input and shows the reason inline.
func (a *AssessScreen) checkField(i int) {
	r := &a.rows[i]
	if _, err := a.encoder.EncodeField(r.field.Name, r.input.Value()); err != nil {
		var verr *features.ValidationError
		if errors.As(err, &verr) {
			r.input.SetError(verr.Reason)
			return
		}
		r.input.SetError(err.Error())
		return
	}
	r.input.SetError("")
}

// flagField marks the field named by a validation error.
func (a *AssessScreen) flagField(err error) {
	var verr *features.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	for i := range a.rows {
		if a.rows[i].field.Name == verr.Field && a.rows[i].text {
			a.rows[i].input.SetError(verr.Reason)
			a.setFocus(i)
			return
		}
	}
}

func (a *AssessScreen) View(width, height int) string {
	var lines []string
	focusLine := 0
	var current features.Section

	labelStyle := lipgloss.NewStyle().Width(labelWidth).Foreground(theme.Text)
	focusStyle := lipgloss.NewStyle().Width(labelWidth).Foreground(theme.Primary).Bold(true)

	for i := range a.rows {
		r := &a.rows[i]
		if r.field.Section != current {
			current = r.field.Section
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, "  "+theme.Section.Render(string(current)))
		}

		label := r.field.Label
		if r.field.Unit != "" {
			label += " (" + r.field.Unit + ")"
		}
		style := labelStyle
		if i == a.focus {
			style = focusStyle
			focusLine = len(lines)
		}

		var widget string
		if r.text {
			widget = r.input.View()
		} else {
			widget = r.choice.View()
		}
		lines = append(lines, "    "+style.Render(label)+widget)
	}

	lines = append(lines, "")
	if a.focus == len(a.rows) {
		focusLine = len(lines)
	}
	lines = append(lines, "    "+a.button.View())
	if a.errMsg != "" {
		lines = append(lines, "", "    "+theme.ErrorText.Render(a.errMsg))
	}

	visible := height
	if visible < 1 {
		visible = 1
	}
	a.scrollTo(focusLine, len(lines), visible)

	end := a.offset + visible
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[a.offset:end], "\n")
}

// scrollTo keeps line inside the visible window. The error message below
// the button stays visible when the button is focused.
func (a *AssessScreen) scrollTo(line, total, visible int) {
	if a.focus == len(a.rows) {
		line = total - 1
	}
	if line < a.offset {
		a.offset = line
	}
	if line >= a.offset+visible {
		a.offset = line - visible + 1
	}
	if limit := total - visible; a.offset > limit {
		a.offset = limit
	}
	if a.offset < 0 {
		a.offset = 0
	}
}

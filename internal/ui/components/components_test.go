package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestTextInput_DecimalFiltering(t *testing.T) {
	ti := NewTextInput("", "0.0", true, 8)
	ti.Focus()

	for _, r := range "1a2.5.x" {
		ti, _ = ti.Update(key(r))
	}
	if got := ti.Value(); got != "12.5" {
		t.Errorf("Value = %q, want %q", got, "12.5")
	}
}

func TestTextInput_IntegerRejectsPoint(t *testing.T) {
	ti := NewTextInput("4", "", false, 0)
	ti.Focus()

	ti, _ = ti.Update(key('.'))
	ti, _ = ti.Update(key('5'))
	if got := ti.Value(); got != "45" {
		t.Errorf("Value = %q, want %q", got, "45")
	}
}

func TestTextInput_Error(t *testing.T) {
	ti := NewTextInput("250", "", false, 0)
	ti.SetError("must be between 50 and 180")
	if !strings.Contains(ti.View(), "must be between 50 and 180") {
		t.Error("expected error in view")
	}
	ti.SetError("")
	if ti.Err() != "" {
		t.Error("expected error cleared")
	}
}

func TestChoice(t *testing.T) {
	c := NewChoice([]string{"normal", "abnormal"}, "ABNORMAL")
	if c.Value() != "abnormal" {
		t.Fatalf("Value = %q, want abnormal", c.Value())
	}

	// Unfocused choices ignore keys.
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	if c.Value() != "abnormal" {
		t.Errorf("unfocused choice changed to %q", c.Value())
	}

	c.Focused = true
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	if c.Value() != "normal" {
		t.Errorf("Value = %q after left, want normal", c.Value())
	}
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	if c.Value() != "normal" {
		t.Errorf("left at first option moved to %q", c.Value())
	}
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if c.Value() != "abnormal" {
		t.Errorf("Value = %q after right, want abnormal", c.Value())
	}
}

func TestChoice_UnknownValueSelectsFirst(t *testing.T) {
	c := NewChoice([]string{"yes", "no"}, "maybe")
	if c.Value() != "yes" {
		t.Errorf("Value = %q, want yes", c.Value())
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "New Assessment"},
		{Label: "Event Log", Disabled: true},
		{Label: "Quit"},
	})

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 2 {
		t.Errorf("Selected = %d, want 2", m.Selected)
	}
}

func TestMenu_EnterRunsAction(t *testing.T) {
	ran := false
	m := NewMenu([]MenuItem{{Label: "Go", Action: func() tea.Cmd {
		ran = true
		return nil
	}}})

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !ran {
		t.Error("expected action to run")
	}
}

func TestButton_BusyIgnoresPress(t *testing.T) {
	presses := 0
	b := NewButton("Predict", "Predicting...", func() tea.Cmd {
		presses++
		return nil
	})
	b.Focused = true

	b.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	b.Busy = true
	b.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if presses != 1 {
		t.Errorf("presses = %d, want 1", presses)
	}
	if !strings.Contains(b.View(), "Predicting...") {
		t.Error("expected busy label")
	}
}

func TestProgressBar(t *testing.T) {
	view := NewProgressBar("CKD", 0.875, "87.5%", 40).View()
	if !strings.Contains(view, "87.5%") || !strings.Contains(view, "CKD") {
		t.Errorf("unexpected view %q", view)
	}
}

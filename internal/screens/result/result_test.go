package result

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ckdrisk/internal/report"
	"github.com/abhisek/ckdrisk/internal/router"
)

func summary(cat report.Category) report.Summary {
	return report.Summary{
		Category:     cat,
		Probability:  0.875,
		Percent:      report.FormatPercent(0.875),
		Headline:     cat.Headline(),
		ModelVersion: "v1.0.0",
		Schema:       "rf1",
		RequestID:    "req-1",
	}
}

func TestView_ShowsHeadlineAndPercent(t *testing.T) {
	s := New(summary(report.HighRisk))
	out := s.View(100, 30)

	assert.Contains(t, out, "likely to have Chronic Kidney Disease")
	assert.Contains(t, out, "87.5%")
	assert.Contains(t, out, "v1.0.0")
	assert.Contains(t, out, "req-1")
}

func TestUpdate_Navigation(t *testing.T) {
	s := New(summary(report.LowRisk))

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())

	_, cmd = s.Update(tea.KeyPressMsg{Code: 'h', Text: "h"})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopToRootMsg{}, cmd())

	_, cmd = s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	assert.Nil(t, cmd)
}

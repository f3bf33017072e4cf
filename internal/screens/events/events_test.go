package events

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ckdrisk/internal/router"
	"github.com/abhisek/ckdrisk/internal/store"
)

func openRepo(t *testing.T) store.EventRepo {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s.EventRepo()
}

func load(t *testing.T, s *EventsScreen) {
	t.Helper()
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
}

func TestEmptyLog(t *testing.T) {
	s := New(openRepo(t))
	assert.Contains(t, s.View(100, 30), "Loading events")

	load(t, s)
	out := s.View(100, 30)
	assert.Contains(t, out, "No model calls yet")
	assert.Contains(t, out, "No events recorded yet")
}

func TestShowsLoadsAndCalls(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.AppendModelLoad(ctx, store.ModelLoadEventData{
		Path: "model/m.json", Format: "random_forest", Version: "v1.0.0", Schema: "rf1", NumFeatures: 24, Success: true,
	}))
	require.NoError(t, repo.AppendInference(ctx, store.InferenceEventData{
		RequestID: "0123456789abcdef", ModelID: "forest", Operation: "predict", LatencyMs: 3, Success: true,
	}))
	require.NoError(t, repo.AppendInference(ctx, store.InferenceEventData{
		RequestID: "fedcba9876543210", ModelID: "forest", Operation: "predict_proba", Success: false, ErrorMessage: "boom",
	}))

	s := New(repo)
	load(t, s)

	out := s.View(120, 30)
	assert.Contains(t, out, "random_forest")
	assert.Contains(t, out, "v1.0.0")
	assert.Contains(t, out, "predict_proba")

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	out = s.View(120, 30)
	assert.Contains(t, out, "fedcba98")
	assert.Contains(t, out, "failed: boom")

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected, "selection stops at the last row")
}

func TestEscPops(t *testing.T) {
	s := New(openRepo(t))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

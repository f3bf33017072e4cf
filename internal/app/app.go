package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/ckdrisk/internal/features"
	"github.com/abhisek/ckdrisk/internal/model"
	"github.com/abhisek/ckdrisk/internal/router"
	"github.com/abhisek/ckdrisk/internal/screen"
	"github.com/abhisek/ckdrisk/internal/screens/home"
	"github.com/abhisek/ckdrisk/internal/store"
	"github.com/abhisek/ckdrisk/internal/ui/layout"
)

// ArtifactSource reports the loaded model for the header. *model.Cache
// implements it.
type ArtifactSource interface {
	Current() *model.Artifact
}

// Options wires the services the screens use.
type Options struct {
	Service        home.Service
	Artifacts      ArtifactSource
	Events         store.EventRepo // nil disables the event log
	FallbackSchema *features.Schema
	Logger         *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router    *router.Router
	artifacts ArtifactSource
	log       *zap.Logger
	width     int
	height    int
}

func newAppModel(opts Options) AppModel {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return AppModel{
		router:    router.New(home.New(opts.Service, opts.Events, opts.FallbackSchema)),
		artifacts: opts.Artifacts,
		log:       log,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}

	case router.PushScreenMsg:
		m.log.Debug("push screen", zap.String("screen", msg.Screen.Title()))
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// status names the loaded model for the header.
func (m AppModel) status() string {
	if m.artifacts == nil {
		return ""
	}
	art := m.artifacts.Current()
	if art == nil {
		return "no model  "
	}
	return fmt.Sprintf("model %s · %s  ", art.Manifest.Version, art.Manifest.Schema)
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.status(), m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

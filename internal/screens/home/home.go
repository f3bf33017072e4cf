package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ckdrisk/internal/features"
	"github.com/abhisek/ckdrisk/internal/report"
	"github.com/abhisek/ckdrisk/internal/router"
	"github.com/abhisek/ckdrisk/internal/screen"
	"github.com/abhisek/ckdrisk/internal/screens/assess"
	"github.com/abhisek/ckdrisk/internal/screens/events"
	"github.com/abhisek/ckdrisk/internal/screens/reference"
	"github.com/abhisek/ckdrisk/internal/store"
	"github.com/abhisek/ckdrisk/internal/ui/components"
	"github.com/abhisek/ckdrisk/internal/ui/layout"
)

// Service predicts and reports the schema of the current model.
// *inference.Invoker implements it.
type Service interface {
	assess.Predictor
	Schema(ctx context.Context) (*features.Schema, error)
}

type schemaLoadedMsg struct {
	schema *features.Schema
	err    error
}

const (
	itemAssess = iota
	itemReference
	itemEvents
	itemQuit
)

var menuLabels = []string{"NEW ASSESSMENT", "FIELD REFERENCE", "EVENT LOG", "QUIT"}

// HomeScreen is the main menu. The assessment entry stays disabled until
// the model has been loaded.
type HomeScreen struct {
	svc      Service
	events   store.EventRepo
	fallback *features.Schema

	menu    components.Menu
	schema  *features.Schema
	loading bool
	loadErr error
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen. eventRepo may be nil when the event store
// is unavailable; fallback is listed by the field reference while no model
// is loaded.
func New(svc Service, eventRepo store.EventRepo, fallback *features.Schema) *HomeScreen {
	h := &HomeScreen{
		svc:      svc,
		events:   eventRepo,
		fallback: fallback,
		loading:  true,
	}
	h.buildMenu()
	return h
}

func (h *HomeScreen) buildMenu() {
	items := []components.MenuItem{
		{
			Label:       menuLabels[itemAssess],
			Description: "Enter patient values and predict CKD risk",
			Disabled:    h.schema == nil,
			Action: func() tea.Cmd {
				s := assess.New(h.svc, h.schema)
				return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
			},
		},
		{
			Label:       menuLabels[itemReference],
			Description: "Input fields, accepted values and encodings",
			Disabled:    h.referenceSchema() == nil,
			Action: func() tea.Cmd {
				s := reference.New(h.referenceSchema())
				return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
			},
		},
		{
			Label:       menuLabels[itemEvents],
			Description: "Recent model loads and model calls",
			Disabled:    h.events == nil,
			Action: func() tea.Cmd {
				s := events.New(h.events)
				return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
			},
		},
		{
			Label:  menuLabels[itemQuit],
			Action: func() tea.Cmd { return tea.Quit },
		},
	}
	h.menu = components.NewMenu(items)
}

func (h *HomeScreen) referenceSchema() *features.Schema {
	if h.schema != nil {
		return h.schema
	}
	return h.fallback
}

// Init loads the model in the background.
func (h *HomeScreen) Init() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		s, err := svc.Schema(context.Background())
		return schemaLoadedMsg{schema: s, err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
	}
	if h.loadErr != nil {
		hints = append(hints, layout.KeyHint{Key: "r", Description: "Reload model"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case schemaLoadedMsg:
		h.loading = false
		h.schema = msg.schema
		h.loadErr = msg.err
		h.buildMenu()
		return h, nil

	case tea.KeyMsg:
		if msg.String() == "r" && !h.loading {
			h.loading = true
			h.loadErr = nil
			return h, h.Init()
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// Status describes the model state shown under the title.
func (h *HomeScreen) Status() (string, bool) {
	switch {
	case h.loading:
		return "Loading model...", false
	case h.loadErr != nil:
		return report.ErrorMessage(h.loadErr), true
	default:
		return "Model ready · schema " + h.schema.Version, false
	}
}

func (h *HomeScreen) View(width, height int) string {
	termHeight := height + layout.HeaderHeight + layout.FooterHeight
	compact := termHeight < 34 || width < 90
	cw := contentWidth(width)

	disabled := make(map[int]bool, len(h.menu.Items))
	for i, item := range h.menu.Items {
		disabled[i] = item.Disabled
	}

	status, failed := h.Status()
	sections := []string{
		renderTitle(cw, compact),
		renderStatus(status, failed, cw),
		renderMenu(menuLabels, h.menu.Selected, disabled, cw, compact),
	}
	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

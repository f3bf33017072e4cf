package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/ckdrisk/internal/app"
	"github.com/abhisek/ckdrisk/internal/features"
)

// runApp builds dependencies and launches the TUI. The model is loaded by
// the home screen, so a missing artifact is reported inside the UI.
func runApp(cmd *cobra.Command) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	fallback := features.SchemaRF1
	if rt.cfg.Schema != "" {
		fallback = rt.cfg.Schema
	}
	fs, err := features.Lookup(fallback)
	if err != nil {
		return err
	}

	rt.log.Info("starting ui", zap.String("model", rt.cfg.ModelPath))
	return app.Run(app.Options{
		Service:        rt.invoker,
		Artifacts:      rt.cache,
		Events:         rt.eventRepo(),
		FallbackSchema: fs,
		Logger:         rt.log,
	})
}

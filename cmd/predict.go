package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/ckdrisk/internal/features"
	"github.com/abhisek/ckdrisk/internal/report"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict CKD risk for one patient",
	Long: "Predict CKD risk from a JSON or YAML observation document and/or --set field=value pairs.\n" +
		"Fields may be given by name or alias, e.g. --set hemo=10.5 --set htn=yes.",
	Example: "  ckdrisk predict --input patient.yaml\n" +
		"  ckdrisk predict --defaults --set age=62 --set sc=3.1 --json",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		format, _ := cmd.Flags().GetString("format")
		sets, _ := cmd.Flags().GetStringArray("set")
		defaults, _ := cmd.Flags().GetBool("defaults")
		asJSON, _ := cmd.Flags().GetBool("json")

		if input == "" && len(sets) == 0 && !defaults {
			return fmt.Errorf("nothing to predict: use --input, --set or --defaults")
		}

		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		s, err := rt.invoker.Schema(ctx)
		if err != nil {
			return reported(err)
		}

		obs := features.NewObservation(nil)
		if defaults {
			obs = features.DefaultObservation(s)
		}
		if input != "" {
			doc, err := readDocument(cmd.InOrStdin(), s, input, format)
			if err != nil {
				return reported(err)
			}
			obs = merge(s, obs, doc)
		}
		for _, kv := range sets {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid --set %q: expected field=value", kv)
			}
			f, _, ok := s.Field(k)
			if !ok {
				return reported(&features.ValidationError{Field: k, Reason: "unknown field"})
			}
			obs = obs.With(f.Name, v)
		}

		res, err := rt.invoker.Predict(ctx, obs)
		if err != nil {
			rt.log.Debug("prediction failed", zap.String("kind", report.Kind(err)), zap.Error(err))
			return reported(err)
		}

		summary := report.Summarize(res)
		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}
		fmt.Fprintln(out, summary.String())
		fmt.Fprintf(out, "Model %s (schema %s), request %s\n", summary.ModelVersion, summary.Schema, summary.RequestID)
		return nil
	},
}

func init() {
	predictCmd.Flags().StringP("input", "i", "", "Observation document (JSON or YAML); - reads stdin")
	predictCmd.Flags().String("format", "", "Document format: json or yaml (default: from file extension)")
	predictCmd.Flags().StringArray("set", nil, "Set a field value, field=value (repeatable)")
	predictCmd.Flags().Bool("defaults", false, "Start from the form defaults")
	predictCmd.Flags().Bool("json", false, "Print the result as JSON")
}

// reported wraps a request error with its user-facing message.
func reported(err error) error {
	return &reportedError{msg: report.ErrorMessage(err), err: err}
}

func readDocument(stdin io.Reader, s *features.Schema, path, format string) (features.Observation, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return features.Observation{}, fmt.Errorf("read %s: %w", path, err)
	}

	f := features.DocumentFormat(strings.ToLower(format))
	if f == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			f = features.FormatYAML
		default:
			f = features.FormatJSON
		}
	}
	return features.DecodeDocument(s, data, f)
}

// merge overlays the fields present in top onto base under their
// canonical names, so an alias in top replaces a default in base.
func merge(s *features.Schema, base, top features.Observation) features.Observation {
	for _, f := range s.Fields() {
		if v, ok := top.Lookup(f); ok {
			base = base.With(f.Name, v)
		}
	}
	return base
}

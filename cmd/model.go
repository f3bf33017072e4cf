package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/ckdrisk/internal/artifactfetch"
	"github.com/abhisek/ckdrisk/internal/config"
	"github.com/abhisek/ckdrisk/internal/features"
	"github.com/abhisek/ckdrisk/internal/model"
	"github.com/abhisek/ckdrisk/internal/report"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect, verify and fetch model artifacts",
}

var modelInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the configured model artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		art, err := model.ReadArtifact(cfg.ModelPath)
		if err != nil {
			return reported(err)
		}

		out := cmd.OutOrStdout()
		m := art.Manifest
		fmt.Fprintf(out, "Path:      %s\n", art.Path)
		fmt.Fprintf(out, "Checksum:  %s\n", art.Checksum)
		fmt.Fprintf(out, "Size:      %d bytes\n", art.Size)
		fmt.Fprintf(out, "Modified:  %s\n", art.ModTime.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Format:    %s\n", m.Format)
		fmt.Fprintf(out, "Version:   %s\n", m.Version)
		fmt.Fprintf(out, "Schema:    %s\n", m.Schema)
		fmt.Fprintf(out, "Features:  %d\n", m.NumFeatures)
		fmt.Fprintf(out, "Classes:   %v\n", m.ClassList())
		if m.Description != "" {
			fmt.Fprintf(out, "About:     %s\n", m.Description)
		}
		return nil
	},
}

var modelVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Load the model and run a probe prediction on the form defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		res, err := rt.invoker.Predict(ctx, features.DefaultObservation(s))
		if err != nil {
			return reported(err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Model %s OK: schema %s, %d features, probe %s in %s\n",
			res.ModelVersion, res.Schema, s.Len(), report.FormatPercent(res.PositiveProbability()),
			res.Latency.Round(time.Microsecond))
		return nil
	},
}

var modelFetchCmd = &cobra.Command{
	Use:   "fetch <asset>",
	Short: "Download a model artifact and install it as the configured model",
	Long: "Download <asset> (a .json artifact or a .tar.gz bundle) from fetch.base_url, verify it\n" +
		"against the host's SHA256SUMS file and atomically replace the configured model.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if u, _ := cmd.Flags().GetString("url"); u != "" {
			cfg.Fetch.BaseURL = u
		}
		if cfg.Fetch.BaseURL == "" {
			return &config.Error{Source: "fetch.base_url", Err: errors.New("no artifact host configured (set CKDRISK_FETCH_URL or --url)")}
		}
		force, _ := cmd.Flags().GetBool("force")

		ctx, cancel := context.WithTimeout(cmd.Context(), fetchDeadline(cfg.Fetch.Timeout))
		defer cancel()

		out := cmd.OutOrStdout()
		f := artifactfetch.New(cfg.Fetch.BaseURL, cfg.Fetch.Timeout)
		res, err := f.Fetch(ctx, &artifactfetch.FetchInput{
			Asset: args[0],
			Dest:  cfg.ModelPath,
			Force: force,
		}, func(p artifactfetch.FetchProgress) {
			fmt.Fprintln(out, p.Message)
		})

		if err == nil {
			if res.PreviousVersion != "" {
				fmt.Fprintf(out, "Replaced %s with %s\n", res.PreviousVersion, res.Manifest.Version)
			}
			return nil
		}

		if errors.Is(err, artifactfetch.ErrAlreadyCurrent) {
			fmt.Fprintln(out, "Model is already up to date.")
			return nil
		}
		if errors.Is(err, artifactfetch.ErrDowngrade) {
			return fmt.Errorf("%w\n\nRe-run with --force to install the older artifact", err)
		}
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w\n\nCheck write access to %s", err, cfg.ModelPath)
		}
		return err
	},
}

func init() {
	modelFetchCmd.Flags().String("url", "", "Artifact host base URL (overrides fetch.base_url)")
	modelFetchCmd.Flags().Bool("force", false, "Install even if the installed artifact is newer")

	modelCmd.AddCommand(modelInfoCmd)
	modelCmd.AddCommand(modelVerifyCmd)
	modelCmd.AddCommand(modelFetchCmd)
}

// fetchDeadline bounds the whole fetch: artifact plus checksum file.
func fetchDeadline(perRequest time.Duration) time.Duration {
	if perRequest <= 0 {
		return 10 * time.Minute
	}
	return 2*perRequest + 10*time.Second
}

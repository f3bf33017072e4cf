package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ckdrisk/internal/features"
	"github.com/abhisek/ckdrisk/internal/model"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "ckdrisk", version)
		fmt.Fprintf(out, "schemas: %s\n", strings.Join(features.Versions(), ", "))
		fmt.Fprintf(out, "artifact formats: %s\n", strings.Join(model.Formats(), ", "))
	},
}

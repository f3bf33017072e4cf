package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ckdrisk/internal/features"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect feature schemas",
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported feature schema versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-10s  %6s  %s\n", "Version", "Fields", "Description")
		fmt.Fprintln(out, strings.Repeat("─", 64))
		for _, v := range features.Versions() {
			s, err := features.Lookup(v)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-10s  %6d  %s\n", s.Version, s.Len(), s.Description)
		}
		return nil
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show [version]",
	Short: "Show the fields of a schema in vector order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schemaArg(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Schema %s: %s\n\n", s.Version, s.Description)
		fmt.Fprintf(out, "%-3s  %-24s  %-6s  %-30s  %-22s  %s\n",
			"#", "Field", "Alias", "Label", "Accepts", "Encoding")
		fmt.Fprintln(out, strings.Repeat("─", 110))
		for i, f := range s.Fields() {
			label := f.Label
			if f.Unit != "" {
				label += " (" + f.Unit + ")"
			}
			fmt.Fprintf(out, "%-3d  %-24s  %-6s  %-30s  %-22s  %s\n",
				i, f.Name, strings.Join(f.Aliases, ","), label, f.Bounds(), f.Encoding())
		}
		return nil
	},
}

var schemaJSONCmd = &cobra.Command{
	Use:   "jsonschema [version]",
	Short: "Print the JSON Schema for observation documents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schemaArg(args)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(features.DocumentSchema(s))
	},
}

func init() {
	schemaCmd.AddCommand(schemaListCmd)
	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaJSONCmd)
}

// schemaArg resolves the optional version argument; rf1 by default.
func schemaArg(args []string) (*features.Schema, error) {
	v := features.SchemaRF1
	if len(args) == 1 {
		v = args[0]
	}
	return features.Lookup(v)
}

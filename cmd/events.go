package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ckdrisk/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect model load and model call events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		switch kind {
		case "all", "loads", "calls":
		default:
			return fmt.Errorf("invalid --kind %q: want all, loads or calls", kind)
		}

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()
		out := cmd.OutOrStdout()

		if kind != "calls" {
			loads, err := repo.QueryModelLoads(ctx, store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query model loads: %w", err)
			}
			printLoads(out, loads)
		}
		if kind == "all" {
			fmt.Fprintln(out)
		}
		if kind != "loads" {
			calls, err := repo.QueryInferences(ctx, store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query model calls: %w", err)
			}
			printCalls(out, calls)
		}
		return nil
	},
}

var eventsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show model call counts, failures and latency",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.EventRepo().InferenceStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(out, "No model calls recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-14s  %7s  %8s  %8s\n", "Model", "Operation", "Calls", "Failed", "Avg Ms")
		fmt.Fprintln(out, strings.Repeat("─", 62))
		var calls, failed int
		for _, st := range stats {
			fmt.Fprintf(out, "%-16s  %-14s  %7d  %8d  %8d\n",
				st.ModelID, st.Operation, st.Calls, st.Failures, st.AvgLatencyMs)
			calls += st.Calls
			failed += st.Failures
		}
		fmt.Fprintln(out, strings.Repeat("─", 62))
		fmt.Fprintf(out, "%-16s  %-14s  %7d  %8d\n", "TOTAL", "", calls, failed)
		return nil
	},
}

func init() {
	eventsListCmd.Flags().Int("limit", 20, "Maximum events per kind")
	eventsListCmd.Flags().String("kind", "all", "Event kind: all, loads or calls")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsStatsCmd)
}

func openEventStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openStore(cfg)
}

func status(ok bool, msg string) string {
	if ok {
		return "✓"
	}
	return "✗ " + msg
}

func printLoads(out io.Writer, loads []store.ModelLoadEvent) {
	fmt.Fprintln(out, "Model loads")
	if len(loads) == 0 {
		fmt.Fprintln(out, "  none")
		return
	}
	fmt.Fprintf(out, "%-5s  %-19s  %-20s  %-8s  %-8s  %6s  %s\n",
		"ID", "Timestamp", "Format", "Version", "Schema", "Ms", "OK")
	fmt.Fprintln(out, strings.Repeat("─", 90))
	for _, e := range loads {
		fmt.Fprintf(out, "%-5d  %-19s  %-20s  %-8s  %-8s  %6d  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Format,
			e.Version,
			e.Schema,
			e.LatencyMs,
			status(e.Success, e.ErrorMessage),
		)
	}
}

func printCalls(out io.Writer, calls []store.InferenceEvent) {
	fmt.Fprintln(out, "Model calls")
	if len(calls) == 0 {
		fmt.Fprintln(out, "  none")
		return
	}
	fmt.Fprintf(out, "%-5s  %-19s  %-36s  %-10s  %-14s  %6s  %s\n",
		"ID", "Timestamp", "Request", "Model", "Operation", "Ms", "OK")
	fmt.Fprintln(out, strings.Repeat("─", 110))
	for _, e := range calls {
		fmt.Fprintf(out, "%-5d  %-19s  %-36s  %-10s  %-14s  %6d  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.RequestID,
			e.ModelID,
			e.Operation,
			e.LatencyMs,
			status(e.Success, e.ErrorMessage),
		)
	}
}

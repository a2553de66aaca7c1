package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"playerload/internal/cli"
	"playerload/internal/export"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List saved runs, or show one run in full",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()

		if len(args) == 1 {
			item, err := store.Get(args[0])
			if err != nil {
				return fmt.Errorf("run %s: %w", args[0], err)
			}
			cli.PrintSummary(out, item.Report)
			if prefix, _ := cmd.Flags().GetString("out"); prefix != "" {
				if err := export.ExportAll(item.Report, prefix); err != nil {
					return err
				}
				fmt.Fprintf(out, "\n💾 Reports saved to %s.{csv,json}\n", prefix)
			}
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		items, err := store.List(limit)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(out, "No history found. Run with --history to keep results.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN ID\tSTARTED\tURL\tPLAYERS\tOK\tFAIL\tMEDIAN\tP95")
		for _, it := range items {
			r := it.Report
			players := fmt.Sprint(r.Concurrency)
			if r.Cancelled {
				players += "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%dms\t%dms\n",
				it.ID, it.Timestamp.Local().Format("2006-01-02 15:04:05"), r.BaseURL,
				players, r.SuccessCount, r.FailCount, r.P50Ms, r.P95Ms)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Show at most this many runs (0 for all)")
	historyCmd.Flags().StringP("out", "o", "", "With a run id: also write <prefix>.csv and <prefix>.json")
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/onsen-labs/ryokan-atlas/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog resolution state and recent runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		catalog := store.NewCSVCatalog(cfg.Store.CatalogPath)
		records, err := catalog.Load(ctx)
		if err != nil {
			return eris.Wrap(err, "status: load catalog")
		}

		resolved := 0
		for i := range records {
			if records[i].HasCoordinates() {
				resolved++
			}
		}
		fmt.Printf("catalog: %s\n", cfg.Store.CatalogPath)
		fmt.Printf("records: %d (%d located, %d pending)\n\n", len(records), resolved, len(records)-resolved)

		runLog, err := store.NewRunLog(cfg.Store.RunLogPath)
		if err != nil {
			return eris.Wrap(err, "status: open run log")
		}
		defer runLog.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("runs")
		runs, err := runLog.RecentRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "status: list runs")
		}
		if len(runs) == 0 {
			fmt.Println("no recorded runs")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tKIND\tSTATUS\tLISTINGS\tRESOLVED\tUNRESOLVED\tERROR")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				r.StartedAt, r.Kind, r.Status,
				r.Counters.Listings, r.Counters.Resolved, r.Counters.Unresolved,
				truncate(r.Error, 60),
			)
		}
		return w.Flush()
	},
}

func init() {
	statusCmd.Flags().Int("runs", 10, "number of recent runs to show")
	rootCmd.AddCommand(statusCmd)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

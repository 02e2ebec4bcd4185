package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/onsen-labs/ryokan-atlas/internal/model"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape the catalog, then geocode it",
	Long: `The full pipeline: walk every index page and extract listing records,
then resolve coordinates for all records without them. Equivalent to
"scrape" followed by "geocode" against the same catalog file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p := buildPipeline()

		if err := withRunLog(ctx, model.RunScrape, p.Scrape); err != nil {
			return err
		}
		return withRunLog(ctx, model.RunGeocode, p.Geocode)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

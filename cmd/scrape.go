package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onsen-labs/ryokan-atlas/internal/model"
	"github.com/onsen-labs/ryokan-atlas/internal/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Walk index pages and extract listing records",
	Long: `Walk every index page of the catalog site, discover listing URLs,
extract structured fields from each listing, and checkpoint the catalog
file as it grows. Listings already present in the catalog are skipped,
so an interrupted run picks up where it left off.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withRunLog(ctx, model.RunScrape, func(ctx context.Context) (model.RunCounters, error) {
			return buildPipeline().Scrape(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

// withRunLog records the pass in the run log around fn. Run log
// problems degrade the bookkeeping, never the run itself.
func withRunLog(ctx context.Context, kind model.RunKind, fn func(context.Context) (model.RunCounters, error)) error {
	log := zap.L().With(zap.String("command", string(kind)))

	runLog, err := store.NewRunLog(cfg.Store.RunLogPath)
	if err != nil {
		return eris.Wrap(err, "open run log")
	}
	defer runLog.Close() //nolint:errcheck

	runID, err := runLog.StartRun(ctx, kind)
	if err != nil {
		log.Warn("run log unavailable, continuing without it", zap.Error(err))
	}

	counters, runErr := fn(ctx)

	if runID != "" {
		logCtx := context.WithoutCancel(ctx)
		if runErr != nil {
			if err := runLog.FailRun(logCtx, runID, runErr.Error()); err != nil {
				log.Warn("failed to record run failure", zap.Error(err))
			}
		} else if err := runLog.CompleteRun(logCtx, runID, counters); err != nil {
			log.Warn("failed to record run completion", zap.Error(err))
		}
	}

	return runErr
}

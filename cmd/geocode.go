package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/onsen-labs/ryokan-atlas/internal/model"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve coordinates for catalog records",
	Long: `Load the catalog file and resolve coordinates for every record that
does not have them yet, via the Nominatim/Photon strategy chain. Each
provider's minimum request spacing is enforced independently; progress
is checkpointed so the pass can be interrupted and resumed. Records
that stay unresolved after the full chain are reported, not retried
endlessly.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withRunLog(ctx, model.RunGeocode, func(ctx context.Context) (model.RunCounters, error) {
			return buildPipeline().Geocode(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}

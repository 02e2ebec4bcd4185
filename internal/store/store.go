// Package store persists the catalog snapshot and the run log.
package store

import (
	"context"

	"github.com/onsen-labs/ryokan-atlas/internal/model"
)

// Catalog is the checkpoint interface the orchestrator saves through.
// Save must never leave the previous snapshot corrupted: a failed write
// loses at most the batch in flight.
type Catalog interface {
	Save(ctx context.Context, records []model.ListingRecord) error
	Load(ctx context.Context) ([]model.ListingRecord, error)
}

// Package pipeline orchestrates the index walk, field extraction,
// geocode resolution, and checkpointing.
//
// A run is a single logical stream of work: index pages are processed
// in order and listings within a page sequentially, because the
// politeness delay and the provider rate gates assume serialized
// calls. The optional parallel geocode pass keeps each provider's rate
// limiter as the one shared gate across workers.
package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/onsen-labs/ryokan-atlas/internal/discover"
	"github.com/onsen-labs/ryokan-atlas/internal/model"
	"github.com/onsen-labs/ryokan-atlas/internal/store"
	"github.com/onsen-labs/ryokan-atlas/pkg/geocode"
)

// Fetcher retrieves catalog pages.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Extractor turns one listing document into a record.
type Extractor interface {
	Extract(ctx context.Context, pageURL string, html []byte) model.ListingRecord
}

// Resolver resolves a listing's coordinates.
type Resolver interface {
	Resolve(ctx context.Context, name, address string) (*geocode.Result, error)
}

// Options configures a Pipeline.
type Options struct {
	IndexURLTemplate       string // fmt template with one %d page number
	Pages                  int
	PolitenessMin          time.Duration
	PolitenessMax          time.Duration
	CheckpointEvery        int // listings between scrape checkpoints
	GeocodeCheckpointEvery int // attempts between geocode checkpoints
	Workers                int // parallel geocode workers; 1 = sequential
}

// Pipeline runs the acquisition-and-resolution flow against a catalog
// store.
type Pipeline struct {
	fetcher   Fetcher
	extractor Extractor
	resolver  Resolver
	catalog   store.Catalog
	opts      Options
}

// New creates a Pipeline.
func New(fetcher Fetcher, extractor Extractor, resolver Resolver, catalog store.Catalog, opts Options) *Pipeline {
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = 5
	}
	if opts.GeocodeCheckpointEvery <= 0 {
		opts.GeocodeCheckpointEvery = 10
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		resolver:  resolver,
		catalog:   catalog,
		opts:      opts,
	}
}

// Scrape walks every index page, discovers listings, extracts fields,
// and checkpoints the accumulated set. Page and listing failures are
// logged and skipped; only an unrecoverable checkpoint failure aborts
// the run.
func (p *Pipeline) Scrape(ctx context.Context) (model.RunCounters, error) {
	log := zap.L().With(zap.String("component", "pipeline.scrape"))

	records, err := p.catalog.Load(ctx)
	if err != nil {
		return model.RunCounters{}, eris.Wrap(err, "pipeline: load catalog")
	}
	known := make(map[string]struct{}, len(records))
	for i := range records {
		known[records[i].URL] = struct{}{}
	}
	if len(records) > 0 {
		log.Info("resuming with existing catalog", zap.Int("records", len(records)))
	}

	var counters model.RunCounters
	sinceCheckpoint := 0

	for page := 1; page <= p.opts.Pages; page++ {
		if err := ctx.Err(); err != nil {
			// Interrupted between units of work: the last checkpoint is
			// a consistent snapshot, so just flush and stop.
			if saveErr := p.saveWithRetry(context.WithoutCancel(ctx), records); saveErr != nil {
				return counters, saveErr
			}
			return counters, err
		}

		pageURL := fmt.Sprintf(p.opts.IndexURLTemplate, page)
		body, err := p.fetcher.Get(ctx, pageURL)
		if err != nil {
			log.Warn("index page fetch failed, skipping",
				zap.Int("page", page),
				zap.Error(err),
			)
			counters.PagesSkipped++
			continue
		}

		urls, err := discover.Listings(body)
		if err != nil {
			log.Warn("index page parse failed, skipping",
				zap.Int("page", page),
				zap.Error(err),
			)
			counters.PagesSkipped++
			continue
		}

		for _, u := range urls {
			if err := ctx.Err(); err != nil {
				if saveErr := p.saveWithRetry(context.WithoutCancel(ctx), records); saveErr != nil {
					return counters, saveErr
				}
				return counters, err
			}
			if _, dup := known[u]; dup {
				continue
			}

			if err := p.politenessDelay(ctx); err != nil {
				continue
			}

			listingBody, err := p.fetcher.Get(ctx, u)
			if err != nil {
				log.Warn("listing fetch failed, skipping",
					zap.String("url", u),
					zap.Error(err),
				)
				continue
			}

			rec := p.extractor.Extract(ctx, u, listingBody)
			records = append(records, rec)
			known[u] = struct{}{}
			counters.Listings++
			sinceCheckpoint++

			if sinceCheckpoint >= p.opts.CheckpointEvery {
				if err := p.saveWithRetry(ctx, records); err != nil {
					return counters, err
				}
				sinceCheckpoint = 0
			}
		}

		counters.PagesProcessed++
		log.Info("index page done",
			zap.Int("page", page),
			zap.Int("listings_on_page", len(urls)),
			zap.Int("total_records", len(records)),
		)
	}

	if err := p.saveWithRetry(ctx, records); err != nil {
		return counters, err
	}

	log.Info("scrape complete",
		zap.Int("pages", counters.PagesProcessed),
		zap.Int("pages_skipped", counters.PagesSkipped),
		zap.Int("new_listings", counters.Listings),
		zap.Int("total_records", len(records)),
	)
	return counters, nil
}

// politenessDelay sleeps a uniformly random interval between
// consecutive listing fetches to avoid overloading the source.
func (p *Pipeline) politenessDelay(ctx context.Context) error {
	if p.opts.PolitenessMax <= 0 {
		return nil
	}
	d := p.opts.PolitenessMin
	if span := p.opts.PolitenessMax - p.opts.PolitenessMin; span > 0 {
		d += time.Duration(rand.Int64N(int64(span)))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// saveWithRetry checkpoints the record set. A failed save is retried
// once; a second failure aborts the run so the in-memory set is never
// silently dropped.
func (p *Pipeline) saveWithRetry(ctx context.Context, records []model.ListingRecord) error {
	err := p.catalog.Save(ctx, records)
	if err == nil {
		return nil
	}
	zap.L().Warn("checkpoint save failed, retrying once", zap.Error(err))

	if err := p.catalog.Save(ctx, records); err != nil {
		return eris.Wrap(err, "pipeline: checkpoint save")
	}
	return nil
}

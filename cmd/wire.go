package main

import (
	"time"

	"github.com/onsen-labs/ryokan-atlas/internal/extract"
	"github.com/onsen-labs/ryokan-atlas/internal/fetch"
	"github.com/onsen-labs/ryokan-atlas/internal/pipeline"
	"github.com/onsen-labs/ryokan-atlas/internal/store"
	"github.com/onsen-labs/ryokan-atlas/pkg/geocode"
)

// buildPipeline wires the pipeline from configuration. Each geocode
// provider gets its own rate gate here, created once per process so
// every caller shares the same clock.
func buildPipeline() *pipeline.Pipeline {
	fetcher := fetch.NewClient(fetch.Options{
		UserAgent: cfg.Source.UserAgent,
		Timeout:   time.Duration(cfg.Source.TimeoutSecs) * time.Second,
	})

	extractor := extract.NewExtractor(fetcher)

	geocodeTimeout := time.Duration(cfg.Geocode.TimeoutSecs) * time.Second
	primary := geocode.NewNominatim(geocode.NominatimOptions{
		BaseURL:     cfg.Geocode.NominatimURL,
		UserAgent:   "ryokan-atlas/1.0",
		Timeout:     geocodeTimeout,
		MinInterval: time.Duration(cfg.Geocode.NominatimMinIntervalMs) * time.Millisecond,
	})
	secondary := geocode.NewPhoton(geocode.PhotonOptions{
		BaseURL:     cfg.Geocode.PhotonURL,
		Timeout:     geocodeTimeout,
		MinInterval: time.Duration(cfg.Geocode.PhotonMinIntervalMs) * time.Millisecond,
	})
	resolver := geocode.NewResolver(primary, secondary, cfg.Geocode.QuerySuffix)

	catalog := store.NewCSVCatalog(cfg.Store.CatalogPath)

	return pipeline.New(fetcher, extractor, resolver, catalog, pipeline.Options{
		IndexURLTemplate:       cfg.Source.IndexURLTemplate,
		Pages:                  cfg.Source.Pages,
		PolitenessMin:          time.Duration(cfg.Pipeline.PolitenessMinMs) * time.Millisecond,
		PolitenessMax:          time.Duration(cfg.Pipeline.PolitenessMaxMs) * time.Millisecond,
		CheckpointEvery:        cfg.Pipeline.CheckpointEvery,
		GeocodeCheckpointEvery: cfg.Pipeline.GeocodeCheckpointEvery,
		Workers:                cfg.Pipeline.Workers,
	})
}

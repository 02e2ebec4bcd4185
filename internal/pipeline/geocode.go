package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/onsen-labs/ryokan-atlas/internal/model"
	"github.com/onsen-labs/ryokan-atlas/pkg/geocode"
)

// Geocode resolves coordinates for every catalog record that does not
// have them yet. Records already carrying coordinates are immutable and
// skipped, which is what makes interrupted runs cheap to resume. An
// exhausted strategy chain leaves the record unresolved; that is
// reported, not fatal.
func (p *Pipeline) Geocode(ctx context.Context) (model.RunCounters, error) {
	log := zap.L().With(zap.String("component", "pipeline.geocode"))

	records, err := p.catalog.Load(ctx)
	if err != nil {
		return model.RunCounters{}, eris.Wrap(err, "pipeline: load catalog")
	}

	var pending []int
	for i := range records {
		if !records[i].HasCoordinates() {
			pending = append(pending, i)
		}
	}

	counters := model.RunCounters{Listings: len(records)}

	if len(pending) == 0 {
		log.Info("all records already have coordinates, nothing to do")
		counters.Resolved = len(records)
		return counters, nil
	}
	log.Info("starting geocode pass",
		zap.Int("pending", len(pending)),
		zap.Int("total", len(records)),
		zap.Int("workers", p.opts.Workers),
	)

	// state guards the shared record set and the checkpoint cadence
	// when workers run in parallel. Provider rate limiters serialize
	// the actual remote calls regardless of worker count.
	state := &geocodeState{
		pipeline: p,
		records:  records,
		every:    p.opts.GeocodeCheckpointEvery,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for _, idx := range pending {
		g.Go(func() error {
			rec := &state.records[idx]

			result, err := p.resolver.Resolve(gctx, rec.Name, rec.Address)
			if err != nil {
				// Only cancellation surfaces here; provider errors are
				// absorbed by the strategy chain.
				return err
			}

			if !result.Matched {
				log.Debug("listing unresolved after full strategy chain",
					zap.String("url", rec.URL),
					zap.String("name", rec.Name),
				)
			}
			return state.recordAttempt(gctx, idx, result)
		})
	}

	runErr := g.Wait()

	for i := range state.records {
		if state.records[i].HasCoordinates() {
			counters.Resolved++
		} else {
			counters.Unresolved++
		}
	}

	// Final flush happens even on cancellation so resume picks up from
	// a consistent snapshot.
	if err := p.saveWithRetry(context.WithoutCancel(ctx), state.records); err != nil {
		return counters, err
	}
	if runErr != nil {
		return counters, runErr
	}

	log.Info("geocode pass complete",
		zap.Int("resolved", counters.Resolved),
		zap.Int("unresolved", counters.Unresolved),
		zap.Int("total", len(state.records)),
	)
	return counters, nil
}

// geocodeState tracks attempts and checkpoints the shared record set.
type geocodeState struct {
	pipeline *Pipeline
	mu       sync.Mutex
	records  []model.ListingRecord
	attempts int
	every    int
}

// recordAttempt applies one finished resolution and checkpoints every
// `every` attempts. Coordinate writes and snapshot saves share the
// lock so a save never observes a half-written record.
func (s *geocodeState) recordAttempt(ctx context.Context, idx int, result *geocode.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result.Matched {
		s.records[idx].SetCoordinates(result.Lat, result.Lon)
	}

	s.attempts++
	if s.attempts%s.every != 0 {
		return nil
	}
	return s.pipeline.saveWithRetry(ctx, s.records)
}

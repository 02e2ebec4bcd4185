package geocode

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/onsen-labs/ryokan-atlas/internal/geo"
)

// unknownAddress is the extractor's default when no address element was
// found; querying it verbatim would only geocode the word "Unknown".
const unknownAddress = "Unknown"

// Resolver runs the fixed four-step strategy chain over the primary and
// secondary providers, returning the first usable coordinate pair.
type Resolver struct {
	primary   Provider
	secondary Provider
	suffix    string // broadened-query suffix, e.g. "Japan"
}

// NewResolver creates a Resolver. suffix widens name-only queries in
// the later strategies ("{name} {suffix}").
func NewResolver(primary, secondary Provider, suffix string) *Resolver {
	if suffix == "" {
		suffix = "Japan"
	}
	return &Resolver{primary: primary, secondary: secondary, suffix: suffix}
}

// strategy pairs a provider with a query construction.
type strategy struct {
	provider Provider
	query    string
}

// strategies builds the chain in its fixed priority order. Strategies
// whose query would be empty are dropped up front.
func (r *Resolver) strategies(name, address string) []strategy {
	if address == unknownAddress {
		address = ""
	}

	var chain []strategy
	if address != "" {
		chain = append(chain, strategy{r.primary, address})
	}
	if name != "" && address != "" {
		chain = append(chain, strategy{r.secondary, fmt.Sprintf("%s, %s", name, address)})
	}
	if name != "" {
		broadened := fmt.Sprintf("%s %s", name, r.suffix)
		chain = append(chain,
			strategy{r.secondary, broadened},
			strategy{r.primary, broadened},
		)
	}
	return chain
}

// Resolve tries each strategy in order and short-circuits on the first
// match inside the Japan bounds. A provider error or an out-of-bounds
// hit falls through to the next strategy; exhausting the chain returns
// an unmatched Result, which is an expected outcome, not an error.
func (r *Resolver) Resolve(ctx context.Context, name, address string) (*Result, error) {
	log := zap.L().With(zap.String("listing", name))

	for _, s := range r.strategies(name, address) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := s.provider.Geocode(ctx, s.query)
		if err != nil {
			log.Debug("geocode: strategy failed, trying next",
				zap.String("provider", s.provider.Name()),
				zap.String("query", s.query),
				zap.Error(err),
			)
			continue
		}
		if !result.Matched {
			continue
		}
		if !geo.InJapan(result.Lat, result.Lon) {
			log.Debug("geocode: hit outside Japan bounds, trying next",
				zap.String("provider", s.provider.Name()),
				zap.Float64("lat", result.Lat),
				zap.Float64("lon", result.Lon),
			)
			continue
		}
		return result, nil
	}

	return &Result{Matched: false}, nil
}

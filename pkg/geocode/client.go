// Package geocode resolves free-text queries to coordinates via
// Nominatim (primary, strict rate contract) and Photon (secondary, more
// permissive), tried as an ordered strategy chain.
package geocode

import (
	"context"
	"net/http"
	"time"
)

// Provider is a single geocoding backend. Each provider owns its own
// rate limiter: the minimum spacing between calls is a contract with
// the remote service, enforced no matter how many callers share the
// provider.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, query string) (*Result, error)
}

// Result holds the outcome of one provider call. An unmatched result is
// the expected miss case; provider failures surface as errors instead.
type Result struct {
	Lat     float64
	Lon     float64
	Matched bool
	Source  string
}

// newHTTPClient builds the http.Client shared by the provider
// implementations in this package.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

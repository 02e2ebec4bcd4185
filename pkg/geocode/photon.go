package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultPhotonURL is the public Photon (komoot) endpoint.
const DefaultPhotonURL = "https://photon.komoot.io"

// PhotonMinInterval is the spacing between calls to Photon, which
// tolerates a higher request rate than Nominatim.
const PhotonMinInterval = 500 * time.Millisecond

// Photon is the secondary, more permissive provider.
type Photon struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// PhotonOptions configures a Photon provider.
type PhotonOptions struct {
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration
}

// NewPhoton creates the secondary provider with its own rate gate,
// independent of the primary's clock.
func NewPhoton(opts PhotonOptions) *Photon {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultPhotonURL
	}
	if opts.MinInterval == 0 {
		opts.MinInterval = PhotonMinInterval
	}
	return &Photon{
		baseURL: opts.BaseURL,
		http:    newHTTPClient(opts.Timeout),
		limiter: rate.NewLimiter(rate.Every(opts.MinInterval), 1),
	}
}

// Name implements Provider.
func (p *Photon) Name() string { return "photon" }

// photonResponse is the GeoJSON FeatureCollection Photon returns.
// Coordinates are ordered lon, lat.
type photonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode implements Provider.
func (p *Photon) Geocode(ctx context.Context, query string) (*Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "photon: rate limit")
	}

	params := url.Values{
		"q":     {query},
		"limit": {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "photon: build request")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "photon: request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("photon: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "photon: read body")
	}

	var pr photonResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, eris.Wrap(err, "photon: parse response")
	}
	if len(pr.Features) == 0 || len(pr.Features[0].Geometry.Coordinates) < 2 {
		return &Result{Matched: false, Source: p.Name()}, nil
	}

	coords := pr.Features[0].Geometry.Coordinates
	return &Result{Lat: coords[1], Lon: coords[0], Matched: true, Source: p.Name()}, nil
}

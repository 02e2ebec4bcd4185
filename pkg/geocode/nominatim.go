package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimMinInterval is the minimum spacing between calls required by
// the public Nominatim usage policy, with a little headroom over the
// nominal one request per second.
const NominatimMinInterval = 1100 * time.Millisecond

// Nominatim is the primary, strictly rate-limited provider.
type Nominatim struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NominatimOptions configures a Nominatim provider.
type NominatimOptions struct {
	BaseURL     string
	UserAgent   string // required by the Nominatim usage policy
	Timeout     time.Duration
	MinInterval time.Duration
}

// NewNominatim creates the primary provider with its own rate gate.
func NewNominatim(opts NominatimOptions) *Nominatim {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNominatimURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ryokan-atlas/1.0"
	}
	if opts.MinInterval == 0 {
		opts.MinInterval = NominatimMinInterval
	}
	return &Nominatim{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		http:      newHTTPClient(opts.Timeout),
		limiter:   rate.NewLimiter(rate.Every(opts.MinInterval), 1),
	}
}

// Name implements Provider.
func (n *Nominatim) Name() string { return "nominatim" }

// nominatimPlace is one entry of the jsonv2 search response. Nominatim
// serializes coordinates as strings.
type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode implements Provider.
func (n *Nominatim) Geocode(ctx context.Context, query string) (*Result, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "nominatim: rate limit")
	}

	params := url.Values{
		"q":      {query},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: build request")
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("nominatim: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: read body")
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "nominatim: parse response")
	}
	if len(places) == 0 {
		return &Result{Matched: false, Source: n.Name()}, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: parse lat")
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: parse lon")
	}

	return &Result{Lat: lat, Lon: lon, Matched: true, Source: n.Name()}, nil
}

// Package fetch wraps net/http for catalog page retrieval.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// maxBodySize caps how much of a page is read. Listing pages are well
// under this; anything larger is not a page we want.
const maxBodySize = 2 * 1024 * 1024

// Client fetches HTML documents from the catalog site.
type Client struct {
	http      *http.Client
	userAgent string
}

// Options configures a Client.
type Options struct {
	UserAgent string
	Timeout   time.Duration
}

// NewClient creates a Client with sensible defaults.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ryokan-atlas/1.0"
	}
	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 4,
			},
		},
		userAgent: opts.UserAgent,
	}
}

// Get fetches a URL and returns the response body. Non-2xx statuses are
// errors; callers treat any error as a skipped unit of work.
func (c *Client) Get(ctx context.Context, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: get")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("fetch: status %d from %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: read body")
	}
	return body, nil
}

package extract

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

// fakeWidgetFetcher records fetches and serves a canned fragment.
type fakeWidgetFetcher struct {
	calls int
	urls  []string
	body  []byte
	err   error
}

func (f *fakeWidgetFetcher) Get(_ context.Context, url string) ([]byte, error) {
	f.calls++
	f.urls = append(f.urls, url)
	return f.body, f.err
}

func TestRating_InlineImage(t *testing.T) {
	t.Parallel()
	fetcher := &fakeWidgetFetcher{}
	e := NewExtractor(fetcher)

	rec := e.Extract(context.Background(), listingURL,
		[]byte(`<html><body><img alt="4.0 of 5 bubbles" src="/b.svg"></body></html>`))

	assert.InDelta(t, 4.0, rec.Rating, 1e-9)
	assert.Zero(t, fetcher.calls, "inline rating must not trigger a widget fetch")
}

func TestRating_NoWidgetNoFetch(t *testing.T) {
	t.Parallel()
	fetcher := &fakeWidgetFetcher{}
	e := NewExtractor(fetcher)

	rec := e.Extract(context.Background(), listingURL,
		[]byte(`<html><body><h1>Tawaraya</h1></body></html>`))

	assert.Zero(t, rec.Rating)
	assert.Zero(t, fetcher.calls, "no widget reference means no fetch at all")
}

func TestRating_ExternalWidget(t *testing.T) {
	t.Parallel()
	fetcher := &fakeWidgetFetcher{body: []byte(`<span aria-label="3.5 of 5 bubbles"></span>`)}
	e := NewExtractor(fetcher)

	rec := e.Extract(context.Background(), listingURL,
		[]byte(`<html><body><iframe src="https://widgets.example.com/rating/123"></iframe></body></html>`))

	assert.InDelta(t, 3.5, rec.Rating, 1e-9)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, []string{"https://widgets.example.com/rating/123"}, fetcher.urls)
}

func TestRating_WidgetFetchFailureIsNoRating(t *testing.T) {
	t.Parallel()
	fetcher := &fakeWidgetFetcher{err: eris.New("timeout")}
	e := NewExtractor(fetcher)

	rec := e.Extract(context.Background(), listingURL,
		[]byte(`<html><body><div data-rating-widget="https://widgets.example.com/rating/9"></div></body></html>`))

	assert.Zero(t, rec.Rating, "widget failures degrade to no rating")
	assert.Equal(t, 1, fetcher.calls)
}

func TestRating_NilFetcherSkipsWidget(t *testing.T) {
	t.Parallel()
	e := NewExtractor(nil)

	rec := e.Extract(context.Background(), listingURL,
		[]byte(`<html><body><iframe src="https://widgets.example.com/rating/5"></iframe></body></html>`))

	assert.Zero(t, rec.Rating)
}

func TestParseBubbleRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"plain", "4.5 of 5 bubbles", 4.5, true},
		{"integer", "4 of 5 bubbles", 4, true},
		{"embedded", "Rated 3.5 of 5 bubbles by travelers", 3.5, true},
		{"no match", "five stars", 0, false},
		{"out of range", "9.5 of 5 bubbles", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := parseBubbleRating(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

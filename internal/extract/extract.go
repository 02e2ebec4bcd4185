// Package extract turns one listing document into a typed ListingRecord.
//
// Every field is extracted by an ordered list of heuristic rules; the
// first rule that succeeds wins and a failed field degrades to its
// default instead of failing the pipeline. The source markup is
// semi-structured and frequently missing sections, so defaults are the
// expected path for several fields.
package extract

import (
	"bytes"
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/onsen-labs/ryokan-atlas/internal/model"
)

// WidgetFetcher retrieves an external rating widget fragment. It is only
// invoked when a listing actually references one.
type WidgetFetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Extractor applies the per-field rule sets to listing documents.
type Extractor struct {
	widgets WidgetFetcher
}

// NewExtractor creates an Extractor. widgets may be nil, in which case
// external rating widgets are skipped and such listings get rating 0.
func NewExtractor(widgets WidgetFetcher) *Extractor {
	return &Extractor{widgets: widgets}
}

// rule is one extraction heuristic for a field. ok is false when the
// rule does not apply to this document.
type rule[T any] func(doc *goquery.Document) (value T, ok bool)

// firstOf applies rules in order and returns the first success, else
// the fallback. This is the only combination policy in the package.
func firstOf[T any](doc *goquery.Document, fallback T, rules ...rule[T]) T {
	for _, r := range rules {
		if v, ok := r(doc); ok {
			return v
		}
	}
	return fallback
}

// Extract parses a listing page and returns its record. It never fails:
// an unparseable document yields a record of defaults carrying only the
// URL, and each missing field falls back independently.
func (e *Extractor) Extract(ctx context.Context, pageURL string, html []byte) model.ListingRecord {
	rec := model.ListingRecord{
		URL:     pageURL,
		Name:    "Unknown",
		Address: "Unknown",
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		zap.L().Warn("extract: unparseable document", zap.String("url", pageURL), zap.Error(err))
		return rec
	}

	rec.Name = firstOf(doc, "Unknown", nameRule)
	rec.Address = firstOf(doc, "Unknown", addressRule)
	rec.PriceMin, rec.PriceMax = priceRange(doc)
	rec.OpenAirRoomCount = firstOf(doc, 0, openAirCountRule, openAirAvailableRule)
	rec.RentalOpenAir, rec.RentalIndoor, rec.RentalBoth = rentalFlags(doc)
	rec.Rating = e.rating(ctx, doc, pageURL)
	rec.Tags = tags(doc)
	rec.Description = firstOf(doc, "", descriptionRule)
	rec.TransportationNotes = transportationNotes(doc)

	if rec.Name == "Unknown" || rec.Address == "Unknown" {
		zap.L().Debug("extract: field defaults applied",
			zap.String("url", pageURL),
			zap.Bool("name_unknown", rec.Name == "Unknown"),
			zap.Bool("address_unknown", rec.Address == "Unknown"),
		)
	}

	return rec
}

package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// widgetFetchTimeout bounds the extra round trip for an external rating
// widget. A slow widget host must not stall the whole listing.
const widgetFetchTimeout = 5 * time.Second

// bubbleRatingRe matches "4.5 of 5 bubbles" style accessible-text
// labels used by the embedded review widget.
var bubbleRatingRe = regexp.MustCompile(`([\d.]+)\s+of\s+5\s+bubbles`)

// rating resolves the review rating for a listing. Inline widget images
// are read directly; an external widget fragment is fetched under its
// own short timeout, and any failure there means "no rating" rather
// than a failed extraction. When the document carries no widget at all,
// no fetch is attempted.
func (e *Extractor) rating(ctx context.Context, doc *goquery.Document, pageURL string) float64 {
	if r, ok := inlineRating(doc); ok {
		return r
	}

	src, ok := widgetSource(doc)
	if !ok || e.widgets == nil {
		return 0
	}

	fetchCtx, cancel := context.WithTimeout(ctx, widgetFetchTimeout)
	defer cancel()

	body, err := e.widgets.Get(fetchCtx, src)
	if err != nil {
		zap.L().Debug("extract: rating widget fetch failed",
			zap.String("url", pageURL),
			zap.String("widget", src),
			zap.Error(err),
		)
		return 0
	}

	r, ok := parseBubbleRating(string(body))
	if !ok {
		return 0
	}
	return r
}

// inlineRating reads the rating from an inline widget image's alt text.
func inlineRating(doc *goquery.Document) (float64, bool) {
	var rating float64
	var found bool
	doc.Find(`img[alt*="of 5 bubbles"]`).EachWithBreak(func(_ int, img *goquery.Selection) bool {
		alt, _ := img.Attr("alt")
		if r, ok := parseBubbleRating(alt); ok {
			rating, found = r, true
			return false
		}
		return true
	})
	return rating, found
}

// widgetSource finds a reference to an external rating widget fragment.
func widgetSource(doc *goquery.Document) (string, bool) {
	var src string
	doc.Find(`iframe[src], [data-rating-widget]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("data-rating-widget"); ok && v != "" {
			src = v
			return false
		}
		if v, ok := s.Attr("src"); ok && strings.Contains(v, "rating") {
			src = v
			return false
		}
		return true
	})
	return src, src != ""
}

// parseBubbleRating extracts the first floating-point number from an
// "X of 5 bubbles" label. Values outside [0, 5] are rejected.
func parseBubbleRating(s string) (float64, bool) {
	m := bubbleRatingRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	r, err := strconv.ParseFloat(strings.Trim(m[1], "."), 64)
	if err != nil || r < 0 || r > 5 {
		return 0, false
	}
	return r, true
}

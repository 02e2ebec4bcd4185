// Package discover finds listing URLs on paginated index pages.
package discover

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Path conventions on the source site. A listing-card link is kept only
// when it matches the listing convention and neither the pagination nor
// the guide/editorial conventions.
const (
	listingPathPart    = "/ryokan/"
	paginationPathPart = "page/"
	guidePathPart      = "/guide/"
)

// Listings parses one index page and returns the listing URLs it
// references, de-duplicated and in source order. Source order is not
// significant downstream but stable output keeps resume diagnostics
// comparable across runs.
func Listings(html []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "discover: parse index page")
	}

	seen := make(map[string]struct{})
	var urls []string

	doc.Find("article a.box-link").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !IsListingURL(href) {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		urls = append(urls, href)
	})

	return urls, nil
}

// IsListingURL reports whether a link target follows the listing path
// convention without being a pagination or guide link.
func IsListingURL(href string) bool {
	return strings.Contains(href, listingPathPart) &&
		!strings.Contains(href, paginationPathPart) &&
		!strings.Contains(href, guidePathPart)
}

package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/onsen-labs/ryokan-atlas/internal/text"
)

// Selectors follow the source site's markup conventions. They are kept
// in one place so a site redesign is a single diff.
const (
	selAddress        = ".txt-address"
	selPriceHeader    = "#tit-price"
	selContent        = ".ryokan-text .content"
	selPrivateHeader  = "#tit-private-use"
	selRentalSection  = ".detail-private"
	selTags           = ".ryokan-category.tags a"
	selTransportation = ".txt-Transportation"
)

// showMapMarker is scrape debris appended to addresses by the site's
// map link; everything from it onward is dropped.
const showMapMarker = "Show map"

var (
	numberRe       = regexp.MustCompile(`\d+`)
	openAirRoomsRe = regexp.MustCompile(`(?i)rooms with open-air.*?:.*?(\d+)`)
)

// nameRule takes the first-level heading.
func nameRule(doc *goquery.Document) (string, bool) {
	h1 := doc.Find("h1").First()
	if h1.Length() == 0 {
		return "", false
	}
	name := text.Normalize(h1.Text())
	return name, name != ""
}

// addressRule takes the designated address element, truncated at the
// "Show map" marker when present.
func addressRule(doc *goquery.Document) (string, bool) {
	tag := doc.Find(selAddress).First()
	if tag.Length() == 0 {
		return "", false
	}
	addr, _, _ := strings.Cut(tag.Text(), showMapMarker)
	addr = text.Normalize(addr)
	return addr, addr != ""
}

// priceRange extracts (min, max) from the price container. Two or more
// numeric runs give (first, second); exactly one gives (v, v); anything
// else is (0, 0) meaning unknown.
func priceRange(doc *goquery.Document) (int, int) {
	section := doc.Find(selPriceHeader).First()
	if section.Length() == 0 {
		return 0, 0
	}
	span := section.ParentsFiltered("div").First().Find("p span").First()
	if span.Length() == 0 {
		return 0, 0
	}

	// Thousands separators would split one price into two runs.
	raw := strings.ReplaceAll(span.Text(), ",", "")
	nums := numberRe.FindAllString(raw, -1)

	switch {
	case len(nums) >= 2:
		lo, _ := strconv.Atoi(nums[0])
		hi, _ := strconv.Atoi(nums[1])
		return lo, hi
	case len(nums) == 1:
		v, _ := strconv.Atoi(nums[0])
		return v, v
	default:
		return 0, 0
	}
}

// openAirCountRule reads a true room count from the free-text
// description block.
func openAirCountRule(doc *goquery.Document) (int, bool) {
	content := doc.Find(selContent).First()
	if content.Length() == 0 {
		return 0, false
	}
	m := openAirRoomsRe.FindStringSubmatch(content.Text())
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// openAirAvailableRule falls back to the private-use availability
// marker. The value 1 is a sentinel meaning "available, count unknown",
// not a measured count; downstream filters only ever test > 0.
func openAirAvailableRule(doc *goquery.Document) (int, bool) {
	section := doc.Find(selPrivateHeader).First()
	if section.Length() == 0 {
		return 0, false
	}
	dl := section.ParentsFiltered("div").First().Find("dl").First()
	if dl.Length() == 0 || !strings.Contains(dl.Text(), "Available") {
		return 0, false
	}
	return 1, true
}

// rentalCategory classifies a rental definition-list label.
type rentalCategory int

const (
	rentalNone rentalCategory = iota
	rentalOpenAirOnly
	rentalIndoorOnly
	rentalIndoorAndOutdoor
)

// classifyRentalLabel routes a label to exactly one category. A label
// mentioning both open-air and indoor always lands in the combined
// category, never in either single one.
func classifyRentalLabel(label string) rentalCategory {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "indoor and outdoor"):
		return rentalIndoorAndOutdoor
	case strings.Contains(l, "open-air") && strings.Contains(l, "indoor"):
		return rentalIndoorAndOutdoor
	case strings.Contains(l, "open-air"):
		return rentalOpenAirOnly
	case strings.Contains(l, "indoor"):
		return rentalIndoorOnly
	default:
		return rentalNone
	}
}

// rentalFlags scans definition-list pairs under "Rental" headers. Each
// pair's value is a count; the flag is true iff the count is positive.
// The three flags are independent: a listing may offer several rental
// types at once.
func rentalFlags(doc *goquery.Document) (openAir, indoor, both bool) {
	doc.Find(selRentalSection).Each(func(_ int, section *goquery.Selection) {
		header := section.Find("h3").First()
		if header.Length() == 0 || !strings.Contains(header.Text(), "Rental") {
			return
		}
		section.Find("dl").Each(func(_ int, dl *goquery.Selection) {
			label := dl.Find("dt").First().Text()
			value := strings.TrimSpace(dl.Find("dd").First().Text())

			count := 0
			if n, err := strconv.Atoi(value); err == nil {
				count = n
			}

			switch classifyRentalLabel(label) {
			case rentalOpenAirOnly:
				openAir = count > 0
			case rentalIndoorOnly:
				indoor = count > 0
			case rentalIndoorAndOutdoor:
				both = count > 0
			}
		})
	})
	return openAir, indoor, both
}

// tags collects anchor texts from the category-tag container in source
// order.
func tags(doc *goquery.Document) []string {
	var out []string
	doc.Find(selTags).Each(func(_ int, a *goquery.Selection) {
		if t := text.Normalize(a.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// descriptionRule takes the first paragraph of the main content block.
func descriptionRule(doc *goquery.Document) (string, bool) {
	p := doc.Find(selContent).First().Find("p").First()
	if p.Length() == 0 {
		return "", false
	}
	desc := text.Normalize(p.Text())
	return desc, desc != ""
}

// transportationNotes collects the enumerated transit directions. The
// source's convention is one paragraph per route, each starting with an
// opening parenthesis, inside the article that holds the
// transportation marker.
func transportationNotes(doc *goquery.Document) string {
	marker := doc.Find(selTransportation).First()
	if marker.Length() == 0 {
		return ""
	}
	article := marker.ParentsFiltered("article").First()
	if article.Length() == 0 {
		return ""
	}

	var lines []string
	article.Find("p").Each(func(_ int, p *goquery.Selection) {
		t := text.Normalize(p.Text())
		if strings.HasPrefix(t, "(") {
			lines = append(lines, t)
		}
	})
	return strings.Join(lines, " | ")
}

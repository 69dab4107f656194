package detector

import (
	"regexp"
	"strconv"
	"strings"

	"pricetracker/internal/identity"
	"pricetracker/internal/pagequery"
	"pricetracker/internal/platform/models"
)

// digitRun matches the first run of digits, optionally grouped by thousands
// separators. Currency symbols and surrounding prose are ignored by taking
// the run, not the whole text.
var digitRun = regexp.MustCompile(`[0-9]+(?:[,．，.][0-9]{3})*`)

// Extract builds a product record draft from doc at rawURL. Each field is
// extracted independently; a field that can't be located takes its typed
// default instead of aborting the extraction.
func (d *Detector) Extract(rawURL string, doc pagequery.Document) models.ProductRecord {
	shop, item, _ := identity.SplitPath(rawURL)

	return models.ProductRecord{
		Identity:     identity.Derive(rawURL),
		URL:          rawURL,
		Title:        d.extractTitle(doc),
		Price:        d.extractPrice(doc),
		ShopID:       shop,
		ItemCode:     item,
		Availability: d.extractAvailability(doc),
		SellerName:   d.extractSeller(doc, shop),
	}
}

func (d *Detector) extractTitle(doc pagequery.Document) string {
	for _, selector := range d.selectors.Title {
		element, ok := doc.Query(selector)
		if !ok {
			continue
		}

		if isMetaSelector(selector) {
			if content, ok := element.Attr("content"); ok && content != "" {
				return strings.TrimSpace(content)
			}
			continue
		}

		if text := element.Text(); text != "" {
			return text
		}
	}

	return ""
}

func (d *Detector) extractPrice(doc pagequery.Document) int64 {
	for _, entry := range d.selectors.Price {
		element, ok := doc.Query(entry.Selector)
		if !ok {
			continue
		}

		if entry.Child != "" {
			if child, ok := element.Find(entry.Child); ok {
				if price, ok := parsePrice(child.Text()); ok {
					return price
				}
			}
		}

		text := element.Text()
		if isMetaSelector(entry.Selector) {
			text, _ = element.Attr("content")
		}

		if price, ok := parsePrice(text); ok {
			return price
		}
	}

	return 0
}

func (d *Detector) extractSeller(doc pagequery.Document, shopID string) string {
	for _, selector := range d.selectors.Seller {
		element, ok := doc.Query(selector)
		if !ok {
			continue
		}

		if text := element.Text(); text != "" {
			return text
		}
	}

	return shopID
}

// parsePrice extracts the first digit run from text, drops thousands
// separators and parses the remainder.
func parsePrice(text string) (int64, bool) {
	run := digitRun.FindString(text)
	if run == "" {
		return 0, false
	}

	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, run)

	price, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || price < 0 {
		return 0, false
	}

	return price, true
}

package detector

import (
	"strings"

	"pricetracker/internal/pagequery"
	"pricetracker/internal/platform/models"
)

// extractAvailability walks a priority chain instead of a flat selector
// scan: an enabled purchase control is a stronger and more universal signal
// than any text label, which varies across page template versions.
func (d *Detector) extractAvailability(doc pagequery.Document) models.Availability {
	// 1. enabled add-to-cart AND enabled checkout control.
	if d.hasEnabledControl(doc, d.selectors.AddToCart) && d.hasEnabledControl(doc, d.selectors.Checkout) {
		return models.Available
	}

	// 2. delivery estimate with qualifying text.
	if d.hasDeliveryEstimate(doc) {
		return models.Available
	}

	// 3. enabled quantity input.
	if d.hasEnabledControl(doc, d.selectors.Quantity) {
		return models.Available
	}

	// 4. curated phrase lists over status-bearing elements; negative phrases
	// are checked before positive ones at each element.
	if state, ok := d.matchStatusPhrases(doc); ok {
		return state
	}

	// 5. explicitly disabled purchase control.
	if d.hasDisabledControl(doc, d.selectors.AddToCart) || d.hasDisabledControl(doc, d.selectors.Checkout) {
		return models.OutOfStock
	}

	return models.Unknown
}

func (d *Detector) hasEnabledControl(doc pagequery.Document, selectors []string) bool {
	for _, selector := range selectors {
		if element, ok := doc.Query(selector); ok && !element.Disabled() {
			return true
		}
	}

	return false
}

func (d *Detector) hasDisabledControl(doc pagequery.Document, selectors []string) bool {
	for _, selector := range selectors {
		if element, ok := doc.Query(selector); ok && element.Disabled() {
			return true
		}
	}

	return false
}

func (d *Detector) hasDeliveryEstimate(doc pagequery.Document) bool {
	for _, selector := range d.selectors.Delivery {
		element, ok := doc.Query(selector)
		if !ok {
			continue
		}

		text := element.Text()
		for _, phrase := range d.selectors.DeliveryPhrases {
			if containsFold(text, phrase) {
				return true
			}
		}
	}

	return false
}

func (d *Detector) matchStatusPhrases(doc pagequery.Document) (models.Availability, bool) {
	for _, selector := range d.selectors.Status {
		for _, element := range doc.QueryAll(selector) {
			text := element.Text()
			if text == "" {
				continue
			}

			if matchesAny(text, d.selectors.Phrases.OutOfStock) {
				return models.OutOfStock, true
			}
			if matchesAny(text, d.selectors.Phrases.Backorder) {
				return models.Backorder, true
			}
			if matchesAny(text, d.selectors.Phrases.Available) {
				return models.Available, true
			}
		}
	}

	return models.Unknown, false
}

func matchesAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if containsFold(text, phrase) {
			return true
		}
	}

	return false
}

func containsFold(text, phrase string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(phrase))
}

package detector

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PriceSelector is one entry of the ordered price selector list. When Child
// is set, the matched element is first searched for a more specific numeric
// child before falling back to its own text; some page layouts wrap the true
// price in a secondary element.
type PriceSelector struct {
	Selector string `yaml:"selector"`
	Child    string `yaml:"child,omitempty"`
}

// Phrases are the curated availability phrase lists scanned over
// status-bearing elements.
type Phrases struct {
	Available  []string `yaml:"available"`
	OutOfStock []string `yaml:"outOfStock"`
	Backorder  []string `yaml:"backorder"`
}

// Selectors holds every ordered selector list the classifier and extractor
// walk. Selector order matters: the first match wins.
type Selectors struct {
	Classifier []string        `yaml:"classifier"`
	Title      []string        `yaml:"title"`
	Price      []PriceSelector `yaml:"price"`
	Status     []string        `yaml:"status"`
	Seller     []string        `yaml:"seller"`
	AddToCart  []string        `yaml:"addToCart"`
	Checkout   []string        `yaml:"checkout"`
	Quantity   []string        `yaml:"quantity"`
	Delivery   []string        `yaml:"delivery"`
	DeliveryPhrases []string   `yaml:"deliveryPhrases"`
	Phrases    Phrases         `yaml:"phrases"`
}

// DefaultSelectors returns the selector sets tuned for the supported
// marketplace page templates.
func DefaultSelectors() Selectors {
	return Selectors{
		Classifier: []string{
			"h1.item-name",
			".item-name",
			".normal-reserve-item-name",
			"meta[property=\"og:title\"]",
			"span.item_name",
		},
		Title: []string{
			"h1.item-name",
			".item-name",
			".normal-reserve-item-name",
			"meta[property=\"og:title\"]",
			"span.item_name",
			"h1",
		},
		Price: []PriceSelector{
			{Selector: ".price-value"},
			{Selector: ".item-price", Child: ".amount"},
			{Selector: "#priceCalculationConfig", Child: ".price2"},
			{Selector: ".price2"},
			{Selector: "span.important"},
			{Selector: "meta[itemprop=\"price\"]"},
		},
		Status: []string{
			".inventory-status",
			".item-stock",
			".sold-out",
			".stock-message",
			"#purchaseButton",
		},
		Seller: []string{
			".shop-name",
			".seller-name",
			"a.shop-link",
			".breadcrumb a",
		},
		AddToCart: []string{
			"button.add-to-cart",
			"#cartButton",
			"input[name=\"addToCart\"]",
		},
		Checkout: []string{
			"button.checkout",
			"#purchaseButton",
			"input[name=\"purchase\"]",
		},
		Quantity: []string{
			"input[name=\"units\"]",
			"input.quantity",
			"select.quantity",
		},
		Delivery: []string{
			".delivery-date",
			".arrival-estimate",
			".asuraku",
		},
		DeliveryPhrases: []string{
			"お届け",
			"翌日",
			"最短",
			"delivery by",
			"arrives",
		},
		Phrases: Phrases{
			Available: []string{
				"在庫あり",
				"在庫有り",
				"残りわずか",
				"in stock",
				"available",
			},
			OutOfStock: []string{
				"売り切れ",
				"在庫切れ",
				"完売",
				"販売終了",
				"sold out",
				"out of stock",
			},
			Backorder: []string{
				"予約受付",
				"お取り寄せ",
				"入荷待ち",
				"backorder",
				"pre-order",
			},
		},
	}
}

// LoadSelectors reads selector overrides from a YAML file and merges them
// over the defaults. Empty lists in the file keep the default list.
func LoadSelectors(path string) (Selectors, error) {
	selectors := DefaultSelectors()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Selectors{}, fmt.Errorf("can't read selectors file: %w", err)
	}

	var overrides Selectors
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return Selectors{}, fmt.Errorf("can't parse selectors file: %w", err)
	}

	merge := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}

	merge(&selectors.Classifier, overrides.Classifier)
	merge(&selectors.Title, overrides.Title)
	if len(overrides.Price) > 0 {
		selectors.Price = overrides.Price
	}
	merge(&selectors.Status, overrides.Status)
	merge(&selectors.Seller, overrides.Seller)
	merge(&selectors.AddToCart, overrides.AddToCart)
	merge(&selectors.Checkout, overrides.Checkout)
	merge(&selectors.Quantity, overrides.Quantity)
	merge(&selectors.Delivery, overrides.Delivery)
	merge(&selectors.DeliveryPhrases, overrides.DeliveryPhrases)
	merge(&selectors.Phrases.Available, overrides.Phrases.Available)
	merge(&selectors.Phrases.OutOfStock, overrides.Phrases.OutOfStock)
	merge(&selectors.Phrases.Backorder, overrides.Phrases.Backorder)

	return selectors, nil
}

// isMetaSelector reports whether selector targets a metadata-style element
// whose value lives in its content attribute.
func isMetaSelector(selector string) bool {
	return strings.HasPrefix(selector, "meta")
}

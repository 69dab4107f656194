package models

// Availability describes whether a product can currently be purchased.
type Availability string

// Closed set of availability states.
const (
	Available  Availability = "available"
	OutOfStock Availability = "out_of_stock"
	Backorder  Availability = "backorder"
	Unknown    Availability = "unknown"
)

// AlertDirection selects which price movements an alert reacts to.
type AlertDirection string

// Closed set of alert directions.
const (
	DirectionBoth     AlertDirection = "both"
	DirectionIncrease AlertDirection = "increase"
	DirectionDecrease AlertDirection = "decrease"
)

// AlertConfig is persisted alert state. It is stored with every product but
// not evaluated by this service.
type AlertConfig struct {
	Enabled   bool           `json:"enabled"`
	Threshold float64        `json:"threshold"`
	Direction AlertDirection `json:"direction"`
}

// DefaultAlertConfig returns the alert configuration assigned on product creation.
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		Enabled:   false,
		Threshold: 0.10,
		Direction: DirectionBoth,
	}
}

// PricePoint is one observed price at one moment.
type PricePoint struct {
	// Price is the observed price in the smallest currency unit, never negative.
	Price int64 `json:"price"`
	// Timestamp is the observation time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// ProductRecord is the persisted product model.
type ProductRecord struct {
	Identity     string       `json:"identity"`
	URL          string       `json:"url"`
	Title        string       `json:"title"`
	Price        int64        `json:"price"`
	ShopID       string       `json:"shopId"`
	ItemCode     string       `json:"itemCode"`
	Availability Availability `json:"availability"`
	SellerName   string       `json:"sellerName,omitempty"`
	// CreatedAt is set once on creation and never changed afterwards.
	CreatedAt int64 `json:"createdAt"`
	// UpdatedAt is refreshed on every mutation.
	UpdatedAt   int64       `json:"updatedAt"`
	Alert       AlertConfig `json:"alert"`
	LatestPoint *PricePoint `json:"latestPoint,omitempty"`
}

// ProductUpdate carries the fields merged over an existing record by an
// update. Nil fields are left untouched.
type ProductUpdate struct {
	Title        *string       `json:"title,omitempty"`
	Price        *int64        `json:"price,omitempty"`
	Availability *Availability `json:"availability,omitempty"`
	SellerName   *string       `json:"sellerName,omitempty"`
	Alert        *AlertConfig  `json:"alert,omitempty"`
}

// ExportEnvelope is the self-describing snapshot produced by export and
// accepted by import.
type ExportEnvelope struct {
	Version      string                   `json:"version"`
	ExportDate   int64                    `json:"exportDate"`
	Products     map[string]ProductRecord `json:"products"`
	PriceHistory map[string][]PricePoint  `json:"priceHistory"`
}

// ExportVersion is the current export envelope format version.
const ExportVersion = "1.0"

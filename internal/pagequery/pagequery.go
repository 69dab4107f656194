// Package pagequery abstracts the observed product page behind a narrow
// query capability, so classification and extraction are testable without a
// rendering engine.
package pagequery

import "context"

// Element is one matched node of a document.
type Element interface {
	// Text returns the element's trimmed text content.
	Text() string
	// Attr returns the named attribute value and whether it is present.
	Attr(name string) (string, bool)
	// Find returns the first descendant matching selector.
	Find(selector string) (Element, bool)
	// Disabled reports whether the element carries a disabled attribute.
	Disabled() bool
}

// Document answers CSS selector queries over one page snapshot.
type Document interface {
	// Query returns the first element matching selector.
	Query(selector string) (Element, bool)
	// QueryAll returns all elements matching selector in document order.
	QueryAll(selector string) []Element
}

// Page is a product page whose structure may still be rendering. Snapshots
// are immutable; Mutations signals that a new snapshot may differ.
type Page interface {
	// URL returns the page's current address.
	URL() string
	// Snapshot returns the page's current document.
	Snapshot(ctx context.Context) (Document, error)
	// Mutations returns a stream of structural change notifications. The
	// stream is closed when ctx ends; subscribing must not leak after that.
	Mutations(ctx context.Context) (<-chan struct{}, error)
}

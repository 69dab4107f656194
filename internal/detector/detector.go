// Package detector decides whether an observed page is a trackable product
// page and extracts a product record draft from it. Classification tolerates
// asynchronously rendered documents through a three-tier escalating retry:
// one immediate attempt, bounded polling, then a change-driven wait.
package detector

import (
	"context"
	"time"

	"pricetracker/internal/identity"
	"pricetracker/internal/pagequery"
)

const (
	defaultPollAttempts    = 10
	defaultPollDelay       = 500 * time.Millisecond
	defaultMutationTimeout = 5 * time.Second
)

// Option is custom configuration of Detector.
type Option func(d *Detector)

// Detector classifies pages and extracts product records.
type Detector struct {
	selectors       Selectors
	pollAttempts    int
	pollDelay       time.Duration
	mutationTimeout time.Duration
}

// New returns a Detector with default selectors and tier budgets.
func New(ops ...Option) *Detector {
	det := &Detector{
		selectors:       DefaultSelectors(),
		pollAttempts:    defaultPollAttempts,
		pollDelay:       defaultPollDelay,
		mutationTimeout: defaultMutationTimeout,
	}

	for _, op := range ops {
		op(det)
	}

	return det
}

// WithSelectors sets custom selector lists.
func WithSelectors(s Selectors) Option {
	return func(d *Detector) {
		d.selectors = s
	}
}

// WithPolling sets the bounded polling tier's attempt count and delay.
func WithPolling(attempts int, delay time.Duration) Option {
	return func(d *Detector) {
		d.pollAttempts = attempts
		d.pollDelay = delay
	}
}

// WithMutationTimeout sets the change-driven tier's overall timeout.
func WithMutationTimeout(timeout time.Duration) Option {
	return func(d *Detector) {
		d.mutationTimeout = timeout
	}
}

// IsProductPage reports whether doc at rawURL is a trackable product page.
// Both signals must hold: the canonical path shape and at least one
// classifier selector yielding non-empty text or content attribute. The
// predicate is synchronous and side-effect free.
func (d *Detector) IsProductPage(rawURL string, doc pagequery.Document) bool {
	if !identity.HasProductShape(rawURL) {
		return false
	}

	for _, selector := range d.selectors.Classifier {
		element, ok := doc.Query(selector)
		if !ok {
			continue
		}

		if isMetaSelector(selector) {
			if content, ok := element.Attr("content"); ok && content != "" {
				return true
			}
			continue
		}

		if element.Text() != "" {
			return true
		}
	}

	return false
}

// Detect runs the three-tier classification escalation against page,
// stopping at the first tier that succeeds. A false result with nil error
// means "not a trackable page"; an exhausted escalation is not an error.
// Cancelling ctx aborts whichever tier is in flight and releases its timers
// and subscriptions.
func (d *Detector) Detect(ctx context.Context, page pagequery.Page) (bool, error) {
	// tier 1: immediate attempt.
	if ok := d.classify(ctx, page); ok {
		return true, nil
	}

	// tier 2: bounded polling.
	ok, err := d.pollTier(ctx, page)
	if ok || err != nil {
		return ok, err
	}

	// tier 3: change-driven wait.
	return d.mutationTier(ctx, page)
}

func (d *Detector) pollTier(ctx context.Context, page pagequery.Page) (bool, error) {
	timer := time.NewTimer(d.pollDelay)
	defer timer.Stop()

	for attempt := 0; attempt < d.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}

		if d.classify(ctx, page) {
			return true, nil
		}

		timer.Reset(d.pollDelay)
	}

	return false, nil
}

func (d *Detector) mutationTier(ctx context.Context, page pagequery.Page) (bool, error) {
	waitCtx, cancel := context.WithTimeout(ctx, d.mutationTimeout)
	defer cancel()

	notifications, err := page.Mutations(waitCtx)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}

	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			// overall timeout: not a trackable page.
			return false, nil
		case _, open := <-notifications:
			if !open {
				if ctx.Err() != nil {
					return false, ctx.Err()
				}
				return false, nil
			}
			if d.classify(waitCtx, page) {
				return true, nil
			}
		}
	}
}

// classify takes a fresh snapshot and runs the predicate. Snapshot failures
// count as a negative attempt; later tiers may still succeed.
func (d *Detector) classify(ctx context.Context, page pagequery.Page) bool {
	doc, err := page.Snapshot(ctx)
	if err != nil {
		return false
	}

	return d.IsProductPage(page.URL(), doc)
}

// Package pagequerytesting provides a scriptable Page for detector tests.
package pagequerytesting

import (
	"context"
	"sync"

	"pricetracker/internal/pagequery"
)

// FakePage is a Page whose document can be swapped mid-test, firing a
// mutation notification on every swap.
type FakePage struct {
	mu          sync.Mutex
	url         string
	doc         pagequery.Document
	snapshotErr error
	snapshots   int
	subscribers []chan struct{}
}

// NewFakePage returns a FakePage serving doc at url.
func NewFakePage(url string, doc pagequery.Document) *FakePage {
	return &FakePage{url: url, doc: doc}
}

// URL returns the fake address.
func (p *FakePage) URL() string {
	return p.url
}

// Snapshot returns the current document.
func (p *FakePage) Snapshot(_ context.Context) (pagequery.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snapshots++
	if p.snapshotErr != nil {
		return nil, p.snapshotErr
	}

	return p.doc, nil
}

// Mutations returns a notification stream, closed when ctx ends.
func (p *FakePage) Mutations(ctx context.Context) (<-chan struct{}, error) {
	notifications := make(chan struct{}, 16)

	p.mu.Lock()
	p.subscribers = append(p.subscribers, notifications)
	p.mu.Unlock()

	go func() {
		<-ctx.Done()

		p.mu.Lock()
		defer p.mu.Unlock()
		for ix, sub := range p.subscribers {
			if sub == notifications {
				p.subscribers = append(p.subscribers[:ix], p.subscribers[ix+1:]...)
				break
			}
		}
		close(notifications)
	}()

	return notifications, nil
}

// SetDocument swaps the served document and notifies subscribers.
func (p *FakePage) SetDocument(doc pagequery.Document) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.doc = doc
	for _, sub := range p.subscribers {
		select {
		case sub <- struct{}{}:
		default:
		}
	}
}

// SetSnapshotError makes Snapshot fail with err.
func (p *FakePage) SetSnapshotError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snapshotErr = err
}

// Snapshots returns how many times Snapshot was called.
func (p *FakePage) Snapshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.snapshots
}

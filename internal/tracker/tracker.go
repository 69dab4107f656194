// Package tracker orchestrates the detector side: it classifies visited
// pages, extracts product records, submits them over the actions client and
// drives the track control's states.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pricetracker/internal/detector"
	"pricetracker/internal/pagequery"
	"pricetracker/internal/platform/models"
	"pricetracker/pkg/v1/actions"
)

const defaultVisitInterval = 24 * time.Hour

// Actions is the slice of the protocol client a session needs.
type Actions interface {
	TrackProduct(ctx context.Context, record models.ProductRecord) (actions.TrackProductResult, error)
	CheckAndStorePrice(ctx context.Context, identity string, price int64) (actions.CheckAndStorePriceResult, error)
}

// SessionOption is custom configuration of Session.
type SessionOption func(s *Session)

// WithAutoTrack enables or disables automatic submission of complete
// records. Disabled, the session only injects the control and leaves
// submission to manual activation.
func WithAutoTrack(enabled bool) SessionOption {
	return func(s *Session) {
		s.autoTrack = enabled
	}
}

// Session ties one page visit pipeline together: detect, extract, submit,
// render. A session owns one track control and can be run against the same
// page repeatedly.
type Session struct {
	detector  *detector.Detector
	client    Actions
	button    *detector.TrackButton
	logger    zerolog.Logger
	autoTrack bool
}

// NewSession returns a Session submitting through client and drawing
// through renderer. Automatic submission is on by default.
func NewSession(
	det *detector.Detector,
	client Actions,
	renderer detector.Renderer,
	logger zerolog.Logger,
	ops ...SessionOption,
) *Session {
	session := &Session{
		detector:  det,
		client:    client,
		logger:    logger,
		autoTrack: true,
	}
	session.button = detector.NewTrackButton(renderer, session)

	for _, op := range ops {
		op(session)
	}

	return session
}

// Run visits page once: classification failure is a clean no-op, a positive
// classification extracts a record, injects the control and, when automatic
// submission is on and the record is complete, tracks the product and
// records today's price.
func (s *Session) Run(ctx context.Context, page pagequery.Page) error {
	ok, err := s.detector.Detect(ctx, page)
	if err != nil {
		return fmt.Errorf("can't classify %s: %w", page.URL(), err)
	}
	if !ok {
		s.logger.Debug().Str("url", page.URL()).Msg("not a product page")
		return nil
	}

	doc, err := page.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("can't snapshot %s: %w", page.URL(), err)
	}

	record := s.detector.Extract(page.URL(), doc)
	s.button.Show(record)

	if !s.autoTrack || record.Title == "" || record.Price <= 0 {
		return nil
	}

	if err := s.Submit(ctx, record); err != nil {
		return err
	}
	s.button.MarkAutoTracked()

	s.logger.Info().
		Str("identity", record.Identity).
		Int64("price", record.Price).
		Msg("product tracked")

	return nil
}

// Submit tracks record and records its current price. It also backs the
// control's manual activation path.
func (s *Session) Submit(ctx context.Context, record models.ProductRecord) error {
	result, err := s.client.TrackProduct(ctx, record)
	if err != nil {
		return fmt.Errorf("can't track %s: %w", record.Identity, err)
	}

	if _, err := s.client.CheckAndStorePrice(ctx, result.ID, record.Price); err != nil {
		return fmt.Errorf("can't store price for %s: %w", result.ID, err)
	}

	return nil
}

// Button returns the session's track control.
func (s *Session) Button() *detector.TrackButton {
	return s.button
}

// Close removes the session's track control.
func (s *Session) Close() {
	s.button.Close()
}

// PageFactory builds a page handle for a URL.
type PageFactory func(url string) pagequery.Page

// SessionFactory builds a fresh session for a watched URL.
type SessionFactory func() *Session

// WatcherOption is custom configuration of Watcher.
type WatcherOption func(w *Watcher)

// WithVisitInterval sets the delay between visits of each watched URL.
func WithVisitInterval(interval time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = interval
	}
}

// Watcher periodically revisits a fixed set of URLs, one session per URL.
type Watcher struct {
	urls     []string
	newPage  PageFactory
	sessions SessionFactory
	interval time.Duration
	logger   zerolog.Logger
}

// NewWatcher returns a Watcher over urls.
func NewWatcher(
	urls []string,
	newPage PageFactory,
	sessions SessionFactory,
	logger zerolog.Logger,
	ops ...WatcherOption,
) *Watcher {
	watcher := &Watcher{
		urls:     urls,
		newPage:  newPage,
		sessions: sessions,
		interval: defaultVisitInterval,
		logger:   logger,
	}

	for _, op := range ops {
		op(watcher)
	}

	return watcher
}

// Run watches every configured URL until ctx is cancelled. A failed visit is
// logged and retried on the next interval; only cancellation ends a watch.
func (w *Watcher) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, url := range w.urls {
		url := url
		group.Go(func() error {
			return w.watch(ctx, url)
		})
	}

	return group.Wait()
}

func (w *Watcher) watch(ctx context.Context, url string) error {
	session := w.sessions()
	defer session.Close()

	page := w.newPage(url)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := session.Run(ctx, page); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warn().Err(err).Str("url", url).Msg("can't visit page")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

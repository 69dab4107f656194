package detector

import (
	"context"
	"sync"
	"time"

	"pricetracker/internal/platform/models"
)

// ButtonState is the track control's visual state. There is no transition
// back to idle.
type ButtonState string

// Track control states.
const (
	StateIdle        ButtonState = "idle"
	StateTracking    ButtonState = "tracking"
	StateAutoTracked ButtonState = "auto-tracked"
)

const statusTTL = 3 * time.Second

// Renderer draws the track control and its status line. Implementations
// live outside this core; tests inject fakes.
type Renderer interface {
	// Inject draws the control in the given state; complete=false selects the
	// degraded visual used when required fields are missing.
	Inject(state ButtonState, complete bool)
	// Remove removes a previously injected control, if any.
	Remove()
	// ShowStatus displays a transient status line.
	ShowStatus(message string)
	// ClearStatus hides the status line.
	ClearStatus()
}

// Submitter submits an extracted record for tracking.
type Submitter interface {
	Submit(ctx context.Context, record models.ProductRecord) error
}

// TrackButton is the single floating affordance injected after a successful
// extraction.
type TrackButton struct {
	renderer  Renderer
	submitter Submitter

	mu          sync.Mutex
	state       ButtonState
	record      models.ProductRecord
	statusTimer *time.Timer
}

// NewTrackButton returns an idle TrackButton drawing through renderer and
// submitting through submitter.
func NewTrackButton(renderer Renderer, submitter Submitter) *TrackButton {
	return &TrackButton{
		renderer:  renderer,
		submitter: submitter,
		state:     StateIdle,
	}
}

// Show removes any previously injected control and injects a fresh one for
// record. Re-invocation is idempotent.
func (b *TrackButton) Show(record models.ProductRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.record = record
	b.renderer.Remove()
	b.renderer.Inject(b.state, recordComplete(record))
}

// Click handles a manual activation. Incomplete records short-circuit into
// an error status instead of submitting.
func (b *TrackButton) Click(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateIdle {
		return
	}

	if !recordComplete(b.record) {
		b.showStatusLocked("商品情報を取得できませんでした")
		return
	}

	if err := b.submitter.Submit(ctx, b.record); err != nil {
		b.showStatusLocked("追跡を開始できませんでした")
		return
	}

	b.state = StateTracking
	b.renderer.Inject(b.state, true)
	b.showStatusLocked("価格の追跡を開始しました")
}

// MarkAutoTracked moves the control to the automatic submission state.
func (b *TrackButton) MarkAutoTracked() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateIdle {
		return
	}

	b.state = StateAutoTracked
	b.renderer.Inject(b.state, true)
}

// State returns the control's current state.
func (b *TrackButton) State() ButtonState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// Close stops the status timer and removes the control.
func (b *TrackButton) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.statusTimer != nil {
		b.statusTimer.Stop()
		b.statusTimer = nil
	}
	b.renderer.Remove()
}

// showStatusLocked displays a status line and arms its auto-dismiss.
// Callers hold b.mu.
func (b *TrackButton) showStatusLocked(message string) {
	if b.statusTimer != nil {
		b.statusTimer.Stop()
	}

	b.renderer.ShowStatus(message)
	b.statusTimer = time.AfterFunc(statusTTL, b.renderer.ClearStatus)
}

// recordComplete reports whether record carries the minimum fields required
// for submission.
func recordComplete(record models.ProductRecord) bool {
	return record.Title != "" && record.Price > 0
}

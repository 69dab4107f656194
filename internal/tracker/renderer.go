package tracker

import (
	"github.com/rs/zerolog"

	"pricetracker/internal/detector"
)

// LogRenderer renders the track control as log lines. It is the headless
// stand-in used by the watcher, where no page surface exists to draw on.
type LogRenderer struct {
	logger zerolog.Logger
}

// NewLogRenderer returns a LogRenderer writing to logger.
func NewLogRenderer(logger zerolog.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

// Inject logs the control's state change.
func (r *LogRenderer) Inject(state detector.ButtonState, complete bool) {
	r.logger.Debug().
		Str("state", string(state)).
		Bool("complete", complete).
		Msg("track control injected")
}

// Remove logs the control's removal.
func (r *LogRenderer) Remove() {
	r.logger.Debug().Msg("track control removed")
}

// ShowStatus logs a transient status line.
func (r *LogRenderer) ShowStatus(message string) {
	r.logger.Info().Str("status", message).Msg("track control status")
}

// ClearStatus is a no-op: log lines can't be dismissed.
func (r *LogRenderer) ClearStatus() {}

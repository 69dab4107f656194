package ledger

import "fmt"

// ValidationError is a recoverable import validation failure. It reports why
// the payload was rejected; existing state is left untouched.
type ValidationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid import payload: %s", e.Reason)
}

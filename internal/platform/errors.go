package platform

import (
	"errors"
	"fmt"
)

// ErrProductNotFound is an error returned when an update or delete targets an
// identity that is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

// NotFoundError wraps ErrProductNotFound with the missing identity.
func NotFoundError(identity string) error {
	return fmt.Errorf("%w: %s", ErrProductNotFound, identity)
}

package ledger

import "time"

// Clock provides times.
type Clock interface {
	// Timestamp returns current unix timestamp in milliseconds.
	Timestamp() int64
	// Now returns current time in the local calendar zone used for daily dedup.
	Now() time.Time
}

type systemClock struct{}

// Timestamp returns current unix timestamp in milliseconds.
func (c systemClock) Timestamp() int64 {
	return time.Now().UnixMilli()
}

// Now returns current local time.
func (c systemClock) Now() time.Time {
	return time.Now()
}

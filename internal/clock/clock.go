package clock

import (
	"time"

	"FeedDigest/internal/ports"
)

// Wall reads the wall clock in a fixed timezone. It is the production
// ports.Clock; tests substitute a frozen implementation.
type Wall struct {
	loc *time.Location
}

var _ ports.Clock = (*Wall)(nil)

// NewWall pins the clock to a location; nil falls back to UTC.
func NewWall(loc *time.Location) *Wall {
	if loc == nil {
		loc = time.UTC
	}
	return &Wall{loc: loc}
}

// Now returns the current time in the pinned location.
func (w *Wall) Now() time.Time {
	return time.Now().In(w.loc)
}

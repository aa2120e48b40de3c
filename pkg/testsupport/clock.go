package testsupport

import (
	"time"

	"github.com/goliatone/go-storefront-cache/pkg/clock"
)

// Epoch is the default start time of a Clock.
var Epoch = clock.Epoch

// Clock is the manual clock used by TTL tests.
type Clock = clock.Manual

// NewClock returns a clock stopped at start, or at Epoch when start is zero.
func NewClock(start time.Time) *Clock {
	return clock.NewManual(start)
}

package services

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock supplies the current instant. Production wiring passes
// clockwork.NewRealClock(); tests inject a fake clock and advance it.
type Clock = clockwork.Clock

// wholeDaysBetween returns the count of full 24h periods from one instant to
// a later one. A negative span counts as zero.
func wholeDaysBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}

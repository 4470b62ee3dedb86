// Package staleness decides whether a user's silence has crossed the
// escalation threshold. It is pure: no clock reads, no I/O, so it can be
// tested against fixed instants.
package staleness

import (
	"time"

	"github.com/diedornot/lifecheck/pkg/store"
)

// DefaultThresholdDays is the number of days of silence after which an
// escalation becomes due.
const DefaultThresholdDays = 2.0

// Result is the outcome of a single evaluation.
type Result struct {
	// Due is true when the user's silence has reached the threshold.
	Due bool
	// DaysSince is the elapsed time since the last check-in expressed in
	// fractional days. Zero when the user has never checked in.
	DaysSince float64
}

// Evaluator anchors calendar dates to instants in a fixed location. The zero
// value uses UTC.
type Evaluator struct {
	Location *time.Location
}

// Evaluate compares the last check-in date against now. A zero lastCheckIn
// means the user has never checked in; such users are never due (a user who
// never started has no baseline to go stale from). The threshold boundary is
// inclusive: exactly thresholdDays of silence is due.
func (e Evaluator) Evaluate(lastCheckIn store.Date, now time.Time, thresholdDays float64) Result {
	if lastCheckIn.IsZero() {
		return Result{}
	}
	elapsed := now.Sub(lastCheckIn.Midnight(e.Location))
	daysSince := elapsed.Hours() / 24
	return Result{
		Due:       daysSince >= thresholdDays,
		DaysSince: daysSince,
	}
}

// Package fine computes late-return penalties.
//
// A rental is charged for each whole 24-hour period elapsed past the due
// time, rounded down: being six hours late costs nothing, being 25 hours
// late costs one day. Returns at or before the due time never produce a
// fine. All functions are pure; callers supply both timestamps.
package fine

import "time"

// DefaultDailyRate is the fallback per-day penalty.
const DefaultDailyRate = 10

// LateDays returns the number of whole 24-hour periods between due and
// returned. It is zero when returned is at or before due.
func LateDays(due, returned time.Time) int {
	late := returned.Sub(due)
	if late <= 0 {
		return 0
	}
	return int(late / (24 * time.Hour))
}

// Compute returns the fine owed for a return at the given time.
func Compute(due, returned time.Time, dailyRate float64) float64 {
	return float64(LateDays(due, returned)) * dailyRate
}

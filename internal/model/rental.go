package model

import "time"

// Rental is one ledger entry: the open-to-closed lifecycle of a single
// game rented by a single user. Entries are never deleted; a rental
// closes exactly once, which also freezes its fine.
type Rental struct {
	ID         string     `json:"id"`
	GameID     string     `json:"game_id"`
	UserID     string     `json:"user_id"`
	IssuedAt   time.Time  `json:"issued_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Fine       float64    `json:"fine"`
}

// Derived rental statuses. These are never stored; they are recomputed
// from the clock on every read so a listing cannot go stale.
const (
	RentalStatusActive   = "Active"
	RentalStatusOverdue  = "Overdue"
	RentalStatusReturned = "Returned"
)

// Open reports whether the rental has not been returned yet.
func (r *Rental) Open() bool { return r.ReturnedAt == nil }

// StatusAt derives the rental's status as of the given time. A closed
// rental is Returned regardless of its due date.
func (r *Rental) StatusAt(now time.Time) string {
	if r.ReturnedAt != nil {
		return RentalStatusReturned
	}
	if now.After(r.DueAt) {
		return RentalStatusOverdue
	}
	return RentalStatusActive
}

// Package rental implements the rental workflows on top of the store
// layer: renting a game, returning it, and listing a user's library. All
// cross-record updates inside one operation run in a single transaction,
// so a caller never observes a half-applied rent or return.
package rental

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mlakar/gameshelf/internal/fine"
	"github.com/mlakar/gameshelf/internal/model"
	"github.com/mlakar/gameshelf/internal/store"
)

// Expected outcomes surfaced to callers. These are user-facing results,
// not internal failures; transports translate them to messages.
var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameUnavailable = errors.New("game is not available")
	ErrRentalNotFound  = errors.New("rental not found")
	ErrInvalidPeriod   = errors.New("rental period out of range")
)

// DefaultRentalDays is the rental period used when the caller does not
// pick one. MaxRentalDays caps caller-supplied periods; nobody rents a
// game for more than a year, and an unbounded value would let the due
// date run away from the issue date.
const (
	DefaultRentalDays = 7
	MaxRentalDays     = 365
)

// Config adjusts service behavior. Zero values fall back to defaults, so
// Config{} is valid.
type Config struct {
	// FinePerDay is the penalty charged per whole day a return is late.
	FinePerDay float64
	// RentalDays is the default rental period in days.
	RentalDays int
	// Now supplies the clock; tests replace it with a fixed one.
	Now func() time.Time
}

// Service orchestrates the game inventory, the rental ledger, the id
// allocator and the fine policy.
type Service struct {
	db         *sql.DB
	finePerDay float64
	days       int
	now        func() time.Time
}

// New creates a rental service on top of the given database.
func New(db *sql.DB, cfg Config) *Service {
	if cfg.FinePerDay == 0 {
		cfg.FinePerDay = fine.DefaultDailyRate
	}
	if cfg.RentalDays <= 0 {
		cfg.RentalDays = DefaultRentalDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{db: db, finePerDay: cfg.FinePerDay, days: cfg.RentalDays, now: cfg.Now}
}

// Rent opens a rental for userID on gameID, due days from now. It returns
// ErrGameNotFound for an unknown game and ErrGameUnavailable when the
// game is already rented. Of concurrent renters for the same game exactly
// one wins. Periods above MaxRentalDays are rejected with
// ErrInvalidPeriod before anything is touched.
func (s *Service) Rent(ctx context.Context, userID, gameID string, days int) (*model.Rental, error) {
	if days <= 0 {
		days = s.days
	}
	if days > MaxRentalDays {
		return nil, ErrInvalidPeriod
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning rent transaction: %w", err)
	}
	defer tx.Rollback()

	// The conditional flip is the whole critical section: it is the first
	// statement of the transaction, so the write lock is taken before any
	// read, and only one of two concurrent renters can turn Available
	// into Rented.
	flipped, err := store.MarkGameRented(ctx, tx, gameID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		game, err := store.GetGame(ctx, tx, gameID)
		if err != nil {
			return nil, err
		}
		if game == nil {
			return nil, ErrGameNotFound
		}
		return nil, ErrGameUnavailable
	}

	id, err := store.NextID(ctx, tx, store.ClassRental)
	if err != nil {
		return nil, err
	}

	// AddDate never overflows the way a Duration multiply would, so the
	// due date always lands after the issue date.
	issued := s.now().UTC()
	due := issued.AddDate(0, 0, days)
	if err := store.InsertRental(ctx, tx, id, gameID, userID, issued, due); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing rent transaction: %w", err)
	}

	return store.GetRental(ctx, s.db, id)
}

// ReturnResult reports the outcome of a return.
type ReturnResult struct {
	// Fine is the penalty charged at close time. On a repeated return it
	// is the fine computed by the first one.
	Fine float64
	// Already is true when the rental had been returned before this call;
	// nothing was mutated then.
	Already bool
}

// Return closes a rental, computing the fine from the current clock, and
// frees the game. Returning an already-closed rental is not an error: the
// original fine is reported with Already set.
func (s *Service) Return(ctx context.Context, rentalID string) (*ReturnResult, error) {
	rental, err := store.GetRental(ctx, s.db, rentalID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, ErrRentalNotFound
	}
	if !rental.Open() {
		return &ReturnResult{Fine: rental.Fine, Already: true}, nil
	}

	returned := s.now().UTC()
	amount := fine.Compute(rental.DueAt, returned, s.finePerDay)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning return transaction: %w", err)
	}
	defer tx.Rollback()

	// Guarded update: if another return won the race since the read
	// above, close reports false and state is left alone.
	closed, err := store.CloseRental(ctx, tx, rentalID, returned, amount)
	if err != nil {
		return nil, err
	}
	if !closed {
		current, err := store.GetRental(ctx, tx, rentalID)
		if err != nil {
			return nil, err
		}
		return &ReturnResult{Fine: current.Fine, Already: true}, nil
	}

	if err := store.SetGameStatus(ctx, tx, rental.GameID, model.GameStatusAvailable); err != nil {
		// The catalog entry may be gone; the ledger entry still closes.
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing return transaction: %w", err)
	}

	return &ReturnResult{Fine: amount}, nil
}

// LibraryEntry is a rental joined with its game and the status derived at
// read time. Game is nil when the catalog entry has gone missing.
type LibraryEntry struct {
	Rental model.Rental `json:"rental"`
	Game   *model.Game  `json:"game,omitempty"`
	Status string       `json:"status"`
}

// Library returns all of a user's rentals, newest first, with their
// derived status as of now.
func (s *Service) Library(ctx context.Context, userID string) ([]LibraryEntry, error) {
	rows, err := store.ListUserRentals(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	entries := make([]LibraryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, LibraryEntry{
			Rental: row.Rental,
			Game:   row.Game,
			Status: row.Rental.StatusAt(now),
		})
	}
	return entries, nil
}

// Inventory returns the full game catalog.
func (s *Service) Inventory(ctx context.Context) ([]model.Game, error) {
	return store.ListGames(ctx, s.db, "")
}

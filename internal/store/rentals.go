package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mlakar/gameshelf/internal/model"
)

// LibraryRow pairs a rental with its game. Game is nil when the catalog
// entry has gone missing; the ledger keeps the history either way.
type LibraryRow struct {
	Rental model.Rental `json:"rental"`
	Game   *model.Game  `json:"game,omitempty"`
}

// InsertRental records a new open rental. The partial unique index on
// open rentals makes a second open rental for the same game fail even if
// the caller's availability check was somehow raced.
func InsertRental(ctx context.Context, q DBTX, id, gameID, userID string, issuedAt, dueAt time.Time) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO rentals (id, game_id, user_id, issued_at, due_at) VALUES (?, ?, ?, ?, ?)`,
		id, gameID, userID, issuedAt, dueAt,
	)
	if err != nil {
		return fmt.Errorf("inserting rental: %w", err)
	}
	return nil
}

// GetRental returns a rental by ID.
func GetRental(ctx context.Context, q DBTX, id string) (*model.Rental, error) {
	rental := &model.Rental{}
	var returnedAt sql.NullTime
	err := q.QueryRowContext(ctx,
		`SELECT id, game_id, user_id, issued_at, due_at, returned_at, fine
		 FROM rentals WHERE id = ?`, id,
	).Scan(&rental.ID, &rental.GameID, &rental.UserID, &rental.IssuedAt, &rental.DueAt, &returnedAt, &rental.Fine)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting rental: %w", err)
	}
	if returnedAt.Valid {
		rental.ReturnedAt = &returnedAt.Time
	}
	return rental, nil
}

// FindOpenRentalByGame returns the open rental for a game, if any. At
// most one can exist.
func FindOpenRentalByGame(ctx context.Context, q DBTX, gameID string) (*model.Rental, error) {
	rental := &model.Rental{}
	var returnedAt sql.NullTime
	err := q.QueryRowContext(ctx,
		`SELECT id, game_id, user_id, issued_at, due_at, returned_at, fine
		 FROM rentals WHERE game_id = ? AND returned_at IS NULL`, gameID,
	).Scan(&rental.ID, &rental.GameID, &rental.UserID, &rental.IssuedAt, &rental.DueAt, &returnedAt, &rental.Fine)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding open rental: %w", err)
	}
	if returnedAt.Valid {
		rental.ReturnedAt = &returnedAt.Time
	}
	return rental, nil
}

// CloseRental stamps the return time and fine on an open rental. It
// reports false when the rental was already closed; the stored fine is
// then left untouched, so a close happens exactly once.
func CloseRental(ctx context.Context, q DBTX, id string, returnedAt time.Time, fine float64) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE rentals SET returned_at = ?, fine = ? WHERE id = ? AND returned_at IS NULL`,
		returnedAt, fine, id,
	)
	if err != nil {
		return false, fmt.Errorf("closing rental: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("closing rental: %w", err)
	}
	return n > 0, nil
}

// ListUserRentals returns all of a user's rentals, newest first, each
// joined with its game when the game still exists.
func ListUserRentals(ctx context.Context, q DBTX, userID string) ([]LibraryRow, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT r.id, r.game_id, r.user_id, r.issued_at, r.due_at, r.returned_at, r.fine,
		        g.id, g.name, g.genre, g.platform, g.price, g.rent_price, g.status, g.created_at
		 FROM rentals r
		 LEFT JOIN games g ON g.id = r.game_id
		 WHERE r.user_id = ?
		 ORDER BY r.issued_at DESC, length(r.id) DESC, r.id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing rentals: %w", err)
	}
	defer rows.Close()

	var out []LibraryRow
	for rows.Next() {
		var row LibraryRow
		var returnedAt sql.NullTime
		var gameID, gameName, genre, platform, status sql.NullString
		var price, rentPrice sql.NullFloat64
		var gameCreated sql.NullTime

		err := rows.Scan(
			&row.Rental.ID, &row.Rental.GameID, &row.Rental.UserID,
			&row.Rental.IssuedAt, &row.Rental.DueAt, &returnedAt, &row.Rental.Fine,
			&gameID, &gameName, &genre, &platform, &price, &rentPrice, &status, &gameCreated,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning rental: %w", err)
		}
		if returnedAt.Valid {
			row.Rental.ReturnedAt = &returnedAt.Time
		}
		if gameID.Valid {
			row.Game = &model.Game{
				ID:        gameID.String,
				Name:      gameName.String,
				Genre:     genre.String,
				Platform:  platform.String,
				Price:     price.Float64,
				RentPrice: rentPrice.Float64,
				Status:    status.String,
				CreatedAt: gameCreated.Time,
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mlakar/gameshelf/internal/model"
)

// CreateGame inserts a catalog entry with an allocator-issued id. Only
// seeding uses this; there is no catalog management API.
func CreateGame(ctx context.Context, db *sql.DB, name, genre, platform string, price, rentPrice float64) (*model.Game, error) {
	id, err := NextID(ctx, db, ClassGame)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO games (id, name, genre, platform, price, rent_price) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, genre, platform, price, rentPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}

	return GetGame(ctx, db, id)
}

// GetGame returns a game by ID.
func GetGame(ctx context.Context, q DBTX, id string) (*model.Game, error) {
	game := &model.Game{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, genre, platform, price, rent_price, status, created_at
		 FROM games WHERE id = ?`, id,
	).Scan(&game.ID, &game.Name, &game.Genre, &game.Platform, &game.Price, &game.RentPrice, &game.Status, &game.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return game, nil
}

// ListGames returns the full catalog, optionally filtered by status.
func ListGames(ctx context.Context, q DBTX, status string) ([]model.Game, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		rows, err = q.QueryContext(ctx,
			`SELECT id, name, genre, platform, price, rent_price, status, created_at
			 FROM games WHERE status = ? ORDER BY length(id), id`, status,
		)
	} else {
		rows, err = q.QueryContext(ctx,
			`SELECT id, name, genre, platform, price, rent_price, status, created_at
			 FROM games ORDER BY length(id), id`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		var game model.Game
		if err := rows.Scan(&game.ID, &game.Name, &game.Genre, &game.Platform, &game.Price, &game.RentPrice, &game.Status, &game.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// MarkGameRented flips an Available game to Rented. It reports false when
// the game was not Available or does not exist; the availability check
// and the flip are a single atomic statement, so of two concurrent
// renters only one can succeed.
func MarkGameRented(ctx context.Context, q DBTX, id string) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE games SET status = ? WHERE id = ? AND status = ?`,
		model.GameStatusRented, id, model.GameStatusAvailable,
	)
	if err != nil {
		return false, fmt.Errorf("marking game rented: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking game rented: %w", err)
	}
	return n > 0, nil
}

// SetGameStatus sets a game's status unconditionally.
func SetGameStatus(ctx context.Context, q DBTX, id, status string) error {
	res, err := q.ExecContext(ctx,
		`UPDATE games SET status = ? WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting game status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("setting game status: game %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

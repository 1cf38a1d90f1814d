package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mlakar/gameshelf/internal/db"
)

func TestInsertAndGetRental(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateGame(ctx, database, "Cyber Adventure", "Action", "PC", 3999, 150)

	issued := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	due := issued.AddDate(0, 0, 7)
	if err := InsertRental(ctx, database, "R1", "G1", "U1", issued, due); err != nil {
		t.Fatalf("InsertRental: %v", err)
	}

	rental, err := GetRental(ctx, database, "R1")
	if err != nil {
		t.Fatalf("GetRental: %v", err)
	}
	if rental == nil {
		t.Fatal("expected rental")
	}
	if !rental.Open() {
		t.Error("expected new rental to be open")
	}
	if !rental.DueAt.Equal(due) {
		t.Errorf("due at = %v, want %v", rental.DueAt, due)
	}
	if rental.Fine != 0 {
		t.Errorf("expected zero fine on open rental, got %v", rental.Fine)
	}
}

func TestOpenRentalUniquePerGame(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateGame(ctx, database, "Cyber Adventure", "Action", "PC", 3999, 150)

	now := time.Now().UTC()
	if err := InsertRental(ctx, database, "R1", "G1", "U1", now, now.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("InsertRental: %v", err)
	}

	// A second open rental for the same game must hit the partial unique
	// index, whatever the caller checked beforehand.
	if err := InsertRental(ctx, database, "R2", "G1", "U2", now, now.AddDate(0, 0, 7)); err == nil {
		t.Fatal("expected second open rental for same game to fail")
	}

	// After closing the first, a new rental is allowed again.
	closed, err := CloseRental(ctx, database, "R1", now.AddDate(0, 0, 1), 0)
	if err != nil || !closed {
		t.Fatalf("CloseRental: closed=%v err=%v", closed, err)
	}
	if err := InsertRental(ctx, database, "R2", "G1", "U2", now, now.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("InsertRental after close: %v", err)
	}
}

func TestFindOpenRentalByGame(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateGame(ctx, database, "Cyber Adventure", "Action", "PC", 3999, 150)

	rental, err := FindOpenRentalByGame(ctx, database, "G1")
	if err != nil {
		t.Fatalf("FindOpenRentalByGame: %v", err)
	}
	if rental != nil {
		t.Errorf("expected no open rental, got %+v", rental)
	}

	now := time.Now().UTC()
	InsertRental(ctx, database, "R1", "G1", "U1", now, now.AddDate(0, 0, 7))

	rental, err = FindOpenRentalByGame(ctx, database, "G1")
	if err != nil {
		t.Fatalf("FindOpenRentalByGame: %v", err)
	}
	if rental == nil || rental.ID != "R1" {
		t.Errorf("expected R1, got %+v", rental)
	}

	CloseRental(ctx, database, "R1", now, 0)
	rental, _ = FindOpenRentalByGame(ctx, database, "G1")
	if rental != nil {
		t.Errorf("expected no open rental after close, got %+v", rental)
	}
}

func TestCloseRentalExactlyOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateGame(ctx, database, "Cyber Adventure", "Action", "PC", 3999, 150)

	now := time.Now().UTC()
	InsertRental(ctx, database, "R1", "G1", "U1", now, now.AddDate(0, 0, 7))

	closed, err := CloseRental(ctx, database, "R1", now.AddDate(0, 0, 9), 20)
	if err != nil {
		t.Fatalf("CloseRental: %v", err)
	}
	if !closed {
		t.Fatal("expected first close to succeed")
	}

	// Second close must not touch the stored fine.
	closed, err = CloseRental(ctx, database, "R1", now.AddDate(0, 0, 30), 999)
	if err != nil {
		t.Fatalf("second CloseRental: %v", err)
	}
	if closed {
		t.Error("expected second close to report false")
	}

	rental, _ := GetRental(ctx, database, "R1")
	if rental.Fine != 20 {
		t.Errorf("fine changed by second close: got %v, want 20", rental.Fine)
	}
}

func TestListUserRentals(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateGame(ctx, database, "Cyber Adventure", "Action", "PC", 3999, 150)
	CreateGame(ctx, database, "Racing Fury", "Racing", "PS5", 3499, 120)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	InsertRental(ctx, database, "R1", "G1", "U1", base, base.AddDate(0, 0, 7))
	InsertRental(ctx, database, "R2", "G2", "U1", base.AddDate(0, 0, 2), base.AddDate(0, 0, 9))
	InsertRental(ctx, database, "R3", "G1", "U2", base.AddDate(0, 0, 3), base.AddDate(0, 0, 10))

	// R3 needs G1 free first; close R1 to keep the open-rental index happy.
	CloseRental(ctx, database, "R1", base.AddDate(0, 0, 2), 0)

	rows, err := ListUserRentals(ctx, database, "U1")
	if err != nil {
		t.Fatalf("ListUserRentals: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rentals for U1, got %d", len(rows))
	}
	// Newest first.
	if rows[0].Rental.ID != "R2" || rows[1].Rental.ID != "R1" {
		t.Errorf("unexpected order: %s, %s", rows[0].Rental.ID, rows[1].Rental.ID)
	}
	if rows[0].Game == nil || rows[0].Game.Name != "Racing Fury" {
		t.Errorf("expected joined game Racing Fury, got %+v", rows[0].Game)
	}
}

func TestListUserRentalsOrderBeyondNineRentals(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Same issue time, so the id tiebreaker decides. R10 was allocated
	// after R9 and must sort first despite comparing lower as a string.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 10; i++ {
		id := fmt.Sprintf("R%d", i)
		gameID := fmt.Sprintf("G%d", i)
		if err := InsertRental(ctx, database, id, gameID, "U1", base, base.AddDate(0, 0, 7)); err != nil {
			t.Fatalf("InsertRental %s: %v", id, err)
		}
	}

	rows, err := ListUserRentals(ctx, database, "U1")
	if err != nil {
		t.Fatalf("ListUserRentals: %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("expected 10 rentals, got %d", len(rows))
	}
	if rows[0].Rental.ID != "R10" || rows[1].Rental.ID != "R9" {
		t.Errorf("unexpected order: %s, %s", rows[0].Rental.ID, rows[1].Rental.ID)
	}
	if rows[9].Rental.ID != "R1" {
		t.Errorf("expected R1 last, got %s", rows[9].Rental.ID)
	}
}

func TestListUserRentalsMissingGameDegrades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Rental referencing a game that no longer exists in the catalog.
	now := time.Now().UTC()
	InsertRental(ctx, database, "R1", "G404", "U1", now, now.AddDate(0, 0, 7))

	rows, err := ListUserRentals(ctx, database, "U1")
	if err != nil {
		t.Fatalf("ListUserRentals: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 rental, got %d", len(rows))
	}
	if rows[0].Game != nil {
		t.Errorf("expected nil game for missing catalog entry, got %+v", rows[0].Game)
	}
	if rows[0].Rental.GameID != "G404" {
		t.Errorf("rental should keep its game id, got %q", rows[0].Rental.GameID)
	}
}

func TestInsertRentalInsideTransaction(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateGame(ctx, database, "Cyber Adventure", "Action", "PC", 3999, 150)

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}

	id, err := NextID(ctx, tx, ClassRental)
	if err != nil {
		t.Fatalf("NextID in tx: %v", err)
	}
	now := time.Now().UTC()
	if err := InsertRental(ctx, tx, id, "G1", "U1", now, now.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("InsertRental in tx: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	// Nothing committed: no rental, and the counter advance rolled back too.
	rental, _ := GetRental(ctx, database, id)
	if rental != nil {
		t.Errorf("expected rollback to discard rental, got %+v", rental)
	}
	next, err := NextID(ctx, database, ClassRental)
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if next != "R1" {
		t.Errorf("expected counter rollback, next id = %q, want R1", next)
	}
}

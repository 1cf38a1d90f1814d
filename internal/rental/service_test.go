package rental

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlakar/gameshelf/internal/db"
	"github.com/mlakar/gameshelf/internal/model"
	"github.com/mlakar/gameshelf/internal/store"
)

// testService returns a service with a settable clock and the three
// sample games seeded.
func testService(t *testing.T) (*Service, *time.Time, context.Context) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := store.CreateGame(ctx, database, "Cyber Adventure", "Action", "PC", 3999, 150)
	require.NoError(t, err)
	_, err = store.CreateGame(ctx, database, "Racing Fury", "Racing", "PS5", 3499, 120)
	require.NoError(t, err)
	_, err = store.CreateGame(ctx, database, "Puzzle Land", "Puzzle", "PC", 999, 50)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := New(database, Config{
		FinePerDay: 10,
		Now:        func() time.Time { return now },
	})
	return svc, &now, ctx
}

func TestRentReturnScenario(t *testing.T) {
	svc, now, ctx := testService(t)

	// Rent G1 for 7 days on 2024-01-01.
	rented, err := svc.Rent(ctx, "U1", "G1", 7)
	require.NoError(t, err)
	assert.Equal(t, "R1", rented.ID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rented.IssuedAt)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), rented.DueAt)

	games, _ := svc.Inventory(ctx)
	assert.Equal(t, model.GameStatusRented, games[0].Status)

	// Return on 2024-01-10: two full days late at rate 10.
	*now = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	result, err := svc.Return(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Fine)
	assert.False(t, result.Already)

	games, _ = svc.Inventory(ctx)
	assert.Equal(t, model.GameStatusAvailable, games[0].Status)

	library, err := svc.Library(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, library, 1)
	assert.Equal(t, model.RentalStatusReturned, library[0].Status)
	assert.Equal(t, 20.0, library[0].Rental.Fine)
}

func TestRentOnTimeReturnNoFine(t *testing.T) {
	svc, now, ctx := testService(t)

	_, err := svc.Rent(ctx, "U1", "G2", 7)
	require.NoError(t, err)

	// Six hours late is less than a full day: no fine.
	*now = now.Add(7*24*time.Hour + 6*time.Hour)
	result, err := svc.Return(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Fine)
}

func TestRentUnknownGame(t *testing.T) {
	svc, _, ctx := testService(t)

	_, err := svc.Rent(ctx, "U1", "G99", 7)
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestRentUnavailableGame(t *testing.T) {
	svc, _, ctx := testService(t)

	_, err := svc.Rent(ctx, "U1", "G1", 7)
	require.NoError(t, err)

	_, err = svc.Rent(ctx, "U2", "G1", 7)
	assert.ErrorIs(t, err, ErrGameUnavailable)

	// A different game is unaffected.
	_, err = svc.Rent(ctx, "U2", "G2", 7)
	assert.NoError(t, err)
}

func TestRentDefaultPeriod(t *testing.T) {
	svc, _, ctx := testService(t)

	rented, err := svc.Rent(ctx, "U1", "G1", 0)
	require.NoError(t, err)
	assert.Equal(t, rented.IssuedAt.Add(DefaultRentalDays*24*time.Hour), rented.DueAt)
}

func TestRentPeriodTooLong(t *testing.T) {
	svc, _, ctx := testService(t)

	// A huge period must be rejected, not wrap the date math around.
	_, err := svc.Rent(ctx, "U1", "G1", 200000)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	// The game was never touched.
	games, err := svc.Inventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.GameStatusAvailable, games[0].Status)

	// The longest allowed period still yields a due date after issue.
	rented, err := svc.Rent(ctx, "U1", "G1", MaxRentalDays)
	require.NoError(t, err)
	assert.True(t, rented.DueAt.After(rented.IssuedAt))
	assert.Equal(t, rented.IssuedAt.AddDate(0, 0, MaxRentalDays), rented.DueAt)
}

func TestConcurrentRentSingleWinner(t *testing.T) {
	svc, _, ctx := testService(t)

	const renters = 16
	var wg sync.WaitGroup
	errs := make([]error, renters)

	for i := 0; i < renters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Rent(ctx, "U1", "G1", 7)
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		default:
			assert.ErrorIs(t, err, ErrGameUnavailable)
			lost++
		}
	}
	assert.Equal(t, 1, won, "exactly one renter must win")
	assert.Equal(t, renters-1, lost)

	open, err := store.FindOpenRentalByGame(ctx, svc.db, "G1")
	require.NoError(t, err)
	require.NotNil(t, open, "winner's rental must be open")
}

func TestReturnIdempotent(t *testing.T) {
	svc, now, ctx := testService(t)

	_, err := svc.Rent(ctx, "U1", "G1", 7)
	require.NoError(t, err)

	*now = now.AddDate(0, 0, 10)
	first, err := svc.Return(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, first.Fine)
	assert.False(t, first.Already)

	// Much later second return: same fine, no mutation.
	*now = now.AddDate(0, 0, 30)
	second, err := svc.Return(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, second.Fine)
	assert.True(t, second.Already)

	rental, err := store.GetRental(ctx, svc.db, "R1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, rental.Fine)
}

func TestReturnUnknownRental(t *testing.T) {
	svc, _, ctx := testService(t)

	_, err := svc.Return(ctx, "R99")
	assert.ErrorIs(t, err, ErrRentalNotFound)
}

func TestRentAgainAfterReturn(t *testing.T) {
	svc, now, ctx := testService(t)

	_, err := svc.Rent(ctx, "U1", "G1", 7)
	require.NoError(t, err)

	*now = now.AddDate(0, 0, 3)
	_, err = svc.Return(ctx, "R1")
	require.NoError(t, err)

	rented, err := svc.Rent(ctx, "U2", "G1", 7)
	require.NoError(t, err)
	assert.Equal(t, "R2", rented.ID)
}

func TestLibraryDerivedStatus(t *testing.T) {
	svc, now, ctx := testService(t)

	_, err := svc.Rent(ctx, "U1", "G1", 7)
	require.NoError(t, err)
	_, err = svc.Rent(ctx, "U1", "G2", 3)
	require.NoError(t, err)

	// Five days in: the 3-day rental is overdue, the 7-day one active.
	*now = now.AddDate(0, 0, 5)
	library, err := svc.Library(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, library, 2)

	byGame := map[string]string{}
	for _, entry := range library {
		byGame[entry.Rental.GameID] = entry.Status
	}
	assert.Equal(t, model.RentalStatusActive, byGame["G1"])
	assert.Equal(t, model.RentalStatusOverdue, byGame["G2"])

	// Other users see nothing.
	other, err := svc.Library(ctx, "U2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestLibraryMissingGameDegrades(t *testing.T) {
	svc, now, ctx := testService(t)

	// A ledger entry whose game is gone from the catalog.
	err := store.InsertRental(ctx, svc.db, "R9", "G404", "U1",
		*now, now.AddDate(0, 0, 7))
	require.NoError(t, err)

	library, err := svc.Library(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, library, 1)
	assert.Nil(t, library[0].Game)
	assert.Equal(t, "G404", library[0].Rental.GameID)
	assert.Equal(t, model.RentalStatusActive, library[0].Status)
}

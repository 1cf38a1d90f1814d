package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Id classes handed out by the allocator. Ids are prefixed with the
// class, so games are G1, G2, ..., rentals R1, ... and users U1, ...
const (
	ClassGame   = "G"
	ClassRental = "R"
	ClassUser   = "U"
)

// ErrAllocation means the id counter could not be advanced durably.
var ErrAllocation = errors.New("id allocation failed")

// NextID advances the durable counter for the given class and returns the
// new prefixed id. The advance is a single UPDATE ... RETURNING, so
// concurrent callers are serialized by the database and an id is never
// handed out twice, across process restarts included.
func NextID(ctx context.Context, q DBTX, class string) (string, error) {
	var n int64
	err := q.QueryRowContext(ctx,
		`UPDATE counters SET next = next + 1 WHERE class = ? RETURNING next`,
		class,
	).Scan(&n)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: unknown class %q", ErrAllocation, class)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAllocation, err)
	}
	return fmt.Sprintf("%s%d", class, n), nil
}

package vectors

import (
	"context"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/models"
)

// Repository is the local durable store for captured vectors. It is the
// only shared mutable resource between the acquisition loop and the sync
// engine; every method is atomic with respect to the others.
type Repository interface {
	// Append inserts a vector in pending state and returns the assigned id.
	// The row is durable before Append returns.
	Append(ctx context.Context, v *models.Vector) (int64, error)

	// ListPending returns up to limit pending vectors, oldest captured_at
	// first. Re-querying after a sync returns only what remains pending.
	ListPending(ctx context.Context, limit int) ([]*models.Vector, error)

	// MarkSynced transitions the given ids from pending to synced in a
	// single transaction: either every id transitions or none does. If any
	// id is not currently pending it returns common.ErrNotFound and the
	// transaction is rolled back.
	MarkSynced(ctx context.Context, ids []int64) error

	// BumpAttempts increments the rejection counter for the given pending
	// ids, transitioning any row that reaches maxAttempts to failed. One
	// transaction for the whole set.
	BumpAttempts(ctx context.Context, ids []int64, maxAttempts int) error

	// ListFailed returns vectors flagged as permanently failed.
	ListFailed(ctx context.Context) ([]*models.Vector, error)

	// ListRecent returns the newest vectors regardless of state, newest
	// captured_at first.
	ListRecent(ctx context.Context, limit int) ([]*models.Vector, error)

	// PurgeSynced deletes synced vectors captured before olderThan and
	// reports how many rows were removed. Pending and failed rows are
	// never touched.
	PurgeSynced(ctx context.Context, olderThan time.Time) (int64, error)

	// Counts returns the number of pending, synced and failed vectors.
	Counts(ctx context.Context) (pending, synced, failed int64, err error)
}

package vectors

import (
	"context"

	"github.com/mkuznecovs/healthmon/internal/server/models"
)

// Repository describes uploaded-vector persistence.
type Repository interface {
	// Insert stores one vector. It reports true when a new row was
	// written and false when an identical (user_id, device_id,
	// captured_at) row already existed. A duplicate is not an error:
	// the caller acknowledges it so the client can settle the record.
	Insert(ctx context.Context, v *models.Vector) (bool, error)

	// SelectRecent returns up to limit vectors for the user, newest
	// first.
	SelectRecent(ctx context.Context, userID int64, limit int) ([]*models.Vector, error)
}

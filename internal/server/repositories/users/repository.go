package users

import (
	"context"

	"github.com/mkuznecovs/healthmon/internal/server/models"
)

// Repository describes account persistence.
type Repository interface {
	// Create inserts a new user and returns it with the assigned id.
	// A username or email collision yields shared.ErrorLoginAlreadyExists.
	Create(ctx context.Context, u *models.User) (*models.User, error)

	// FindByUsername returns shared.ErrorNotFound when no such account
	// exists.
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByID returns shared.ErrorNotFound when no such account exists.
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Package users provides the PostgreSQL-backed account repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkuznecovs/healthmon/internal/dbx"
	"github.com/mkuznecovs/healthmon/internal/server/models"
	"github.com/mkuznecovs/healthmon/internal/shared"
)

// pgUniqueViolation is the SQLSTATE for a unique-constraint hit.
const pgUniqueViolation = "23505"

// PostgresRepository implements Repository over a dbx.DBTX (either
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := `INSERT INTO users (username, email, password_hash, user_type, subscription_end)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	row := r.db.QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.UserType, u.SubscriptionEnd)

	created := *u
	if err := row.Scan(&created.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, shared.ErrorLoginAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &created, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, user_type, subscription_end
		FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, user_type, subscription_end
		FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.UserType, &u.SubscriptionEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

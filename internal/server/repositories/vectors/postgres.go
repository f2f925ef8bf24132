// Package vectors provides the PostgreSQL-backed vector repository.
package vectors

import (
	"context"
	"fmt"

	"github.com/mkuznecovs/healthmon/internal/dbx"
	"github.com/mkuznecovs/healthmon/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (either
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, v *models.Vector) (bool, error) {
	query := `INSERT INTO vectors (user_id, device_id, captured_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, device_id, captured_at) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, v.UserID, v.DeviceID, v.CapturedAt, v.Payload)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) SelectRecent(ctx context.Context, userID int64, limit int) ([]*models.Vector, error) {
	query := `SELECT id, user_id, device_id, captured_at, payload
		FROM vectors WHERE user_id = $1 ORDER BY captured_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Vector
	for rows.Next() {
		v := &models.Vector{}
		if err := rows.Scan(&v.ID, &v.UserID, &v.DeviceID, &v.CapturedAt, &v.Payload); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

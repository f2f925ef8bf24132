// Package vectors provides the SQLite-backed local durable store for
// captured health vectors.
package vectors

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/models"
	"github.com/mkuznecovs/healthmon/internal/common"
	"github.com/mkuznecovs/healthmon/internal/dbx"
)

// timeLayout is how captured_at is stored: RFC 3339 UTC with a
// fixed-width 9-digit fraction, so the text collates chronologically
// and ORDER BY captured_at needs no parsing. RFC3339Nano would not do:
// it trims trailing fractional zeros, which makes whole seconds sort
// after fractional ones within the same second.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository implements Repository over a *sql.DB. Multi-row state
// transitions run inside a transaction via dbx.WithTx.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, v *models.Vector) (int64, error) {
	query := `INSERT INTO vectors (captured_at, heart_rate, stress_level, model_version, sync_state, attempts)
		VALUES (?, ?, ?, ?, 0, 0)`
	res, err := r.db.ExecContext(ctx, query,
		v.CapturedAt.UTC().Format(timeLayout), v.HeartRate, v.StressLevel, v.ModelVersion)
	if err != nil {
		return 0, fmt.Errorf("%w: append: %v", common.ErrPersistence, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %v", common.ErrPersistence, err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context, limit int) ([]*models.Vector, error) {
	query := `SELECT id, captured_at, heart_rate, stress_level, model_version, sync_state, attempts
		FROM vectors WHERE sync_state = ? ORDER BY captured_at, id LIMIT ?`
	return r.selectVectors(ctx, query, int(models.StatePending), limit)
}

func (r *SQLiteRepository) ListFailed(ctx context.Context) ([]*models.Vector, error) {
	query := `SELECT id, captured_at, heart_rate, stress_level, model_version, sync_state, attempts
		FROM vectors WHERE sync_state = ? ORDER BY captured_at, id`
	return r.selectVectors(ctx, query, int(models.StateFailed))
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]*models.Vector, error) {
	query := `SELECT id, captured_at, heart_rate, stress_level, model_version, sync_state, attempts
		FROM vectors ORDER BY captured_at DESC, id DESC LIMIT ?`
	return r.selectVectors(ctx, query, limit)
}

func (r *SQLiteRepository) selectVectors(ctx context.Context, query string, args ...any) ([]*models.Vector, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select vectors: %v", common.ErrPersistence, err)
	}
	defer rows.Close()

	var result []*models.Vector
	for rows.Next() {
		item := &models.Vector{}
		var capturedAt string
		var state int
		if err := rows.Scan(&item.ID, &capturedAt, &item.HeartRate, &item.StressLevel,
			&item.ModelVersion, &state, &item.Attempts); err != nil {
			return nil, fmt.Errorf("%w: scan vector: %v", common.ErrPersistence, err)
		}
		ts, err := time.Parse(timeLayout, capturedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: parse captured_at: %v", common.ErrPersistence, err)
		}
		item.CapturedAt = ts
		item.SyncState = models.SyncState(state)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate vectors: %v", common.ErrPersistence, err)
	}
	return result, nil
}

// MarkSynced flips every listed id from pending to synced, or none of them.
// An id that is missing or no longer pending aborts the transaction with
// common.ErrNotFound; the caller treats that as a benign race.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx,
				`UPDATE vectors SET sync_state = ? WHERE id = ? AND sync_state = ?`,
				int(models.StateSynced), id, int(models.StatePending))
			if err != nil {
				return fmt.Errorf("%w: mark synced: %v", common.ErrPersistence, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("%w: rows affected: %v", common.ErrPersistence, err)
			}
			if n != 1 {
				return fmt.Errorf("vector %d: %w", id, common.ErrNotFound)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) BumpAttempts(ctx context.Context, ids []int64, maxAttempts int) error {
	if len(ids) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, id := range ids {
			_, err := tx.ExecContext(ctx,
				`UPDATE vectors SET attempts = attempts + 1 WHERE id = ? AND sync_state = ?`,
				id, int(models.StatePending))
			if err != nil {
				return fmt.Errorf("%w: bump attempts: %v", common.ErrPersistence, err)
			}
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE vectors SET sync_state = ? WHERE sync_state = ? AND attempts >= ?`,
			int(models.StateFailed), int(models.StatePending), maxAttempts)
		if err != nil {
			return fmt.Errorf("%w: flag failed: %v", common.ErrPersistence, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) PurgeSynced(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM vectors WHERE sync_state = ? AND captured_at < ?`,
		int(models.StateSynced), olderThan.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("%w: purge synced: %v", common.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %v", common.ErrPersistence, err)
	}
	return n, nil
}

func (r *SQLiteRepository) Counts(ctx context.Context) (pending, synced, failed int64, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sync_state, COUNT(*) FROM vectors GROUP BY sync_state`)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: count vectors: %v", common.ErrPersistence, err)
	}
	defer rows.Close()

	for rows.Next() {
		var state int
		var n int64
		if err := rows.Scan(&state, &n); err != nil {
			return 0, 0, 0, fmt.Errorf("%w: scan counts: %v", common.ErrPersistence, err)
		}
		switch models.SyncState(state) {
		case models.StatePending:
			pending = n
		case models.StateSynced:
			synced = n
		case models.StateFailed:
			failed = n
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: iterate counts: %v", common.ErrPersistence, err)
	}
	return pending, synced, failed, nil
}

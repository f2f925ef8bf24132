package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkuznecovs/healthmon/internal/dbx"
	"github.com/mkuznecovs/healthmon/internal/server/models"
	"github.com/mkuznecovs/healthmon/internal/server/repositories/repomanager"
)

// VectorRecord is one uploaded observation as submitted by a client.
// Payload carries the full record body untouched.
type VectorRecord struct {
	DeviceID   string
	CapturedAt time.Time
	Payload    json.RawMessage
}

// StoreResult reports which records of a batch were accepted.
// Accepted holds zero-based indexes into the submitted batch. A record
// that was already stored under the same (device, timestamp) key counts
// as accepted: the client just never saw the earlier acknowledgment.
type StoreResult struct {
	Count    int
	Accepted []int
}

// VectorService accepts uploaded vector batches and serves history.
type VectorService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewVectorService(db *sql.DB, m repomanager.RepositoryManager) *VectorService {
	return &VectorService{db: db, repomanager: m}
}

// Store persists a batch for the given account inside one transaction.
// Records with an empty device id or a zero timestamp are skipped and
// left out of the accepted set; a database failure aborts the whole
// batch so the client sees nothing accepted and retries.
func (s *VectorService) Store(ctx context.Context, userID int64, batch []VectorRecord) (*StoreResult, error) {
	result := &StoreResult{Accepted: make([]int, 0, len(batch))}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Vectors(tx)
		for i, rec := range batch {
			if rec.DeviceID == "" || rec.CapturedAt.IsZero() {
				continue
			}
			v := &models.Vector{
				UserID:     userID,
				DeviceID:   rec.DeviceID,
				CapturedAt: rec.CapturedAt,
				Payload:    rec.Payload,
			}
			if _, err := repo.Insert(ctx, v); err != nil {
				return fmt.Errorf("error storing vector: %v", err)
			}
			result.Accepted = append(result.Accepted, i)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Count = len(result.Accepted)
	return result, nil
}

// SelectRecent returns up to limit stored vectors for the account,
// newest first.
func (s *VectorService) SelectRecent(ctx context.Context, userID int64, limit int) ([]*models.Vector, error) {
	repo := s.repomanager.Vectors(s.db)
	return repo.SelectRecent(ctx, userID, limit)
}

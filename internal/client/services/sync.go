package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/api"
	"github.com/mkuznecovs/healthmon/internal/client/models"
	"github.com/mkuznecovs/healthmon/internal/client/repositories/vectors"
	"github.com/mkuznecovs/healthmon/internal/common"
	"github.com/mkuznecovs/healthmon/internal/logging"
)

// SyncReport summarizes one sync run.
type SyncReport struct {
	// Submitted is the number of vectors sent in the batch.
	Submitted int
	// Accepted is the number the server acknowledged and the store marked
	// synced.
	Accepted int
	// Rejected is the number the server refused; they stay pending with an
	// incremented attempt counter until the attempt limit flags them failed.
	Rejected int
}

// SyncEngineOptions carries the tunables of the engine.
type SyncEngineOptions struct {
	// DeviceID is the stable identifier reported with every vector. It is
	// half of the server's dedup key, with the capture timestamp.
	DeviceID string
	// BatchSize bounds one upload so the request body stays well under
	// typical request limits.
	BatchSize int
	// MaxAttempts is the rejection count after which a vector is flagged
	// failed instead of retried.
	MaxAttempts int
	// Timeout bounds the network submission.
	Timeout time.Duration
}

// SyncEngine moves pending vectors to synced exactly once. The local store
// owns all record state: the engine only reads pending batches and issues
// state-transition commands after server acknowledgment. Server-side
// deduplication by (device_id, timestamp) makes re-submission after a
// crash idempotent.
type SyncEngine struct {
	client   api.Client
	vectors  vectors.Repository
	sessions Sessions
	opts     SyncEngineOptions
	logger   logging.Logger

	mu sync.Mutex
}

func NewSyncEngine(client api.Client, repo vectors.Repository, sessions Sessions,
	opts SyncEngineOptions, logger logging.Logger) *SyncEngine {
	return &SyncEngine{client: client, vectors: repo, sessions: sessions, opts: opts, logger: logger}
}

// Run performs one bounded sync pass.
//
// A concurrent Run is rejected with common.ErrSyncInProgress rather than
// queued. The premium gate is checked before any network activity. On a
// transport failure, timeout, or caller cancellation no local state
// changes; the pending set is identical before and after. A credential
// rejection invalidates the session. Only after the server acknowledges a
// batch do exactly the acknowledged ids transition to synced.
func (e *SyncEngine) Run(ctx context.Context) (*SyncReport, error) {
	if !e.mu.TryLock() {
		return nil, common.ErrSyncInProgress
	}
	defer e.mu.Unlock()

	session := e.sessions.Current()
	if session == nil {
		return nil, fmt.Errorf("no active session: %w", common.ErrNotAuthorized)
	}
	if !session.CanSync() {
		return nil, common.ErrNotPremium
	}

	pending, err := e.vectors.ListPending(ctx, e.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	if len(pending) == 0 {
		return &SyncReport{}, nil
	}

	batch := make([]api.VectorPayload, len(pending))
	for i, v := range pending {
		batch[i] = e.toPayload(v)
	}

	submitCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	resp, err := e.client.PushVectors(submitCtx, session.AccessToken, session.UserID, batch)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotPremium):
			// Downgraded since login; the credential itself is still good.
			return nil, err
		case errors.Is(err, common.ErrNotAuthorized):
			e.sessions.Invalidate()
			return nil, fmt.Errorf("credential rejected: %w", err)
		default:
			return nil, fmt.Errorf("submit batch: %w", err)
		}
	}

	accepted, ok := acceptedIndexes(resp, len(batch))
	if !ok {
		// No per-record detail and the count does not cover the batch.
		// Mark nothing: everything stays pending and is re-sent later.
		return nil, fmt.Errorf("ambiguous acknowledgment: count=%d of %d", resp.Count, len(batch))
	}

	acceptedIDs := make([]int64, 0, len(accepted))
	rejectedIDs := make([]int64, 0, len(batch)-len(accepted))
	for i, v := range pending {
		if _, ok := accepted[i]; ok {
			acceptedIDs = append(acceptedIDs, v.ID)
		} else {
			rejectedIDs = append(rejectedIDs, v.ID)
		}
	}

	if err := e.vectors.MarkSynced(ctx, acceptedIDs); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("mark synced: %w", err)
		}
		// Benign race: another actor already transitioned part of the
		// batch. The server holds the records either way.
		e.logger.Warn(ctx, "mark synced raced with another transition", "error", err)
	}

	if len(rejectedIDs) > 0 {
		e.logger.Warn(ctx, "server rejected part of batch",
			"rejected", len(rejectedIDs), "submitted", len(batch))
		if err := e.vectors.BumpAttempts(ctx, rejectedIDs, e.opts.MaxAttempts); err != nil {
			return nil, fmt.Errorf("bump attempts: %w", err)
		}
	}

	report := &SyncReport{Submitted: len(batch), Accepted: len(acceptedIDs), Rejected: len(rejectedIDs)}
	e.logger.Info(ctx, "sync pass complete",
		"submitted", report.Submitted, "accepted", report.Accepted, "rejected", report.Rejected)
	return report, nil
}

func (e *SyncEngine) toPayload(v *models.Vector) api.VectorPayload {
	hr := v.HeartRate
	stress := v.StressLevel
	return api.VectorPayload{
		DeviceID:     e.opts.DeviceID,
		Timestamp:    v.CapturedAt.UTC(),
		HeartRate:    &hr,
		StressLevel:  &stress,
		ModelVersion: v.ModelVersion,
	}
}

// acceptedIndexes resolves the acknowledged subset of a batch. A response
// without an Accepted list is a full acknowledgment only when its count
// covers the whole batch.
func acceptedIndexes(resp *api.SyncResponse, batchLen int) (map[int]struct{}, bool) {
	set := make(map[int]struct{}, batchLen)
	if resp.Accepted == nil {
		if resp.Count != batchLen {
			return nil, false
		}
		for i := 0; i < batchLen; i++ {
			set[i] = struct{}{}
		}
		return set, true
	}
	for _, i := range resp.Accepted {
		if i < 0 || i >= batchLen {
			return nil, false
		}
		set[i] = struct{}{}
	}
	return set, true
}

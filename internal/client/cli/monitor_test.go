package cli

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/api"
	"github.com/mkuznecovs/healthmon/internal/client/models"
	"github.com/mkuznecovs/healthmon/internal/client/repositories/vectors"
	"github.com/mkuznecovs/healthmon/internal/client/services"
	"github.com/mkuznecovs/healthmon/internal/common"
	"github.com/mkuznecovs/healthmon/internal/logging"
	"github.com/stretchr/testify/assert"
)

// countingClient fails every submission with a fixed error and counts
// how many network submissions were issued.
type countingClient struct {
	pushErr   error
	pushCalls atomic.Int64
}

func (c *countingClient) Register(ctx context.Context, u, e, p string) (*api.TokenResponse, error) {
	return nil, nil
}

func (c *countingClient) Login(ctx context.Context, u, p string) (*api.TokenResponse, error) {
	return nil, nil
}

func (c *countingClient) Me(ctx context.Context, token string) (*api.UserResponse, error) {
	return nil, nil
}

func (c *countingClient) PushVectors(ctx context.Context, token string, userID int64, batch []api.VectorPayload) (*api.SyncResponse, error) {
	c.pushCalls.Add(1)
	if c.pushErr != nil {
		return nil, c.pushErr
	}
	return &api.SyncResponse{Status: "synced", Count: len(batch)}, nil
}

func (c *countingClient) PullVectors(ctx context.Context, token string, userID int64, limit int) ([]api.VectorPayload, error) {
	return nil, nil
}

// staticRepo always reports one pending vector so every pass submits.
type staticRepo struct{}

func (staticRepo) Append(ctx context.Context, v *models.Vector) (int64, error) { return 1, nil }

func (staticRepo) ListPending(ctx context.Context, limit int) ([]*models.Vector, error) {
	return []*models.Vector{{ID: 1, CapturedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), HeartRate: 72}}, nil
}

func (staticRepo) MarkSynced(ctx context.Context, ids []int64) error { return nil }

func (staticRepo) BumpAttempts(ctx context.Context, ids []int64, maxAttempts int) error { return nil }

func (staticRepo) ListFailed(ctx context.Context) ([]*models.Vector, error) { return nil, nil }

func (staticRepo) ListRecent(ctx context.Context, limit int) ([]*models.Vector, error) {
	return nil, nil
}

func (staticRepo) PurgeSynced(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (staticRepo) Counts(ctx context.Context) (pending, synced, failed int64, err error) {
	return 1, 0, 0, nil
}

type memorySessions struct {
	session *models.Session
}

func (m *memorySessions) Current() *models.Session { return m.session }
func (m *memorySessions) Invalidate()              { m.session = nil }

func syncTestApp(client api.Client) *App {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	sessions := &memorySessions{session: &models.Session{
		AccessToken: "tok",
		UserID:      7,
		UserName:    "alice",
		Entitlement: models.EntitlementPremium,
	}}
	var repo vectors.Repository = staticRepo{}
	engine := services.NewSyncEngine(client, repo, sessions, services.SyncEngineOptions{
		DeviceID:    "dev-1",
		BatchSize:   10,
		MaxAttempts: 5,
		Timeout:     time.Second,
	}, logger)
	return &App{Logger: logger, Engine: engine}
}

func TestRunPeriodicSync_StopsAfterEntitlementRejection(t *testing.T) {
	client := &countingClient{pushErr: common.ErrNotPremium}
	app := syncTestApp(client)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	app.runPeriodicSync(ctx, 20*time.Millisecond)

	assert.LessOrEqual(t, client.pushCalls.Load(), int64(1),
		"an entitlement rejection must not be retried automatically")
}

func TestRunPeriodicSync_StopsAfterCredentialRejection(t *testing.T) {
	client := &countingClient{pushErr: common.ErrNotAuthorized}
	app := syncTestApp(client)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	app.runPeriodicSync(ctx, 20*time.Millisecond)

	assert.LessOrEqual(t, client.pushCalls.Load(), int64(1),
		"a credential rejection must not be retried automatically")
}

func TestRunPeriodicSync_KeepsRunningThroughTransientFailures(t *testing.T) {
	client := &countingClient{pushErr: common.ErrTransient}
	app := syncTestApp(client)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	app.runPeriodicSync(ctx, 20*time.Millisecond)

	assert.Greater(t, client.pushCalls.Load(), int64(1),
		"transient failures are retried on later ticks")
}

package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/api"
	"github.com/mkuznecovs/healthmon/internal/client/models"
	"github.com/mkuznecovs/healthmon/internal/client/repositories/vectors"
	"github.com/mkuznecovs/healthmon/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupVectorRepo(t *testing.T) *vectors.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // a :memory: database exists per connection
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE vectors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  captured_at TEXT NOT NULL,
  heart_rate INTEGER NOT NULL,
  stress_level REAL NOT NULL,
  model_version TEXT NOT NULL DEFAULT 'v1.0',
  sync_state INTEGER NOT NULL DEFAULT 0,
  attempts INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return vectors.NewSQLiteRepository(db)
}

func seedPending(t *testing.T, repo *vectors.SQLiteRepository, n int) []int64 {
	t.Helper()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		id, err := repo.Append(context.Background(), &models.Vector{
			CapturedAt:   base.Add(time.Duration(i) * 2 * time.Second),
			HeartRate:    70 + i,
			StressLevel:  0.2,
			ModelVersion: "v1.0",
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func pendingIDs(t *testing.T, repo *vectors.SQLiteRepository) []int64 {
	t.Helper()
	rows, err := repo.ListPending(context.Background(), 1000)
	require.NoError(t, err)
	ids := make([]int64, 0, len(rows))
	for _, v := range rows {
		ids = append(ids, v.ID)
	}
	return ids
}

// fakeClient implements api.Client with canned responses and records what
// it was called with.
type fakeClient struct {
	loginResp *api.TokenResponse
	loginErr  error
	meResp    *api.UserResponse
	meErr     error
	pushResp  *api.SyncResponse
	pushErr   error
	pullResp  []api.VectorPayload
	pullErr   error

	pushCalls int
	gotToken  string
	gotUserID int64
	gotBatch  []api.VectorPayload
}

func (f *fakeClient) Register(ctx context.Context, username, email, password string) (*api.TokenResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (*api.TokenResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeClient) Me(ctx context.Context, token string) (*api.UserResponse, error) {
	return f.meResp, f.meErr
}

func (f *fakeClient) PushVectors(ctx context.Context, token string, userID int64, batch []api.VectorPayload) (*api.SyncResponse, error) {
	f.pushCalls++
	f.gotToken = token
	f.gotUserID = userID
	f.gotBatch = batch
	return f.pushResp, f.pushErr
}

func (f *fakeClient) PullVectors(ctx context.Context, token string, userID int64, limit int) ([]api.VectorPayload, error) {
	return f.pullResp, f.pullErr
}

// fixedSessions implements Sessions with a static session.
type fixedSessions struct {
	session     *models.Session
	invalidated bool
}

func (s *fixedSessions) Current() *models.Session {
	if s.invalidated {
		return nil
	}
	return s.session
}

func (s *fixedSessions) Invalidate() { s.invalidated = true }

func premiumSession() *models.Session {
	return &models.Session{
		AccessToken: "tok",
		UserID:      7,
		UserName:    "alice",
		Entitlement: models.EntitlementPremium,
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/models"
	"github.com/mkuznecovs/healthmon/internal/client/sensor"
	"github.com/mkuznecovs/healthmon/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{ err error }

func (f *failingReader) Read(ctx context.Context) (int, error) { return 0, f.err }

type failingPredictor struct{}

func (f *failingPredictor) Predict(heartRate int) (float64, error) {
	return 0, errors.New("model not loaded")
}

func (f *failingPredictor) Version() string { return "v1.0" }

func TestCapture_AppendsPendingVector(t *testing.T) {
	repo := setupVectorRepo(t)
	m := NewMonitor(&sensor.Static{Rate: 100}, &stubPredictor{score: 0.5}, repo, time.Second, testLogger())
	m.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

	v, err := m.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.ID)
	assert.Equal(t, 100, v.HeartRate)
	assert.Equal(t, 0.5, v.StressLevel)
	assert.Equal(t, "v1.0", v.ModelVersion)

	pending, err := repo.ListPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.StatePending, pending[0].SyncState)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), pending[0].CapturedAt)
}

func TestCapture_SensorFailureUsesFallbackReading(t *testing.T) {
	repo := setupVectorRepo(t)
	m := NewMonitor(&failingReader{err: context.DeadlineExceeded}, &stubPredictor{score: 0.1}, repo,
		time.Second, testLogger())

	v, err := m.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.FallbackHeartRate, v.HeartRate)
}

func TestCapture_InferenceFailureUsesFallbackScore(t *testing.T) {
	repo := setupVectorRepo(t)
	m := NewMonitor(&sensor.Static{Rate: 90}, &failingPredictor{}, repo, time.Second, testLogger())

	v, err := m.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 90, v.HeartRate)
	assert.Equal(t, common.FallbackStressLevel, v.StressLevel)
}

func TestRun_CapturesUntilCancelled(t *testing.T) {
	repo := setupVectorRepo(t)
	m := NewMonitor(&sensor.Static{Rate: 80}, &stubPredictor{score: 0.3}, repo,
		5*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	require.NoError(t, m.Run(ctx))

	pending, err := repo.ListPending(context.Background(), 100)
	require.NoError(t, err)
	assert.NotEmpty(t, pending)
}

// Append while a pending batch is being read: the store-level atomicity
// means the loop is never blocked by sync activity.
func TestCapture_ConcurrentWithListPending(t *testing.T) {
	repo := setupVectorRepo(t)
	seedPending(t, repo, 5)
	m := NewMonitor(&sensor.Static{Rate: 75}, &stubPredictor{score: 0.2}, repo, time.Second, testLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_, err := repo.ListPending(context.Background(), 3)
			assert.NoError(t, err)
		}
	}()

	for i := 0; i < 20; i++ {
		_, err := m.Capture(context.Background())
		require.NoError(t, err)
	}
	<-done
}

type stubPredictor struct{ score float64 }

func (s *stubPredictor) Predict(heartRate int) (float64, error) { return s.score, nil }
func (s *stubPredictor) Version() string                        { return "v1.0" }

package services

import (
	"context"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/inference"
	"github.com/mkuznecovs/healthmon/internal/client/models"
	"github.com/mkuznecovs/healthmon/internal/client/repositories/vectors"
	"github.com/mkuznecovs/healthmon/internal/client/sensor"
	"github.com/mkuznecovs/healthmon/internal/common"
	"github.com/mkuznecovs/healthmon/internal/logging"
)

// Monitor is the sensor acquisition loop: on every tick it reads the
// sensor, runs inference, and appends the result to the local store. It
// runs independently of sync activity and only ever talks to the store
// through Append.
type Monitor struct {
	reader    sensor.Reader
	predictor inference.Predictor
	vectors   vectors.Repository
	interval  time.Duration
	logger    logging.Logger

	// now is swapped in tests.
	now func() time.Time
}

func NewMonitor(reader sensor.Reader, predictor inference.Predictor,
	repo vectors.Repository, interval time.Duration, logger logging.Logger) *Monitor {
	return &Monitor{
		reader:    reader,
		predictor: predictor,
		vectors:   repo,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Run captures until ctx is done. A failed capture is logged and the loop
// keeps going; recording locally must not stop because one tick failed.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.Capture(ctx); err != nil {
				m.logger.Error(ctx, "capture failed", "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Capture performs one acquisition: sensor read (fallback reading on
// error or timeout), inference (fallback score on error), then a durable
// append in pending state.
func (m *Monitor) Capture(ctx context.Context) (*models.Vector, error) {
	heartRate, err := m.reader.Read(ctx)
	if err != nil {
		m.logger.Warn(ctx, "sensor read failed, using fallback",
			"fallback", common.FallbackHeartRate, "error", err)
		heartRate = common.FallbackHeartRate
	}

	stress, err := m.predictor.Predict(heartRate)
	if err != nil {
		m.logger.Warn(ctx, "inference failed, using fallback",
			"fallback", common.FallbackStressLevel, "error", err)
		stress = common.FallbackStressLevel
	}

	v := &models.Vector{
		CapturedAt:   m.now().UTC(),
		HeartRate:    heartRate,
		StressLevel:  stress,
		ModelVersion: m.predictor.Version(),
	}

	id, err := m.vectors.Append(ctx, v)
	if err != nil {
		return nil, err
	}
	v.ID = id
	return v, nil
}

// Package cli implements the healthmon command-line client.
package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/api"
	"github.com/mkuznecovs/healthmon/internal/client/config"
	"github.com/mkuznecovs/healthmon/internal/client/inference"
	"github.com/mkuznecovs/healthmon/internal/client/sensor"
	"github.com/mkuznecovs/healthmon/internal/client/services"
	"github.com/mkuznecovs/healthmon/internal/client/store"
	"github.com/mkuznecovs/healthmon/internal/logging"
)

// App bundles the wired client: the open store, the remote client, and
// the services commands operate on. The session and the store handle live
// for the whole process, owned here rather than in package globals.
type App struct {
	Config   *config.Config
	Logger   logging.Logger
	Store    *store.Store
	Client   api.Client
	Auth     *services.AuthService
	Engine   *services.SyncEngine
	Monitor  *services.Monitor
	DeviceID string
}

// NewApp opens the local database, migrates it, and wires the services.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	deviceID, err := st.DeviceID(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	client := api.NewHTTPClient(cfg.ServerURL)
	auth := services.NewAuthService(client, logger)

	engine := services.NewSyncEngine(client, st.Repos.Vectors, auth, services.SyncEngineOptions{
		DeviceID:    deviceID,
		BatchSize:   cfg.BatchSize,
		MaxAttempts: cfg.MaxSyncAttempts,
		Timeout:     cfg.SyncTimeout,
	}, logger)

	reader := sensor.NewSimulated(72, 20, time.Now().UnixNano())
	monitor := services.NewMonitor(reader, inference.NewLinear(), st.Repos.Vectors,
		cfg.SampleInterval, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    st,
		Client:   client,
		Auth:     auth,
		Engine:   engine,
		Monitor:  monitor,
		DeviceID: deviceID,
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// Package store opens the local client database, applies migrations, and
// wires the repositories over it.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkuznecovs/healthmon/internal/client/migrations"
	"github.com/mkuznecovs/healthmon/internal/client/repositories/metadata"
	"github.com/mkuznecovs/healthmon/internal/client/repositories/vectors"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Vectors  vectors.Repository
	Metadata metadata.Repository
}

// Store owns the client database handle and its repositories.
type Store struct {
	DB    *sql.DB
	Repos *Repositories
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the SQLite database at path and brings
// the schema up to date.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	repos := &Repositories{
		Vectors:  vectors.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
	return &Store{DB: db, Repos: repos}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// DeviceID returns the stable device identifier, generating and persisting
// one on first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	v, err := s.Repos.Metadata.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return "", err
	}
	if len(v) > 0 {
		return string(v), nil
	}

	id := uuid.NewString()
	if err := s.Repos.Metadata.Set(ctx, metadata.KeyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

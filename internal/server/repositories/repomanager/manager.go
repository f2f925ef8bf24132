package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkuznecovs/healthmon/internal/dbx"
	"github.com/mkuznecovs/healthmon/internal/server/repositories/users"
	"github.com/mkuznecovs/healthmon/internal/server/repositories/vectors"
)

// RepositoryManager vends repository implementations bound to a DBTX,
// so services can run several repositories inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Vectors(db dbx.DBTX) vectors.Repository
}

// Package repomanager vends repository implementations bound to a database
// handle. Passing a transactional handle yields transaction-scoped
// repositories, which is how multi-row mutations stay atomic.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/etranslation/server/internal/dbx"
	"github.com/etranslation/server/internal/server/repositories/parts"
	"github.com/etranslation/server/internal/server/repositories/requests"
	"github.com/etranslation/server/internal/server/repositories/responses"
	"github.com/etranslation/server/internal/server/repositories/status"
)

// RepositoryManager vends repositories bound to the provided DBTX and
// exposes a schema migration hook.
type RepositoryManager interface {
	Requests(db dbx.DBTX) requests.Repository
	Parts(db dbx.DBTX) parts.Repository
	Responses(db dbx.DBTX) responses.Repository
	Status(db dbx.DBTX) status.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}

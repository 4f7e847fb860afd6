// Package repomanager wires repositories to database handles and owns schema
// migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/helpdesk/internal/dbx"
	"github.com/dmitrijs2005/helpdesk/internal/server/repositories/tickets"
	"github.com/dmitrijs2005/helpdesk/internal/server/repositories/users"
)

// RepositoryManager constructs repositories bound to a DBTX (*sql.DB for
// direct use, *sql.Tx inside dbx.WithTx).
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Tickets(db dbx.DBTX) tickets.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}

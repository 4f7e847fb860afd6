// Package notifications delivers ticket lifecycle emails. Delivery is
// best-effort: callers log failures and never fail the originating request.
package notifications

import (
	"context"

	"github.com/dmitrijs2005/helpdesk/internal/server/models"
)

// Notifier is the outbound notification collaborator.
type Notifier interface {
	// TicketCreated notifies the support staff that a new ticket was filed.
	TicketCreated(ctx context.Context, ticket *models.Ticket, owner *models.User) error

	// TicketUpdated notifies the ticket owner that their ticket changed.
	TicketUpdated(ctx context.Context, ticket *models.Ticket, owner *models.User) error
}

// NoopNotifier discards every notification. Used in tests and when no SMTP
// server is configured.
type NoopNotifier struct{}

func (NoopNotifier) TicketCreated(ctx context.Context, ticket *models.Ticket, owner *models.User) error {
	return nil
}

func (NoopNotifier) TicketUpdated(ctx context.Context, ticket *models.Ticket, owner *models.User) error {
	return nil
}

package tickets

import (
	"context"

	"github.com/dmitrijs2005/helpdesk/internal/server/auth"
	"github.com/dmitrijs2005/helpdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	List(ctx context.Context, scope auth.Scope) ([]*models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	UpdateSolution(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	Delete(ctx context.Context, id int64) error
	DeleteByOwner(ctx context.Context, ownerID int64) error

	AddAttachment(ctx context.Context, att *models.Attachment) (*models.Attachment, error)
	GetAttachment(ctx context.Context, ticketID int64, key string) (*models.Attachment, error)
}

// Package tickets provides the PostgreSQL-backed repository for ticket rows
// and their attachments.
package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/helpdesk/internal/common"
	"github.com/dmitrijs2005/helpdesk/internal/dbx"
	"github.com/dmitrijs2005/helpdesk/internal/server/auth"
	"github.com/dmitrijs2005/helpdesk/internal/server/models"
)

// PostgresRepository implements ticket storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const ticketColumns = `id, user_id, title, description, status, priority, category,
	tech_id, title_solution, tech_description, date_solution, created_at, updated_at`

func scanTicket(row interface{ Scan(dest ...any) error }) (*models.Ticket, error) {
	t := &models.Ticket{}
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Category,
		&t.TechID, &t.TitleSolution, &t.TechDescription, &t.DateSolution, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Create inserts a new ticket owned by ticket.UserID.
func (r *PostgresRepository) Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	query := `
		INSERT INTO tickets (user_id, title, description, status, priority, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + ticketColumns

	return scanTicket(r.db.QueryRowContext(ctx, query,
		ticket.UserID, ticket.Title, ticket.Description, ticket.Status, ticket.Priority, ticket.Category))
}

// GetByID returns the ticket with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	return scanTicket(r.db.QueryRowContext(ctx, query, id))
}

// List returns tickets visible under the given scope. A non-All scope limits
// rows to the owner's; the owner id is always bound, never interpolated.
func (r *PostgresRepository) List(ctx context.Context, scope auth.Scope) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY id`
	args := []any{}
	if !scope.All {
		query = `SELECT ` + ticketColumns + ` FROM tickets WHERE user_id = $1 ORDER BY id`
		args = append(args, scope.OwnerID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update replaces the user-editable fields of a ticket.
func (r *PostgresRepository) Update(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	query := `
		UPDATE tickets
		SET user_id = $1, title = $2, description = $3, status = $4, priority = $5, category = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + ticketColumns

	return scanTicket(r.db.QueryRowContext(ctx, query,
		ticket.UserID, ticket.Title, ticket.Description, ticket.Status, ticket.Priority, ticket.Category, ticket.ID))
}

// UpdateSolution records the technician resolution fields.
func (r *PostgresRepository) UpdateSolution(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	query := `
		UPDATE tickets
		SET tech_id = $1, status = $2, priority = $3, title_solution = $4,
			date_solution = $5, tech_description = $6, category = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + ticketColumns

	return scanTicket(r.db.QueryRowContext(ctx, query,
		ticket.TechID, ticket.Status, ticket.Priority, ticket.TitleSolution,
		ticket.DateSolution, ticket.TechDescription, ticket.Category, ticket.ID))
}

// Delete removes a ticket by id; common.ErrorNotFound when no row matched.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteByOwner removes every ticket owned by the given account. Zero rows is
// not an error: an account with no tickets is a valid deletion target.
func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE user_id = $1`, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// AddAttachment records an uploaded object key against a ticket.
func (r *PostgresRepository) AddAttachment(ctx context.Context, att *models.Attachment) (*models.Attachment, error) {
	query := `
		INSERT INTO ticket_attachments (ticket_id, storage_key, file_name)
		VALUES ($1, $2, $3)
		RETURNING id, ticket_id, storage_key, file_name, created_at
	`
	out := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, query, att.TicketID, att.Key, att.FileName).
		Scan(&out.ID, &out.TicketID, &out.Key, &out.FileName, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// GetAttachment returns the attachment with the given key belonging to a
// ticket, or common.ErrorNotFound.
func (r *PostgresRepository) GetAttachment(ctx context.Context, ticketID int64, key string) (*models.Attachment, error) {
	query := `
		SELECT id, ticket_id, storage_key, file_name, created_at
		FROM ticket_attachments
		WHERE ticket_id = $1 AND storage_key = $2
	`
	out := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, query, ticketID, key).
		Scan(&out.ID, &out.TicketID, &out.Key, &out.FileName, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

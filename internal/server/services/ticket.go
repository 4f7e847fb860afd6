// This file implements TicketService: ticket CRUD, resolution, attachment
// presigning, and best-effort lifecycle notifications.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/helpdesk/internal/logging"
	"github.com/dmitrijs2005/helpdesk/internal/server/auth"
	"github.com/dmitrijs2005/helpdesk/internal/server/config"
	"github.com/dmitrijs2005/helpdesk/internal/server/models"
	"github.com/dmitrijs2005/helpdesk/internal/server/notifications"
	"github.com/dmitrijs2005/helpdesk/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// TicketService provides ticket CRUD, resolution, and attachment presigning.
type TicketService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	notifier notifications.Notifier
	logger   logging.Logger
	config   *config.Config
}

func NewTicketService(db *sql.DB, repos repomanager.RepositoryManager, notifier notifications.Notifier, logger logging.Logger, cfg *config.Config) *TicketService {
	return &TicketService{
		db:       db,
		repos:    repos,
		notifier: notifier,
		logger:   logger.With("module", "tickets"),
		config:   cfg,
	}
}

// TicketInput carries the user-editable ticket fields.
type TicketInput struct {
	Title       string
	Description string
	Status      models.TicketStatus
	Priority    models.TicketPriority
	Category    string
}

// Create files a new ticket owned by ownerID and notifies the support staff.
// Notification failures are logged and do not fail the request.
func (s *TicketService) Create(ctx context.Context, ownerID int64, input TicketInput) (*models.Ticket, error) {
	ticket := &models.Ticket{
		UserID:      ownerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Category:    input.Category,
	}

	created, err := s.repos.Tickets(s.db).Create(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("error creating ticket: %w", err)
	}

	s.notifyCreated(ctx, created)

	return created, nil
}

// List returns tickets visible under the caller's scope.
func (s *TicketService) List(ctx context.Context, scope auth.Scope) ([]*models.Ticket, error) {
	return s.repos.Tickets(s.db).List(ctx, scope)
}

// Get returns a single ticket by id.
func (s *TicketService) Get(ctx context.Context, id int64) (*models.Ticket, error) {
	return s.repos.Tickets(s.db).GetByID(ctx, id)
}

// Update replaces a ticket's user-editable fields and notifies the owner.
func (s *TicketService) Update(ctx context.Context, id int64, ownerID int64, input TicketInput) (*models.Ticket, error) {
	ticket := &models.Ticket{
		ID:          id,
		UserID:      ownerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Category:    input.Category,
	}

	updated, err := s.repos.Tickets(s.db).Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.notifyUpdated(ctx, updated)

	return updated, nil
}

// SolutionInput carries the technician resolution fields.
type SolutionInput struct {
	TechID          int64
	Status          models.TicketStatus
	Priority        models.TicketPriority
	Category        string
	TitleSolution   string
	TechDescription string
	DateSolution    time.Time
}

// Resolve records the technician solution on a ticket and notifies the owner.
func (s *TicketService) Resolve(ctx context.Context, id int64, input SolutionInput) (*models.Ticket, error) {
	ticket := &models.Ticket{
		ID:              id,
		TechID:          &input.TechID,
		Status:          input.Status,
		Priority:        input.Priority,
		Category:        input.Category,
		TitleSolution:   &input.TitleSolution,
		TechDescription: &input.TechDescription,
		DateSolution:    &input.DateSolution,
	}

	updated, err := s.repos.Tickets(s.db).UpdateSolution(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.notifyUpdated(ctx, updated)

	return updated, nil
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	return s.repos.Tickets(s.db).Delete(ctx, id)
}

func (s *TicketService) notifyCreated(ctx context.Context, ticket *models.Ticket) {
	owner, err := s.repos.Users(s.db).GetByID(ctx, ticket.UserID)
	if err != nil {
		s.logger.Warn(ctx, "skipping notification, owner lookup failed", "ticket_id", ticket.ID, "error", err.Error())
		return
	}
	if err := s.notifier.TicketCreated(ctx, ticket, owner); err != nil {
		s.logger.Warn(ctx, "ticket created notification failed", "ticket_id", ticket.ID, "error", err.Error())
	}
}

func (s *TicketService) notifyUpdated(ctx context.Context, ticket *models.Ticket) {
	owner, err := s.repos.Users(s.db).GetByID(ctx, ticket.UserID)
	if err != nil {
		s.logger.Warn(ctx, "skipping notification, owner lookup failed", "ticket_id", ticket.ID, "error", err.Error())
		return
	}
	if err := s.notifier.TicketUpdated(ctx, ticket, owner); err != nil {
		s.logger.Warn(ctx, "ticket updated notification failed", "ticket_id", ticket.ID, "error", err.Error())
	}
}

// --- attachment presigning ---

func randomStorageKey(ticketID int64) string {
	d := time.Now()
	return fmt.Sprintf("tickets/%d/%d/%d/%v", ticketID, d.Year(), d.Month(), uuid.New())
}

func (s *TicketService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// PresignAttachmentUpload records an attachment row for the ticket and returns
// a presigned PUT URL the client uploads the file to directly.
func (s *TicketService) PresignAttachmentUpload(ctx context.Context, ticketID int64, fileName string) (string, string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := randomStorageKey(ticketID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	if _, err := s.repos.Tickets(s.db).AddAttachment(ctx, &models.Attachment{
		TicketID: ticketID,
		Key:      key,
		FileName: fileName,
	}); err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignAttachmentDownload returns a presigned GET URL for an attachment key
// previously recorded against the ticket.
func (s *TicketService) PresignAttachmentDownload(ctx context.Context, ticketID int64, key string) (string, error) {
	att, err := s.repos.Tickets(s.db).GetAttachment(ctx, ticketID, key)
	if err != nil {
		return "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &att.Key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/helpdesk/internal/common"
	"github.com/dmitrijs2005/helpdesk/internal/logging"
	"github.com/dmitrijs2005/helpdesk/internal/server/auth"
	"github.com/dmitrijs2005/helpdesk/internal/server/config"
	"github.com/dmitrijs2005/helpdesk/internal/server/models"
	"github.com/dmitrijs2005/helpdesk/internal/server/repositories/repomanager"
)

type fakeTicketsRepo struct {
	createOut *models.Ticket
	createErr error

	byIDOut *models.Ticket
	byIDErr error

	listOut []*models.Ticket
	listErr error

	updateOut *models.Ticket
	updateErr error

	deleteErr error

	deletedOwner     int64
	deleteByOwnerErr error

	addAttOut *models.Attachment
	addAttErr error

	getAttOut *models.Attachment
	getAttErr error
}

func (f *fakeTicketsRepo) Create(ctx context.Context, tk *models.Ticket) (*models.Ticket, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeTicketsRepo) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}
func (f *fakeTicketsRepo) List(ctx context.Context, scope auth.Scope) ([]*models.Ticket, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}
func (f *fakeTicketsRepo) Update(ctx context.Context, tk *models.Ticket) (*models.Ticket, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}
func (f *fakeTicketsRepo) UpdateSolution(ctx context.Context, tk *models.Ticket) (*models.Ticket, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}
func (f *fakeTicketsRepo) Delete(ctx context.Context, id int64) error { return f.deleteErr }
func (f *fakeTicketsRepo) DeleteByOwner(ctx context.Context, ownerID int64) error {
	f.deletedOwner = ownerID
	return f.deleteByOwnerErr
}
func (f *fakeTicketsRepo) AddAttachment(ctx context.Context, att *models.Attachment) (*models.Attachment, error) {
	if f.addAttErr != nil {
		return nil, f.addAttErr
	}
	return f.addAttOut, nil
}
func (f *fakeTicketsRepo) GetAttachment(ctx context.Context, ticketID int64, key string) (*models.Attachment, error) {
	if f.getAttErr != nil {
		return nil, f.getAttErr
	}
	return f.getAttOut, nil
}

type fakeNotifier struct {
	created []int64
	updated []int64
	err     error
}

func (f *fakeNotifier) TicketCreated(ctx context.Context, tk *models.Ticket, owner *models.User) error {
	f.created = append(f.created, tk.ID)
	return f.err
}
func (f *fakeNotifier) TicketUpdated(ctx context.Context, tk *models.Ticket, owner *models.User) error {
	f.updated = append(f.updated, tk.ID)
	return f.err
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTicketService(t *testing.T, rm repomanager.RepositoryManager, n *fakeNotifier) *TicketService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	cfg := &config.Config{
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3Bucket:       "attachments",
		S3Region:       "us-east-1",
		S3BaseEndpoint: "http://127.0.0.1:9000",
	}
	return NewTicketService(db, rm, n, discardLogger(), cfg)
}

func TestCreateTicket_NotifiesAdmin(t *testing.T) {
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byIDOut: &models.User{ID: 1, Email: "owner@example.com"}},
		t: &fakeTicketsRepo{createOut: &models.Ticket{ID: 10, UserID: 1, Title: "printer on fire"}},
	}
	n := &fakeNotifier{}
	s := newTicketService(t, rm, n)

	tk, err := s.Create(context.Background(), 1, TicketInput{
		Title:       "printer on fire",
		Description: "smoke everywhere",
		Status:      models.StatusOpen,
		Priority:    models.PriorityHigh,
		Category:    "hardware",
	})
	if err != nil || tk.ID != 10 {
		t.Fatalf("Create: got (%v, %v)", tk, err)
	}
	if len(n.created) != 1 || n.created[0] != 10 {
		t.Fatalf("expected created notification for ticket 10, got %v", n.created)
	}
}

func TestCreateTicket_NotificationFailureDoesNotFail(t *testing.T) {
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byIDOut: &models.User{ID: 1, Email: "owner@example.com"}},
		t: &fakeTicketsRepo{createOut: &models.Ticket{ID: 11, UserID: 1}},
	}
	n := &fakeNotifier{err: errBoom{}}
	s := newTicketService(t, rm, n)

	if _, err := s.Create(context.Background(), 1, TicketInput{Title: "t"}); err != nil {
		t.Fatalf("Create should ignore notifier errors, got %v", err)
	}
}

func TestCreateTicket_RepoError(t *testing.T) {
	rm := &fakeRepoManager{t: &fakeTicketsRepo{createErr: errBoom{}}}
	s := newTicketService(t, rm, &fakeNotifier{})

	_, err := s.Create(context.Background(), 1, TicketInput{Title: "t"})
	if err == nil || !strings.Contains(err.Error(), "error creating ticket") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestUpdateTicket_NotifiesOwner(t *testing.T) {
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byIDOut: &models.User{ID: 1, Email: "owner@example.com"}},
		t: &fakeTicketsRepo{updateOut: &models.Ticket{ID: 12, UserID: 1, Status: models.StatusInProgress}},
	}
	n := &fakeNotifier{}
	s := newTicketService(t, rm, n)

	tk, err := s.Update(context.Background(), 12, 1, TicketInput{Title: "t", Status: models.StatusInProgress})
	if err != nil || tk.Status != models.StatusInProgress {
		t.Fatalf("Update: got (%v, %v)", tk, err)
	}
	if len(n.updated) != 1 || n.updated[0] != 12 {
		t.Fatalf("expected updated notification for ticket 12, got %v", n.updated)
	}
}

func TestResolveTicket(t *testing.T) {
	techID := int64(3)
	title := "replaced toner"
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byIDOut: &models.User{ID: 1, Email: "owner@example.com"}},
		t: &fakeTicketsRepo{updateOut: &models.Ticket{
			ID: 13, UserID: 1, Status: models.StatusClosed,
			TechID: &techID, TitleSolution: &title,
		}},
	}
	n := &fakeNotifier{}
	s := newTicketService(t, rm, n)

	tk, err := s.Resolve(context.Background(), 13, SolutionInput{
		TechID:        3,
		Status:        models.StatusClosed,
		Priority:      models.PriorityLow,
		TitleSolution: "replaced toner",
		DateSolution:  time.Now(),
	})
	if err != nil || tk.Status != models.StatusClosed {
		t.Fatalf("Resolve: got (%v, %v)", tk, err)
	}
	if len(n.updated) != 1 {
		t.Fatalf("expected owner notification, got %v", n.updated)
	}
}

func TestResolveTicket_NotFound(t *testing.T) {
	rm := &fakeRepoManager{t: &fakeTicketsRepo{updateErr: common.ErrorNotFound}}
	s := newTicketService(t, rm, &fakeNotifier{})

	if _, err := s.Resolve(context.Background(), 999, SolutionInput{TechID: 3}); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestListGetDeleteTicket(t *testing.T) {
	rm := &fakeRepoManager{t: &fakeTicketsRepo{
		listOut:   []*models.Ticket{{ID: 1}, {ID: 2}},
		byIDOut:   &models.Ticket{ID: 2},
		deleteErr: nil,
	}}
	s := newTicketService(t, rm, &fakeNotifier{})

	list, err := s.List(context.Background(), auth.Scope{OwnerID: 1})
	if err != nil || len(list) != 2 {
		t.Fatalf("List: got (%v, %v)", list, err)
	}
	tk, err := s.Get(context.Background(), 2)
	if err != nil || tk.ID != 2 {
		t.Fatalf("Get: got (%v, %v)", tk, err)
	}
	if err := s.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

// --- presign ---

func TestRandomStorageKey(t *testing.T) {
	k1 := randomStorageKey(7)
	k2 := randomStorageKey(7)
	if !strings.HasPrefix(k1, "tickets/7/") {
		t.Fatalf("unexpected key prefix: %q", k1)
	}
	if k1 == k2 {
		t.Fatalf("keys should be unique: %q", k1)
	}
}

func TestGetPresignClient_SuccessAndError(t *testing.T) {
	s := newTicketService(t, &fakeRepoManager{t: &fakeTicketsRepo{}}, &fakeNotifier{})

	origLoad := loadDefaultAWSConfig
	origNewClient := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	defer func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewClient
		newS3PresignClient = origNewPre
	}()

	var capturedBaseEndpoint string
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		opts := &s3.Options{}
		for _, fn := range optFns {
			fn(opts)
		}
		if opts.BaseEndpoint == nil {
			t.Fatalf("BaseEndpoint not set")
		}
		capturedBaseEndpoint = *opts.BaseEndpoint
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}

	pc, err := s.getPresignClient()
	if err != nil {
		t.Fatalf("getPresignClient err: %v", err)
	}
	if pc == nil {
		t.Fatalf("nil presign client")
	}
	if capturedBaseEndpoint != "http://127.0.0.1:9000" {
		t.Fatalf("BaseEndpoint mismatch: %q", capturedBaseEndpoint)
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errBoom{}
	}
	if _, err := s.getPresignClient(); err == nil {
		t.Fatalf("expected config load error")
	}
}

func TestPresignAttachmentUpload(t *testing.T) {
	rm := &fakeRepoManager{t: &fakeTicketsRepo{
		addAttOut: &models.Attachment{ID: 1, TicketID: 7, FileName: "log.txt"},
	}}
	s := newTicketService(t, rm, &fakeNotifier{})

	origPut := presignPutObject
	defer func() { presignPutObject = origPut }()
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://signed/put/" + *in.Key}, nil
	}

	key, url, err := s.PresignAttachmentUpload(context.Background(), 7, "log.txt")
	if err != nil {
		t.Fatalf("PresignAttachmentUpload: %v", err)
	}
	if !strings.HasPrefix(key, "tickets/7/") {
		t.Fatalf("unexpected key: %q", key)
	}
	if !strings.HasPrefix(url, "http://signed/put/") {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestPresignAttachmentUpload_RepoError(t *testing.T) {
	rm := &fakeRepoManager{t: &fakeTicketsRepo{addAttErr: errBoom{}}}
	s := newTicketService(t, rm, &fakeNotifier{})

	origPut := presignPutObject
	defer func() { presignPutObject = origPut }()
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://signed"}, nil
	}

	if _, _, err := s.PresignAttachmentUpload(context.Background(), 7, "log.txt"); err == nil {
		t.Fatalf("expected attachment insert error")
	}
}

func TestPresignAttachmentDownload(t *testing.T) {
	rm := &fakeRepoManager{t: &fakeTicketsRepo{
		getAttOut: &models.Attachment{ID: 1, TicketID: 7, Key: "tickets/7/2026/8/abc", FileName: "log.txt"},
	}}
	s := newTicketService(t, rm, &fakeNotifier{})

	origGet := presignGetObject
	defer func() { presignGetObject = origGet }()
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://signed/get/" + *in.Key}, nil
	}

	url, err := s.PresignAttachmentDownload(context.Background(), 7, "tickets/7/2026/8/abc")
	if err != nil {
		t.Fatalf("PresignAttachmentDownload: %v", err)
	}
	if url != "http://signed/get/tickets/7/2026/8/abc" {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestPresignAttachmentDownload_UnknownKey(t *testing.T) {
	rm := &fakeRepoManager{t: &fakeTicketsRepo{getAttErr: common.ErrorNotFound}}
	s := newTicketService(t, rm, &fakeNotifier{})

	if _, err := s.PresignAttachmentDownload(context.Background(), 7, "nope"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

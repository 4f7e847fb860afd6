// Package httpapi exposes the helpdesk over HTTP. It owns route registration,
// bearer-token extraction, and the mapping of service errors to status codes.
package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/dmitrijs2005/helpdesk/internal/logging"
	"github.com/dmitrijs2005/helpdesk/internal/server/auth"
	"github.com/dmitrijs2005/helpdesk/internal/server/models"
	"github.com/dmitrijs2005/helpdesk/internal/server/services"
)

// UserProvider is the account collaborator the transport layer needs.
type UserProvider interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, scope auth.Scope) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id int64, fullName, phone string) (*models.User, error)
	ChangeRole(ctx context.Context, id int64, role models.Role) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	HashPassword(password string) (string, error)
}

// TicketProvider is the ticket collaborator the transport layer needs.
type TicketProvider interface {
	Create(ctx context.Context, ownerID int64, input services.TicketInput) (*models.Ticket, error)
	List(ctx context.Context, scope auth.Scope) ([]*models.Ticket, error)
	Get(ctx context.Context, id int64) (*models.Ticket, error)
	Update(ctx context.Context, id int64, ownerID int64, input services.TicketInput) (*models.Ticket, error)
	Resolve(ctx context.Context, id int64, input services.SolutionInput) (*models.Ticket, error)
	Delete(ctx context.Context, id int64) error
	PresignAttachmentUpload(ctx context.Context, ticketID int64, fileName string) (string, string, error)
	PresignAttachmentDownload(ctx context.Context, ticketID int64, key string) (string, error)
}

type Server struct {
	app     *fiber.App
	address string
	users   UserProvider
	tickets TicketProvider
	authz   *auth.Authorizer
	logger  logging.Logger
}

func NewServer(address string, l logging.Logger, users UserProvider, tickets TicketProvider, authz *auth.Authorizer) *Server {
	s := &Server{
		app:     fiber.New(),
		address: address,
		users:   users,
		tickets: tickets,
		authz:   authz,
		logger:  l.With("module", "http_server"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	authGroup := s.app.Group("/auth")
	authGroup.Post("/register", s.handleRegister)
	authGroup.Post("/token", s.handleToken)
	authGroup.Get("/me", s.handleMe)
	authGroup.Post("/manualphash", s.handleManualPHash)

	s.app.Get("/users/", s.handleListUsers)
	s.app.Get("/profiles/:id", s.handleGetProfile)
	s.app.Put("/profiles/:id", s.handleUpdateProfile)
	s.app.Put("/users/:id/role", s.handleChangeRole)
	s.app.Delete("/users/:id", s.handleDeleteUser)

	tickets := s.app.Group("/tickets")
	tickets.Post("/", s.handleCreateTicket)
	tickets.Get("/", s.handleListTickets)
	tickets.Get("/:id", s.handleGetTicket)
	tickets.Put("/:id", s.handleUpdateTicket)
	tickets.Put("/:id/solution", s.handleResolveTicket)
	tickets.Delete("/:id", s.handleDeleteTicket)
	tickets.Post("/:id/attachments", s.handlePresignUpload)
	tickets.Get("/:id/attachments/*", s.handlePresignDownload)
}

// Run starts the listener and shuts it down when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithContext(context.Background()); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listen(s.address)
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/dmitrijs2005/helpdesk/internal/server/models"
	"github.com/dmitrijs2005/helpdesk/internal/server/services"
)

type ticketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

func (r *ticketRequest) toInput() (services.TicketInput, error) {
	if n := len(r.Title); n < 5 || n > 25 {
		return services.TicketInput{}, validationError("title must be 5 to 25 characters")
	}
	if n := len(r.Description); n < 5 || n > 50 {
		return services.TicketInput{}, validationError("description must be 5 to 50 characters")
	}

	status := models.StatusOpen
	if r.Status != "" {
		var err error
		if status, err = models.ParseTicketStatus(r.Status); err != nil {
			return services.TicketInput{}, validationError("unknown status")
		}
	}
	priority := models.PriorityMedium
	if r.Priority != "" {
		var err error
		if priority, err = models.ParseTicketPriority(r.Priority); err != nil {
			return services.TicketInput{}, validationError("unknown priority")
		}
	}

	return services.TicketInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      status,
		Priority:    priority,
		Category:    r.Category,
	}, nil
}

type ticketResponse struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	Category        string     `json:"category"`
	TechID          *int64     `json:"tech_id,omitempty"`
	TitleSolution   *string    `json:"title_solution,omitempty"`
	TechDescription *string    `json:"tech_description,omitempty"`
	DateSolution    *time.Time `json:"date_solution,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toTicketResponse(t *models.Ticket) ticketResponse {
	return ticketResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          string(t.Status),
		Priority:        string(t.Priority),
		Category:        t.Category,
		TechID:          t.TechID,
		TitleSolution:   t.TitleSolution,
		TechDescription: t.TechDescription,
		DateSolution:    t.DateSolution,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// handleCreateTicket files a ticket. Filing is a user-role operation — staff
// accounts work tickets, they do not open them — and the owner is always the
// token subject; a caller cannot file tickets on behalf of another account.
func (s *Server) handleCreateTicket(c fiber.Ctx) error {
	claims, err := s.authorize(c, models.RoleUser)
	if err != nil {
		return s.respondError(c, err)
	}

	var req ticketRequest
	if err := c.Bind().Body(&req); err != nil {
		return s.respondError(c, validationError("invalid request body"))
	}
	input, err := req.toInput()
	if err != nil {
		return s.respondError(c, err)
	}

	t, err := s.tickets.Create(c.Context(), claims.UserID, input)
	if err != nil {
		return s.respondError(c, err)
	}

	s.logger.Info(c.Context(), "ticket created", "ticket_id", t.ID, "user_id", t.UserID)
	return c.Status(http.StatusCreated).JSON(toTicketResponse(t))
}

func (s *Server) handleListTickets(c fiber.Ctx) error {
	claims, err := s.authorize(c)
	if err != nil {
		return s.respondError(c, err)
	}

	list, err := s.tickets.List(c.Context(), s.authz.Scope(claims))
	if err != nil {
		return s.respondError(c, err)
	}

	resp := make([]ticketResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, toTicketResponse(t))
	}
	return c.JSON(resp)
}

func (s *Server) handleGetTicket(c fiber.Ctx) error {
	claims, err := s.authorize(c)
	if err != nil {
		return s.respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	t, err := s.tickets.Get(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.authz.AuthorizeOwner(claims, t.UserID); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(toTicketResponse(t))
}

func (s *Server) handleUpdateTicket(c fiber.Ctx) error {
	if _, err := s.authorize(c, models.RoleAdmin); err != nil {
		return s.respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	var req ticketRequest
	if err := c.Bind().Body(&req); err != nil {
		return s.respondError(c, validationError("invalid request body"))
	}
	input, err := req.toInput()
	if err != nil {
		return s.respondError(c, err)
	}

	// Ownership never changes on update.
	existing, err := s.tickets.Get(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	t, err := s.tickets.Update(c.Context(), id, existing.UserID, input)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(toTicketResponse(t))
}

type solutionRequest struct {
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	Category        string     `json:"category"`
	TitleSolution   string     `json:"title_solution"`
	TechDescription string     `json:"tech_description"`
	DateSolution    *time.Time `json:"date_solution"`
}

// handleResolveTicket records the technician solution. The technician id is
// taken from the token, not the body.
func (s *Server) handleResolveTicket(c fiber.Ctx) error {
	claims, err := s.authorize(c, models.RoleAdmin)
	if err != nil {
		return s.respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	var req solutionRequest
	if err := c.Bind().Body(&req); err != nil {
		return s.respondError(c, validationError("invalid request body"))
	}
	if req.TitleSolution == "" {
		return s.respondError(c, validationError("title_solution is required"))
	}

	status := models.StatusClosed
	if req.Status != "" {
		if status, err = models.ParseTicketStatus(req.Status); err != nil {
			return s.respondError(c, validationError("unknown status"))
		}
	}
	priority := models.PriorityMedium
	if req.Priority != "" {
		if priority, err = models.ParseTicketPriority(req.Priority); err != nil {
			return s.respondError(c, validationError("unknown priority"))
		}
	}
	resolvedAt := time.Now()
	if req.DateSolution != nil {
		resolvedAt = *req.DateSolution
	}

	t, err := s.tickets.Resolve(c.Context(), id, services.SolutionInput{
		TechID:          claims.UserID,
		Status:          status,
		Priority:        priority,
		Category:        req.Category,
		TitleSolution:   req.TitleSolution,
		TechDescription: req.TechDescription,
		DateSolution:    resolvedAt,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(toTicketResponse(t))
}

func (s *Server) handleDeleteTicket(c fiber.Ctx) error {
	if _, err := s.authorize(c, models.RoleAdmin); err != nil {
		return s.respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.tickets.Delete(c.Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

type attachmentRequest struct {
	FileName string `json:"filename"`
}

type attachmentResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

func (s *Server) handlePresignUpload(c fiber.Ctx) error {
	claims, err := s.authorize(c)
	if err != nil {
		return s.respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	t, err := s.tickets.Get(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.authz.AuthorizeOwner(claims, t.UserID); err != nil {
		return s.respondError(c, err)
	}

	var req attachmentRequest
	if err := c.Bind().Body(&req); err != nil {
		return s.respondError(c, validationError("invalid request body"))
	}
	if req.FileName == "" {
		return s.respondError(c, validationError("filename is required"))
	}

	key, url, err := s.tickets.PresignAttachmentUpload(c.Context(), id, req.FileName)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(attachmentResponse{Key: key, UploadURL: url})
}

func (s *Server) handlePresignDownload(c fiber.Ctx) error {
	claims, err := s.authorize(c)
	if err != nil {
		return s.respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	t, err := s.tickets.Get(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.authz.AuthorizeOwner(claims, t.UserID); err != nil {
		return s.respondError(c, err)
	}

	key := c.Params("*")
	if key == "" {
		return s.respondError(c, validationError("attachment key is required"))
	}

	url, err := s.tickets.PresignAttachmentDownload(c.Context(), id, key)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"download_url": url})
}

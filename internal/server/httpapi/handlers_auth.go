package httpapi

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/dmitrijs2005/helpdesk/internal/server/models"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Rol      string `json:"rol"`
	FullName string `json:"fullname"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		Rol:      string(u.Rol),
		FullName: u.FullName,
		Phone:    u.Phone,
		IsActive: u.IsActive,
	}
}

func (s *Server) handleRegister(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return s.respondError(c, validationError("invalid request body"))
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return s.respondError(c, validationError("a valid email is required"))
	}
	if len(req.Password) < 6 {
		return s.respondError(c, validationError("password must be at least 6 characters"))
	}

	u, err := s.users.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	s.logger.Info(c.Context(), "account registered", "user_id", u.ID)
	return c.Status(http.StatusCreated).JSON(toUserResponse(u))
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) handleToken(c fiber.Ctx) error {
	var req tokenRequest
	if err := c.Bind().Body(&req); err != nil {
		return s.respondError(c, validationError("invalid request body"))
	}

	token, err := s.users.Login(c.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// handleMe returns the live profile behind a verified token.
func (s *Server) handleMe(c fiber.Ctx) error {
	claims, err := s.authorize(c)
	if err != nil {
		return s.respondError(c, err)
	}

	u, err := s.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(toUserResponse(u))
}

type manualPHashRequest struct {
	Password string `json:"password"`
}

// handleManualPHash is an administrative utility returning the digest for a
// given plaintext, e.g. for seeding accounts by hand.
func (s *Server) handleManualPHash(c fiber.Ctx) error {
	if _, err := s.authorize(c, models.RoleAdmin); err != nil {
		return s.respondError(c, err)
	}

	var req manualPHashRequest
	if err := c.Bind().Body(&req); err != nil {
		return s.respondError(c, validationError("invalid request body"))
	}
	if req.Password == "" {
		return s.respondError(c, validationError("password is required"))
	}

	digest, err := s.users.HashPassword(req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"hash": digest})
}

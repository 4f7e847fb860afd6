package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/dmitrijs2005/helpdesk/internal/server/models"
)

func paramID(c fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, validationError("invalid id")
	}
	return id, nil
}

func (s *Server) handleListUsers(c fiber.Ctx) error {
	claims, err := s.authorize(c)
	if err != nil {
		return s.respondError(c, err)
	}

	list, err := s.users.List(c.Context(), s.authz.Scope(claims))
	if err != nil {
		return s.respondError(c, err)
	}

	resp := make([]userResponse, 0, len(list))
	for _, u := range list {
		resp = append(resp, toUserResponse(u))
	}
	return c.JSON(resp)
}

func (s *Server) handleGetProfile(c fiber.Ctx) error {
	claims, err := s.authorize(c)
	if err != nil {
		return s.respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.authz.AuthorizeOwner(claims, id); err != nil {
		return s.respondError(c, err)
	}

	u, err := s.users.GetByID(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(toUserResponse(u))
}

type profileUpdateRequest struct {
	FullName string `json:"fullname"`
	Phone    string `json:"phone"`
}

func (s *Server) handleUpdateProfile(c fiber.Ctx) error {
	claims, err := s.authorize(c)
	if err != nil {
		return s.respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.authz.AuthorizeOwner(claims, id); err != nil {
		return s.respondError(c, err)
	}

	var req profileUpdateRequest
	if err := c.Bind().Body(&req); err != nil {
		return s.respondError(c, validationError("invalid request body"))
	}

	u, err := s.users.UpdateProfile(c.Context(), id, req.FullName, req.Phone)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(toUserResponse(u))
}

type roleChangeRequest struct {
	Rol string `json:"rol"`
}

func (s *Server) handleChangeRole(c fiber.Ctx) error {
	if _, err := s.authorize(c, models.RoleAdmin); err != nil {
		return s.respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	var req roleChangeRequest
	if err := c.Bind().Body(&req); err != nil {
		return s.respondError(c, validationError("invalid request body"))
	}
	role, err := models.ParseRole(req.Rol)
	if err != nil {
		return s.respondError(c, validationError("unknown role"))
	}

	u, err := s.users.ChangeRole(c.Context(), id, role)
	if err != nil {
		return s.respondError(c, err)
	}

	s.logger.Info(c.Context(), "role changed", "user_id", id, "rol", string(role))
	return c.JSON(toUserResponse(u))
}

func (s *Server) handleDeleteUser(c fiber.Ctx) error {
	if _, err := s.authorize(c, models.RoleAdmin); err != nil {
		return s.respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.users.Delete(c.Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

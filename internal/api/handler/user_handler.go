package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/loan-system/internal/core/domain"
	"github.com/biblioteca/loan-system/internal/core/ports"
)

// UserHandler exposes the borrower directory.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ListStudents handles GET /api/users/list.
//
// @Summary      List borrowers
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usersResponse
// @Failure      403  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/users/list [get]
func (h *UserHandler) ListStudents(c echo.Context) error {
	users, err := h.service.ListByRole(c.Request().Context(), domain.RoleStudent)
	if err != nil {
		return err
	}

	out := make([]*domain.Borrower, 0, len(users))
	for _, u := range users {
		out = append(out, u.AsBorrower())
	}
	return c.JSON(http.StatusOK, usersResponse{Success: true, Users: out})
}

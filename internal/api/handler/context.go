package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// role means the middleware did not run; a student without a user id holds a
// token that cannot be scoped to any loans.
func ctxClaims(c echo.Context) (role, userID string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ = c.Get("user_id").(string)
	if role == domain.RoleStudent && userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}

	return role, userID, nil
}

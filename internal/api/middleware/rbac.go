package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// RBAC lets a request through only when the role Auth stored on the context
// is one of allowedRoles. A missing or unknown role is refused with 403: the
// token was already accepted, the caller just may not do this.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}
	denied := "requires role " + strings.Join(allowedRoles, " or ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, denied)
			}
			return next(c)
		}
	}
}

// AdminOnly guards the catalog and ledger writes (book create, update and
// delete, loan issue and return) and the student listing. Students keep
// read access to books and their own loans.
func AdminOnly() echo.MiddlewareFunc {
	return RBAC(domain.RoleAdmin)
}

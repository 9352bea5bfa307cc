package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

// RequireRole admits only users whose role equals role exactly. There is no
// role hierarchy.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return unauthenticated(c, domain.ErrUnauthenticated)
			}
			if user.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error()).SetInternal(domain.ErrForbidden)
			}
			return next(c)
		}
	}
}

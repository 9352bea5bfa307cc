package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

const userKey = "user"

// Authenticator resolves an access token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// Authenticate validates the bearer token and stores the resolved user in the
// request context. Every failure yields the same 401.
func Authenticate(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthenticated(c, domain.ErrUnauthenticated)
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return unauthenticated(c, err)
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

// RequireActive rejects users whose account has been deactivated.
func RequireActive() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return unauthenticated(c, domain.ErrUnauthenticated)
			}
			if !user.IsActive {
				return echo.NewHTTPError(http.StatusBadRequest, domain.ErrInactiveUser.Error()).SetInternal(domain.ErrInactiveUser)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userKey).(*domain.User)
	return user, ok && user != nil
}

// SetUser stores user as the authenticated caller.
func SetUser(c echo.Context, user *domain.User) {
	c.Set(userKey, user)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthenticated(c echo.Context, cause error) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error()).SetInternal(cause)
}

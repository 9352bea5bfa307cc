package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fpa-intel/fpa-api/internal/api/middleware"
	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

// caller returns the user injected by the Authenticate middleware. Reaching a
// handler without one means the route was registered without the middleware.
func caller(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}
	return user, nil
}

// bindAndValidate decodes the request into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	return c.Validate(req)
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders {"error": "<message>"}, plus "fields" for validation errors.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields}
	}

	// Echo's own errors (bind failures, router 404/405, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnexpected(log, c, err)
		}
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials):
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}
		return http.StatusUnauthorized, errorResponse{Error: rootMessage(err)}

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: domain.ErrForbidden.Error()}

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAnalysisNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound, errorResponse{Error: rootMessage(err)}

	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrIncorrectPassword),
		errors.Is(err, domain.ErrSelfDelete),
		errors.Is(err, domain.ErrInactiveUser),
		errors.Is(err, domain.ErrAnalysesNotOwned),
		errors.Is(err, domain.ErrQuestionsNotOwned),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrFileTypeNotAllowed),
		errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	}

	logUnexpected(log, c, err)
	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

// rootMessage returns the message of the known sentinel err wraps, so
// wrapping context never reaches the client.
func rootMessage(err error) string {
	for _, known := range []error{
		domain.ErrUnauthenticated,
		domain.ErrInvalidCredentials,
		domain.ErrUserNotFound,
		domain.ErrAnalysisNotFound,
		domain.ErrQuestionNotFound,
		domain.ErrFileNotFound,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}

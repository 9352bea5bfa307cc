package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fpa-intel/fpa-api/internal/api/middleware"
	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

var testCaller = &domain.User{ID: "user-1", Username: "alice", Role: domain.RoleAnalyst, IsActive: true}

// newTestContext builds an echo context with the validator installed. A
// non-empty body is sent as JSON.
func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asCaller(c echo.Context, user *domain.User) echo.Context {
	middleware.SetUser(c, user)
	return c
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
	return resp
}

// requireFields asserts err is a ValidationError naming every field.
func requireFields(t *testing.T, err error, fields ...string) {
	t.Helper()
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, f := range fields {
		if _, ok := verr.Fields[f]; !ok {
			t.Fatalf("expected field %q in %v", f, verr.Fields)
		}
	}
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d", code, he.Code)
	}
}


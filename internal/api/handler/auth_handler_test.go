package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn          func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	refreshFn        func(ctx context.Context, refreshToken string) (*ports.TokenPair, error)
	changePasswordFn func(ctx context.Context, userID, current, next string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	return s.changePasswordFn(ctx, userID, current, next)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUnauthenticated
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.FullName != "Alice Smith" || in.Role != "" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Username: in.Username, Email: in.Email, Role: domain.RoleAnalyst, PasswordHash: "hash"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/register",
		`{"username":"alice","email":"alice@example.com","full_name":"Alice Smith","password":"password123"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	if resp["username"] != "alice" || resp["role"] != domain.RoleAnalyst {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if _, leaked := resp["hashed_password"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register",
		`{"username":"al","email":"not-an-email","full_name":"Al","password":"short","role":"owner"}`)
	err := handler.Register(c)
	requireFields(t, err, "username", "email", "password", "role")
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register", "not-json")
	requireStatus(t, handler.Register(c), http.StatusBadRequest)
}

func TestAuthHandler_Register_ServiceError(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register",
		`{"username":"alice","email":"alice@example.com","full_name":"Alice","password":"password123"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginResult{
				Tokens: ports.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "bearer"},
				User:   &domain.User{ID: "u1", Username: "alice"},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/login", `{"email":"alice@example.com","password":"secret"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	if resp["access_token"] != "access" || resp["refresh_token"] != "refresh" || resp["token_type"] != "bearer" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("expected user in response, got %+v", resp["user"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/login", `{"email":"alice@example.com","password":"wrong"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
			if refreshToken != "r1" {
				t.Fatalf("unexpected token %q", refreshToken)
			}
			return &ports.TokenPair{AccessToken: "a2", RefreshToken: "r2", TokenType: "bearer"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"r1"}`)
	if err := handler.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["access_token"] != "a2" || resp["refresh_token"] != "r2" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}

	c, _ = newTestContext(http.MethodPost, "/api/v1/auth/refresh", `{}`)
	requireFields(t, handler.Refresh(c), "refresh_token")
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	var gotUser string
	stub := &stubAuthService{
		changePasswordFn: func(ctx context.Context, userID, current, next string) error {
			gotUser = userID
			if current != "password123" || next != "newpassword1" {
				t.Fatalf("unexpected passwords: %s %s", current, next)
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/change-password",
		`{"current_password":"password123","new_password":"newpassword1"}`)
	if err := handler.ChangePassword(asCaller(c, testCaller)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotUser != testCaller.ID {
		t.Fatalf("expected caller id, got %q", gotUser)
	}
	if resp := decodeBody(t, rec); resp["message"] != "Password changed successfully" {
		t.Fatalf("unexpected message: %+v", resp)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodGet, "/api/v1/auth/me", "")
	requireStatus(t, handler.Me(c), http.StatusUnauthorized)

	c, rec := newTestContext(http.MethodGet, "/api/v1/auth/me", "")
	if err := handler.Me(asCaller(c, testCaller)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["id"] != testCaller.ID {
		t.Fatalf("unexpected user: %+v", resp)
	}
}

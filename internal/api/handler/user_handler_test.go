package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

type stubUserService struct {
	ports.UserService
	lastList ports.ListUsersInput
	deleteFn func(id, actorID string) error
	updateFn func(id string, in ports.UpdateUserInput) (*domain.User, error)
}

func (s *stubUserService) List(_ context.Context, in ports.ListUsersInput) (*ports.PageResult[*domain.User], error) {
	s.lastList = in
	return &ports.PageResult[*domain.User]{Items: []*domain.User{{ID: "u1"}}, Total: 1, Page: 1, Size: 10, Pages: 1}, nil
}

func (s *stubUserService) Update(_ context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(id, in)
}

func (s *stubUserService) Delete(_ context.Context, id, actorID string) error {
	return s.deleteFn(id, actorID)
}

func TestUserHandler_List_Filters(t *testing.T) {
	stub := &stubUserService{}
	handler := NewUserHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/v1/users?role=analyst&is_active=false&search=bob", "")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	in := stub.lastList
	if in.Role != domain.RoleAnalyst || in.Search != "bob" || in.IsActive == nil || *in.IsActive {
		t.Fatalf("unexpected list input: %+v", in)
	}
	if resp := decodeBody(t, rec); resp["total"] != float64(1) {
		t.Fatalf("unexpected envelope: %+v", resp)
	}

	c, _ = newTestContext(http.MethodGet, "/api/v1/users?is_active=maybe", "")
	requireFields(t, handler.List(c), "is_active")

	c, _ = newTestContext(http.MethodGet, "/api/v1/users?role=owner", "")
	requireFields(t, handler.List(c), "role")
}

func TestUserHandler_Update(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(id string, in ports.UpdateUserInput) (*domain.User, error) {
			if in.IsActive == nil || *in.IsActive || in.Role == nil || *in.Role != domain.RoleViewer || in.Email != nil {
				t.Fatalf("unexpected update: %+v", in)
			}
			return &domain.User{ID: id, Role: *in.Role}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newTestContext(http.MethodPut, "/api/v1/users/u2", `{"role":"viewer","is_active":false}`)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["role"] != domain.RoleViewer {
		t.Fatalf("unexpected user: %+v", resp)
	}
}

func TestUserHandler_Delete_UsesCaller(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(id, actorID string) error {
			if id == actorID {
				return domain.ErrSelfDelete
			}
			return nil
		},
	}
	handler := NewUserHandler(stub)
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}

	c, rec := newTestContext(http.MethodDelete, "/api/v1/users/u2", "")
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if err := handler.Delete(asCaller(c, admin)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["message"] != "User deleted successfully" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c, _ = newTestContext(http.MethodDelete, "/api/v1/users/admin-1", "")
	c.SetParamNames("id")
	c.SetParamValues(admin.ID)
	if err := handler.Delete(asCaller(c, admin)); !errors.Is(err, domain.ErrSelfDelete) {
		t.Fatalf("expected ErrSelfDelete, got %v", err)
	}
}

package ports

import (
	"context"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

// ListUsersInput carries the admin user listing query.
type ListUsersInput struct {
	Search   string
	Role     string
	IsActive *bool
	Page     int
	Size     int
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Username *string
	Email    *string
	FullName *string
	Role     *string
	IsActive *bool
}

// UserService is the admin-only user management surface.
type UserService interface {
	List(ctx context.Context, in ListUsersInput) (*PageResult[*domain.User], error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)
	// Delete removes the user and cascades to their analyses and questions.
	// actorID is the admin performing the call; self-deletion is refused.
	Delete(ctx context.Context, id, actorID string) error
}

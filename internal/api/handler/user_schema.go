package handler

import "github.com/fpa-intel/fpa-api/internal/core/domain"

type listUsersQuery struct {
	Pagination
	Search string `query:"search"`
	Role   string `query:"role" validate:"omitempty,oneof=admin analyst viewer"`
}

type updateUserRequest struct {
	Username *string `json:"username"  validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Role     *string `json:"role"      validate:"omitempty,oneof=admin analyst viewer"`
	IsActive *bool   `json:"is_active"`
}

type userListResponse struct {
	Users []*domain.User `json:"users"`
	listMeta
}

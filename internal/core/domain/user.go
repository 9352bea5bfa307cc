package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
	RoleViewer  = "viewer"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleAnalyst, RoleViewer:
		return true
	}
	return false
}

// User models an authenticated actor in the system.
type User struct {
	ID           string     `json:"id" bson:"_id"`
	Username     string     `json:"username" bson:"username"`
	Email        string     `json:"email" bson:"email"`
	FullName     string     `json:"full_name" bson:"full_name"`
	Role         string     `json:"role" bson:"role"`
	IsActive     bool       `json:"is_active" bson:"is_active"`
	PasswordHash string     `json:"-" bson:"hashed_password"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
}

package ports

import (
	"context"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     string
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// LoginResult is returned by AuthService.Login.
type LoginResult struct {
	Tokens TokenPair
	User   *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	// Authenticate resolves an access token to the user it was issued for.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

const minPasswordLength = 8

// AuthService implements registration, login and the token lifecycle.
type AuthService struct {
	users  ports.Collection[domain.User]
	tokens *TokenService
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuthService(users ports.Collection[domain.User], tokens *TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleAnalyst
	}

	verr := &domain.ValidationError{Fields: map[string]string{}}
	if l := len(in.Username); l < 3 || l > 50 {
		verr.Fields["username"] = "must be between 3 and 50 characters"
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		verr.Fields["email"] = "must be a valid email address"
	}
	if l := len(in.Password); l < minPasswordLength || l > 100 {
		verr.Fields["password"] = "must be between 8 and 100 characters"
	}
	switch {
	case !domain.ValidRole(in.Role):
		verr.Fields["role"] = "must be one of: admin, analyst, viewer"
	case in.Role == domain.RoleAdmin:
		verr.Fields["role"] = "admin accounts are provisioned by an administrator"
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	if err := ensureUniqueUser(ctx, s.users, in.Email, in.Username, ""); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		Role:         in.Role,
		IsActive:     true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, duplicateUser(ctx, s.users, user.Email, user.Username, "")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return user, nil
}

// Login checks credentials by email. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.FindOne(ctx, ports.Filter{Equals: map[string]any{"email": strings.TrimSpace(email)}})
	if err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	now := s.now().UTC()
	if err := s.users.UpdateOne(ctx, ports.ByID(user.ID), ports.Patch{Set: map[string]any{"last_login": now}}); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.LastLogin = &now

	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &ports.LoginResult{Tokens: pair, User: user}, nil
}

// Refresh exchanges a refresh token for a new pair. Refresh tokens are not
// revoked on use and stay valid until they expire.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.subject(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &pair, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.FindOne(ctx, ports.ByID(userID))
	if err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !VerifyPassword(current, user.PasswordHash) {
		return domain.ErrIncorrectPassword
	}
	if l := len(next); l < minPasswordLength || l > 100 {
		return domain.NewValidationError("new_password", "must be between 8 and 100 characters")
	}

	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	patch := ports.Patch{Set: map[string]any{"hashed_password": hash, "updated_at": s.now().UTC()}}
	if err := s.users.UpdateOne(ctx, ports.ByID(userID), patch); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

// Authenticate verifies an access token and loads its subject.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokens.Verify(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return s.subject(ctx, claims.Subject)
}

func (s *AuthService) subject(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindOne(ctx, ports.ByID(id))
	if err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ensureUniqueUser rejects email or username values already held by a user
// other than exceptID.
func ensureUniqueUser(ctx context.Context, users ports.Collection[domain.User], email, username, exceptID string) error {
	var notSelf map[string]any
	if exceptID != "" {
		notSelf = map[string]any{"_id": exceptID}
	}

	if email != "" {
		n, err := users.Count(ctx, ports.Filter{Equals: map[string]any{"email": email}, NotEqual: notSelf})
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			return domain.ErrEmailTaken
		}
	}
	if username != "" {
		n, err := users.Count(ctx, ports.Filter{Equals: map[string]any{"username": username}, NotEqual: notSelf})
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if n > 0 {
			return domain.ErrUsernameTaken
		}
	}
	return nil
}

// duplicateUser names the field behind a unique index violation that raced
// past ensureUniqueUser. A conflict that has since disappeared is reported as
// the email.
func duplicateUser(ctx context.Context, users ports.Collection[domain.User], email, username, exceptID string) error {
	if err := ensureUniqueUser(ctx, users, email, username, exceptID); err != nil {
		return err
	}
	return domain.ErrEmailTaken
}

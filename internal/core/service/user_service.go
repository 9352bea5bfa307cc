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

// UserService is the admin user management surface.
type UserService struct {
	store       ports.Store
	logger      zerolog.Logger
	maxPageSize int
	now         func() time.Time
}

func NewUserService(store ports.Store, maxPageSize int, logger zerolog.Logger) *UserService {
	return &UserService{store: store, logger: logger, maxPageSize: maxPageSize, now: time.Now}
}

func (s *UserService) List(ctx context.Context, in ports.ListUsersInput) (*ports.PageResult[*domain.User], error) {
	page, pageNo, size, err := pageWindow(in.Page, in.Size, s.maxPageSize)
	if err != nil {
		return nil, err
	}

	filter := ports.Filter{Equals: map[string]any{}}
	if in.Role != "" {
		if !domain.ValidRole(in.Role) {
			return nil, domain.NewValidationError("role", "must be one of: admin, analyst, viewer")
		}
		filter.Equals["role"] = in.Role
	}
	if in.IsActive != nil {
		filter.Equals["is_active"] = *in.IsActive
	}
	if term := strings.TrimSpace(in.Search); term != "" {
		filter.Search = &ports.Search{Term: term, Fields: []string{"username", "email", "full_name"}}
	}

	total, err := s.store.Users().Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	users, err := s.store.Users().FindMany(ctx, filter, &ports.Sort{Field: "created_at", Desc: true}, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ports.PageResult[*domain.User]{
		Items: users,
		Total: total,
		Page:  pageNo,
		Size:  size,
		Pages: pageCount(total, size),
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.store.Users().FindOne(ctx, ports.ByID(id))
	if err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	set := map[string]any{}
	var email, username string
	if in.Username != nil {
		username = strings.TrimSpace(*in.Username)
		if l := len(username); l < 3 || l > 50 {
			return nil, domain.NewValidationError("username", "must be between 3 and 50 characters")
		}
		set["username"] = username
	}
	if in.Email != nil {
		email = strings.TrimSpace(*in.Email)
		if !strings.Contains(email, "@") {
			return nil, domain.NewValidationError("email", "must be a valid email address")
		}
		set["email"] = email
	}
	if in.FullName != nil {
		set["full_name"] = *in.FullName
	}
	if in.Role != nil {
		if !domain.ValidRole(*in.Role) {
			return nil, domain.NewValidationError("role", "must be one of: admin, analyst, viewer")
		}
		set["role"] = *in.Role
	}
	if in.IsActive != nil {
		set["is_active"] = *in.IsActive
	}

	if err := ensureUniqueUser(ctx, s.store.Users(), email, username, id); err != nil {
		return nil, err
	}

	if len(set) > 0 {
		set["updated_at"] = s.now().UTC()
		if err := s.store.Users().UpdateOne(ctx, ports.ByID(id), ports.Patch{Set: set}); err != nil {
			if errors.Is(err, ports.ErrNoDocument) {
				return nil, domain.ErrUserNotFound
			}
			if errors.Is(err, ports.ErrDuplicate) {
				return nil, duplicateUser(ctx, s.store.Users(), email, username, id)
			}
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a user and every analysis and question they own. Files are
// left in place.
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return domain.ErrSelfDelete
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	owned := ports.Filter{Equals: map[string]any{"user_id": id}}
	questions, err := s.store.Questions().DeleteMany(ctx, owned)
	if err != nil {
		return fmt.Errorf("delete user questions: %w", err)
	}
	analyses, err := s.store.Analyses().DeleteMany(ctx, owned)
	if err != nil {
		return fmt.Errorf("delete user analyses: %w", err)
	}
	if err := s.store.Users().DeleteOne(ctx, ports.ByID(id)); err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info().
		Str("user_id", id).
		Str("deleted_by", actorID).
		Int64("analyses", analyses).
		Int64("questions", questions).
		Msg("user deleted")
	return nil
}

// CreateAdmin provisions an active administrator. Self-registration never
// grants the admin role, so this is the bootstrap path for the first one.
func (s *UserService) CreateAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

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
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	users := s.store.Users()
	if err := ensureUniqueUser(ctx, users, in.Email, in.Username, ""); err != nil {
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
		Role:         domain.RoleAdmin,
		IsActive:     true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := users.Insert(ctx, user); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, duplicateUser(ctx, users, user.Email, user.Username, "")
		}
		return nil, fmt.Errorf("insert admin: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("admin provisioned")
	return user, nil
}

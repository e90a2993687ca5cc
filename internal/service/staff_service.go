package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/itops-lab/helpdesk/internal/auth"
	"github.com/itops-lab/helpdesk/internal/config"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/repository"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

// StaffService manages admin console accounts.
type StaffService struct {
	users      repository.AdminUserRepository
	teams      repository.TeamRepository
	bcryptCost int
}

// StaffDependencies encapsulates repositories required for account management.
type StaffDependencies struct {
	AdminUserRepo repository.AdminUserRepository
	TeamRepo      repository.TeamRepository
}

// StaffInput is the editable part of an account. An empty Password keeps the
// current one on update.
type StaffInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.StaffRole
	TeamID   *string
	IsActive bool
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.AuthConfig, deps StaffDependencies) *StaffService {
	return &StaffService{
		users:      deps.AdminUserRepo,
		teams:      deps.TeamRepo,
		bcryptCost: cfg.BcryptCost,
	}
}

// List returns accounts matching the filter.
func (s *StaffService) List(ctx context.Context, filter repository.AdminUserFilter) ([]domain.AdminUser, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Get fetches one account.
func (s *StaffService) Get(ctx context.Context, id string) (*domain.AdminUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "admin user", map[string]any{"admin_user_id": id})
	}
	return user, nil
}

// Create adds an account.
func (s *StaffService) Create(ctx context.Context, input StaffInput) (*domain.AdminUser, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.AdminUser{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		Role:         input.Role,
		TeamID:       blankToNil(input.TeamID),
		IsActive:     input.IsActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapWriteError(err, "admin user")
	}
	return user, nil
}

// Update replaces an account. Admins cannot demote or disable themselves.
func (s *StaffService) Update(ctx context.Context, actor *domain.AdminUser, id string, input StaffInput) (*domain.AdminUser, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	if actor != nil && actor.ID == id && (input.Role != domain.StaffRoleAdmin || !input.IsActive) {
		return nil, apperrors.NewConflict("cannot demote or disable your own account", nil)
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Email = strings.TrimSpace(input.Email)
	user.Role = input.Role
	user.TeamID = blankToNil(input.TeamID)
	user.IsActive = input.IsActive
	if input.Password != "" {
		hash, err := s.hash(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapWriteError(err, "admin user")
	}
	return user, nil
}

// Delete removes an account other than the caller's own.
func (s *StaffService) Delete(ctx context.Context, actor *domain.AdminUser, id string) error {
	if actor != nil && actor.ID == id {
		return apperrors.NewConflict("cannot delete your own account", nil)
	}
	return mapWriteError(s.users.Delete(ctx, id), "admin user")
}

func (s *StaffService) validate(ctx context.Context, input StaffInput) error {
	if !input.Role.Valid() {
		return apperrors.NewValidationError("validation failed", map[string]any{"role": "role must be one of [ADMIN AGENT]"})
	}
	if teamID := blankToNil(input.TeamID); teamID != nil {
		if _, err := s.teams.GetByID(ctx, *teamID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewValidationError("team does not exist", map[string]any{"team_id": *teamID})
			}
			return apperrors.MapError(err)
		}
	}
	return nil
}

func (s *StaffService) hash(password string) (string, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if errors.Is(err, auth.ErrWeakPassword) {
		return "", apperrors.NewValidationError("validation failed", map[string]any{"password": err.Error()})
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}

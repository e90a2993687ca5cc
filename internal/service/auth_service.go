package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/itops-lab/helpdesk/internal/auth"
	"github.com/itops-lab/helpdesk/internal/config"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/repository"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

// AuthService coordinates admin login flows.
type AuthService struct {
	users      repository.AdminUserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	AdminUserRepo repository.AdminUserRepository
}

// LoginResult carries the issued token.
type LoginResult struct {
	User        *domain.AdminUser
	AccessToken string
	Token       domain.Token
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.AdminUserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Login authenticates an admin console user. Unknown email, wrong password
// and disabled accounts share one error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := apperrors.NewUnauthorized("invalid credentials")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invalid
		}
		return nil, apperrors.MapError(err)
	}
	if !user.IsActive {
		return nil, invalid
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, invalid
	}
	meta, token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{User: user, AccessToken: token, Token: meta}, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.NotFoundOr(err, "admin user", nil)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewValidationError("current password is incorrect", nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if errors.Is(err, auth.ErrWeakPassword) {
		return apperrors.NewValidationError("validation failed", map[string]any{"new_password": err.Error()})
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, user))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

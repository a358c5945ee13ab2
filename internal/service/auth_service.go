package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/process-raci/internal/auth"
	"github.com/spec-kit/process-raci/internal/config"
	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/repository"
	apperrors "github.com/spec-kit/process-raci/pkg/util/errorutil"
)

// AuthService coordinates registration, login and membership roles.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  *domain.User
	Token string
	Meta  domain.Token
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Register creates a member account. The first account of the organization
// becomes its OWNER; later ones start as VIEWER.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError(err, "user")
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, mapError(err, "user")
	}
	role := domain.MemberRoleViewer
	if count == 0 {
		role = domain.MemberRoleOwner
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapError(err, "user")
	}
	s.logger.Info("member registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return s.issue(user)
}

// Login authenticates a member.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, mapError(err, "user")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// SetRole changes the membership role of a user. Only owners may do this and
// an owner cannot demote themselves.
func (s *AuthService) SetRole(ctx context.Context, actor *domain.User, userID string, role domain.MemberRole) (*domain.User, error) {
	switch role {
	case domain.MemberRoleOwner, domain.MemberRoleEditor, domain.MemberRoleViewer:
	default:
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if actor == nil || actor.Role != domain.MemberRoleOwner {
		return nil, apperrors.NewForbidden("owner role required")
	}
	if actor.ID == userID && role != domain.MemberRoleOwner {
		return nil, apperrors.NewConflict("owners cannot demote themselves", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapError(err, "user")
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapError(err, "user")
	}
	s.logger.Info("member role changed", zap.String("user_id", user.ID), zap.String("role", string(role)), zap.String("actor_id", actor.ID))
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, meta, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, Meta: meta}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

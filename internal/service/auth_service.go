package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/venuepass/ticketing-service/internal/auth"
	"github.com/venuepass/ticketing-service/internal/config"
	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/internal/repository"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// AuthService registers and authenticates back-office operators.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// TokenManager exposes the session token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Register creates an operator account.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.UserRole) (*domain.User, error) {
	if name == "" || email == "" || len(password) < 8 {
		return nil, errorutil.NewValidationError("name, email and a password of at least 8 characters are required", nil)
	}
	if role == "" {
		role = domain.UserRoleOperator
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("operator registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login authenticates an operator and issues a session token. Bad email and
// bad password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, nil, errorutil.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, errorutil.NewUnauthorized("invalid credentials")
	}

	tokenStr, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return tokenStr, expiresAt, user, nil
}

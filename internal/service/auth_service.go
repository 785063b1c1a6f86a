package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/observability"
	"github.com/snic-labs/policy-api/internal/repository"
	"github.com/snic-labs/policy-api/internal/security"

	"gorm.io/gorm"
)

const LogoutReason = "User logout"

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,max=32"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	UserID    uint      `json:"user_id"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TokenStatus struct {
	IsValid       bool      `json:"is_valid"`
	IsBlacklisted bool      `json:"is_blacklisted"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	CheckedAt     time.Time `json:"checked_at"`
}

type AuthService struct {
	users          repository.UserRepository
	tokens         *TokenService
	blacklist      TokenRevoker
	unknown        UnknownUserCache
	logger         *slog.Logger
	now            func() time.Time
	allowSelfAdmin bool
}

type AuthOption func(*AuthService)

// WithSelfAdminRegistration lets public registration honour role "Admin".
// When disabled, such requests are registered as Customer.
func WithSelfAdminRegistration(allow bool) AuthOption {
	return func(s *AuthService) { s.allowSelfAdmin = allow }
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, blacklist TokenRevoker, unknown UnknownUserCache, logger *slog.Logger, opts ...AuthOption) *AuthService {
	if unknown == nil {
		unknown = NoopUnknownUserCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		unknown:   unknown,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		observability.RecordAuthRegister("error")
		return nil, fmt.Errorf("%w: check email: %w", ErrOperationFailed, err)
	}
	if taken {
		observability.RecordAuthRegister("conflict")
		return nil, ErrEmailTaken
	}
	taken, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		observability.RecordAuthRegister("error")
		return nil, fmt.Errorf("%w: check username: %w", ErrOperationFailed, err)
	}
	if taken {
		observability.RecordAuthRegister("conflict")
		return nil, ErrUsernameTaken
	}

	role := domain.ParseRole(in.Role)
	if role.IsAdmin() && !s.allowSelfAdmin {
		s.logger.WarnContext(ctx, "self-registration as admin is disabled, registering as customer", "username", username)
		role = domain.RoleCustomer
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		observability.RecordAuthRegister("error")
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		observability.RecordAuthRegister("error")
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: create user: %w", ErrOperationFailed, err)
	}
	if err := s.unknown.Forget(ctx, username); err != nil {
		s.logger.WarnContext(ctx, "unknown user cache forget failed", "error", err)
	}

	res, err := s.issue(user)
	if err != nil {
		observability.RecordAuthRegister("error")
		return nil, err
	}
	observability.RecordAuthRegister("success")
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)

	if hit, err := s.unknown.IsUnknown(ctx, username); err != nil {
		s.logger.WarnContext(ctx, "unknown user cache lookup failed", "error", err)
	} else if hit {
		observability.RecordAuthLogin("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			if cerr := s.unknown.MarkUnknown(ctx, username); cerr != nil {
				s.logger.WarnContext(ctx, "unknown user cache store failed", "error", cerr)
			}
			observability.RecordAuthLogin("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		observability.RecordAuthLogin("error")
		return nil, fmt.Errorf("%w: find user: %w", ErrOperationFailed, err)
	}
	if !security.VerifyPassword(user.PasswordHash, in.Password) {
		observability.RecordAuthLogin("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		observability.RecordAuthLogin("error")
		return nil, fmt.Errorf("%w: update last login: %w", ErrOperationFailed, err)
	}
	user.LastLoginAt = &now

	res, err := s.issue(user)
	if err != nil {
		observability.RecordAuthLogin("error")
		return nil, err
	}
	observability.RecordAuthLogin("success")
	return res, nil
}

func (s *AuthService) Logout(ctx context.Context, token string, userID uint) error {
	if err := s.blacklist.Revoke(ctx, token, userID, LogoutReason); err != nil {
		observability.RecordAuthLogout("error")
		return err
	}
	observability.RecordAuthLogout("success")
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %w", ErrOperationFailed, err)
	}
	return user, nil
}

// TokenStatus reports the revocation state of an already verified token.
func (s *AuthService) TokenStatus(ctx context.Context, token string, claims *security.Claims) (*TokenStatus, error) {
	if claims == nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	return &TokenStatus{
		IsValid:       !revoked,
		IsBlacklisted: revoked,
		UserID:        claims.Subject,
		Username:      claims.Username,
		Role:          claims.Role,
		CheckedAt:     s.now(),
	}, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	issued, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{
		UserID:    user.ID,
		Token:     issued.Token,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role.String(),
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

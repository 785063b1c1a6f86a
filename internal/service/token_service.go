package service

import (
	"time"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/security"
)

type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	Claims    *security.Claims
}

// TokenService mints session tokens. Issued tokens are not persisted; only
// revocations are.
type TokenService struct {
	jwtMgr *security.JWTManager
}

func NewTokenService(jwtMgr *security.JWTManager) *TokenService {
	return &TokenService{jwtMgr: jwtMgr}
}

func (s *TokenService) Issue(user *domain.User) (IssuedToken, error) {
	raw, claims, err := s.jwtMgr.Sign(security.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role.String(),
	})
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{
		Token:     raw,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		Claims:    claims,
	}, nil
}

// Verify checks signature, expiry, issuer and audience.
func (s *TokenService) Verify(raw string) (*security.Claims, error) {
	return s.jwtMgr.Parse(raw)
}

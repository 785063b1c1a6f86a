package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenValidity is the fixed lifetime of every session token.
const TokenValidity = 24 * time.Hour

var (
	ErrSigningKeyMissing = errors.New("jwt signing key is not configured")
	ErrInvalidSubject    = errors.New("invalid token subject")
)

// TokenConfig is captured once at construction; JWTManager never reads
// process-wide state.
type TokenConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id carried in the subject claim.
func (c *Claims) UserID() (uint, error) {
	if c == nil || c.Subject == "" {
		return 0, ErrInvalidSubject
	}
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidSubject
	}
	return uint(id), nil
}

type Subject struct {
	UserID   uint
	Username string
	Email    string
	Role     string
}

type JWTManager struct {
	issuer   string
	audience string
	key      []byte
	now      func() time.Time
}

func NewJWTManager(cfg TokenConfig) (*JWTManager, error) {
	if cfg.SigningKey == "" {
		return nil, ErrSigningKeyMissing
	}
	return &JWTManager{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		key:      []byte(cfg.SigningKey),
		now:      time.Now,
	}, nil
}

func (m *JWTManager) Sign(sub Subject) (string, *Claims, error) {
	return m.SignWithJTI(sub, uuid.NewString())
}

func (m *JWTManager) SignWithJTI(sub Subject, jti string) (string, *Claims, error) {
	if jti == "" {
		jti = uuid.NewString()
	}
	issuedAt := m.now().UTC().Truncate(time.Second)
	claims := &Claims{
		Username: sub.Username,
		Email:    sub.Email,
		Role:     sub.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", sub.UserID),
			Audience:  []string{m.audience},
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenValidity)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        jti,
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", nil, err
	}
	return raw, claims, nil
}

// Parse verifies signature, expiry, issuer and audience.
func (m *JWTManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing algorithm")
		}
		return m.key, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ParseUnverified decodes the claims without checking signature or expiry.
// Callers must not use the result for authentication decisions.
func ParseUnverified(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

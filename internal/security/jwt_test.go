package security

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSigningKey = "abcdefghijklmnopqrstuvwxyz123456"

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(TokenConfig{SigningKey: testSigningKey, Issuer: "iss", Audience: "aud"})
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	return m
}

func TestNewJWTManagerRequiresSigningKey(t *testing.T) {
	_, err := NewJWTManager(TokenConfig{Issuer: "iss", Audience: "aud"})
	if !errors.Is(err, ErrSigningKeyMissing) {
		t.Fatalf("expected ErrSigningKeyMissing, got %v", err)
	}
}

func TestSignSetsFixedValidityAndUniqueJTI(t *testing.T) {
	m := newTestJWTManager(t)
	sub := Subject{UserID: 7, Username: "alice", Email: "alice@example.com", Role: "Customer"}

	rawA, claimsA, err := m.Sign(sub)
	if err != nil {
		t.Fatalf("sign a: %v", err)
	}
	_, claimsB, err := m.Sign(sub)
	if err != nil {
		t.Fatalf("sign b: %v", err)
	}
	if claimsA.ID == "" || claimsA.ID == claimsB.ID {
		t.Fatalf("expected distinct non-empty jti values, got %q and %q", claimsA.ID, claimsB.ID)
	}
	if got := claimsA.ExpiresAt.Sub(claimsA.IssuedAt.Time); got != TokenValidity {
		t.Fatalf("expected validity %s, got %s", TokenValidity, got)
	}

	parsed, err := m.Parse(rawA)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Username != "alice" || parsed.Email != "alice@example.com" || parsed.Role != "Customer" {
		t.Fatalf("unexpected parsed claims: %+v", parsed)
	}
	id, err := parsed.UserID()
	if err != nil || id != 7 {
		t.Fatalf("expected user id 7, got %d (%v)", id, err)
	}
}

func TestParseRejectsWrongKeyAudienceAndExpiry(t *testing.T) {
	m := newTestJWTManager(t)
	other, err := NewJWTManager(TokenConfig{SigningKey: "zyxwvutsrqponmlkjihgfedcba654321", Issuer: "iss", Audience: "aud"})
	if err != nil {
		t.Fatalf("new other manager: %v", err)
	}
	foreign, _, err := other.Sign(Subject{UserID: 1})
	if err != nil {
		t.Fatalf("sign foreign: %v", err)
	}
	if _, err := m.Parse(foreign); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}

	wrongAud, err := NewJWTManager(TokenConfig{SigningKey: testSigningKey, Issuer: "iss", Audience: "other"})
	if err != nil {
		t.Fatalf("new wrong audience manager: %v", err)
	}
	raw, _, err := wrongAud.Sign(Subject{UserID: 1})
	if err != nil {
		t.Fatalf("sign wrong audience: %v", err)
	}
	if _, err := m.Parse(raw); err == nil {
		t.Fatal("expected audience mismatch to fail")
	}

	m.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _, err := m.Sign(Subject{UserID: 1})
	if err != nil {
		t.Fatalf("sign expired: %v", err)
	}
	m.now = time.Now
	if _, err := m.Parse(expired); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseUnverifiedReadsClaimsOfExpiredToken(t *testing.T) {
	m := newTestJWTManager(t)
	m.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	raw, signed, err := m.Sign(Subject{UserID: 3})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := ParseUnverified(raw)
	if err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	if claims.ID != signed.ID {
		t.Fatalf("expected jti %q, got %q", signed.ID, claims.ID)
	}
	if _, err := ParseUnverified("not-a-jwt"); err == nil {
		t.Fatal("expected malformed token to fail")
	}
}

func TestClaimsUserIDRejectsBadSubject(t *testing.T) {
	for _, sub := range []string{"", "abc", "0", "-1"} {
		c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
		if _, err := c.UserID(); !errors.Is(err, ErrInvalidSubject) {
			t.Fatalf("subject %q: expected ErrInvalidSubject, got %v", sub, err)
		}
	}
}

func TestBearerTokenIsCaseSensitive(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"Bearer  abc ": "abc",
		"bearer abc":   "",
		"Basic abc":    "",
		"":             "",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := BearerToken(req); got != want {
			t.Fatalf("BearerToken(%q)=%q want %q", header, got, want)
		}
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "s3cret-pass") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}

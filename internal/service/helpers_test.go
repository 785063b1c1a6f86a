package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/security"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSigningKey = "service-test-signing-key-0123456789"

func newServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&domain.User{}, &domain.BlacklistedToken{}, &domain.Product{}, &domain.Feature{}, &domain.Policy{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestJWTManager(t *testing.T) *security.JWTManager {
	t.Helper()
	mgr, err := security.NewJWTManager(security.TokenConfig{
		SigningKey: testSigningKey,
		Issuer:     "policy-api-test",
		Audience:   "policy-api-clients",
	})
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	return mgr
}

func issueTestToken(t *testing.T, mgr *security.JWTManager, userID uint) (string, *security.Claims) {
	t.Helper()
	raw, claims, err := mgr.Sign(security.Subject{
		UserID:   userID,
		Username: fmt.Sprintf("user%d", userID),
		Email:    fmt.Sprintf("user%d@example.com", userID),
		Role:     domain.RoleCustomer.String(),
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw, claims
}

// fixedClock returns a clock starting at start that tests can move forward.
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

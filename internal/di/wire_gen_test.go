package di

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/snic-labs/policy-api/internal/config"
	"github.com/snic-labs/policy-api/internal/security"
)

func newInjectorConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.db")
	return &config.Config{
		HTTPAddr:                 "127.0.0.1:0",
		DBDriver:                 "sqlite",
		DatabaseURL:              path,
		DBAutoMigrate:            true,
		JWTKey:                   "injector-test-signing-key-0123456789",
		JWTIssuer:                "policy-api",
		JWTAudience:              "policy-api-clients",
		UnknownUserCacheTTL:      time.Minute,
		BlacklistCleanupInterval: time.Hour,
		BlacklistCleanupTimeout:  time.Second,
		OTELServiceName:          "policy-api-test",
	}, path
}

func TestInitializeAppFailsBeforeOpeningResources(t *testing.T) {
	cfg, path := newInjectorConfig(t)
	cfg.JWTKey = ""
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, cleanup, err := InitializeApp(t.Context(), cfg, logger)
	if !errors.Is(err, security.ErrSigningKeyMissing) {
		t.Fatalf("expected ErrSigningKeyMissing, got %v", err)
	}
	if a != nil || cleanup != nil {
		t.Fatal("expected no app and no cleanup on error")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected database file not to be created, stat err: %v", statErr)
	}
}

func TestInitializeAppCleanupClosesDatabase(t *testing.T) {
	cfg, _ := newInjectorConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, cleanup, err := InitializeApp(t.Context(), cfg, logger)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if a.DB == nil || a.Redis != nil || len(a.Tasks) != 1 {
		t.Fatalf("unexpected app wiring: db=%v redis=%v tasks=%d", a.DB != nil, a.Redis, len(a.Tasks))
	}
	if !a.DB.Migrator().HasTable("policies") || !a.DB.Migrator().HasTable("products") {
		t.Fatal("expected catalog tables to be migrated")
	}

	cleanup()
	sqlDB, err := a.DB.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := sqlDB.Ping(); err == nil {
		t.Fatal("expected cleanup to close the database")
	}
}

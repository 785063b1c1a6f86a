package database

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/snic-labs/policy-api/internal/config"
	"github.com/snic-labs/policy-api/internal/domain"

	"gorm.io/gorm"
)

func TestOpenSQLiteMigratesAndTranslatesDuplicates(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DatabaseURL: "file:database_open_test?mode=memory&cache=shared"}
	db, err := Open(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"users", "blacklisted_tokens"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
	if !db.Migrator().HasIndex(&domain.BlacklistedToken{}, "ExpiresAt") {
		t.Fatal("expected index on expires_at")
	}

	u := domain.User{Email: "a@example.com", Username: "a", PasswordHash: "x", Role: domain.RoleCustomer}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := domain.User{Email: "a@example.com", Username: "b", PasswordHash: "x", Role: domain.RoleCustomer}
	if err := db.Create(&dup).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"}, slog.Default())
	if err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClassifyLoadError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "none", err: nil, want: "none"},
		{name: "env file", err: fmt.Errorf("%w .env: %w", ErrLoadEnvFile, errors.New("permission denied")), want: "env_file"},
		{name: "parse", err: fmt.Errorf("%w: %w", ErrParseEnvironment, errors.New(`BLACKLIST_CLEANUP_INTERVAL: time: invalid duration "soon"`)), want: "parse"},
		{name: "missing key", err: fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(ErrSigningKeyRequired, ErrDatabaseURLRequired)), want: "signing_key"},
		{name: "short key", err: fmt.Errorf("%w: %w", ErrInvalidConfig, ErrSigningKeyTooShort), want: "signing_key"},
		{name: "driver", err: fmt.Errorf("%w: %w", ErrInvalidConfig, fmt.Errorf("%w: %q", ErrUnsupportedDBDriver, "mssql")), want: "db_driver"},
		{name: "other validation", err: fmt.Errorf("%w: %w", ErrInvalidConfig, ErrDatabaseURLRequired), want: "validation"},
		{name: "unclassified", err: errors.New("disk on fire"), want: "load"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyLoadError(tc.err); got != tc.want {
				t.Fatalf("classifyLoadError()=%q want %q", got, tc.want)
			}
		})
	}
}

func TestLoadClassifiesUnsupportedDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_DRIVER", "mssql")
	_, err := Load(t.TempDir() + "/missing.env")
	if got := classifyLoadError(err); got != "db_driver" {
		t.Fatalf("expected db_driver class, got %q (%v)", got, err)
	}
}

func TestNormalizeAppEnv(t *testing.T) {
	if got := normalizeAppEnv("  Production  "); got != "production" {
		t.Fatalf("expected production, got %q", got)
	}
	if got := normalizeAppEnv("   "); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func FuzzNormalizeAppEnv(f *testing.F) {
	f.Add("development")
	f.Add(" Staging ")
	f.Add("")
	f.Add(strings.Repeat("x", 2048))

	f.Fuzz(func(t *testing.T, raw string) {
		got := normalizeAppEnv(raw)
		if got == "" {
			t.Fatal("normalized env must not be empty")
		}
		if strings.TrimSpace(raw) == "" && got != "unknown" {
			t.Fatalf("expected unknown for blank input, got %q", got)
		}
		if utf8.ValidString(raw) && !utf8.ValidString(got) {
			t.Fatalf("normalization broke valid UTF-8: %q", got)
		}
		if normalizeAppEnv(got) != got {
			t.Fatalf("normalizeAppEnv not idempotent: %q", got)
		}
	})
}

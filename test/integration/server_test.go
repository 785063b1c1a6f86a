package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/snic-labs/policy-api/internal/database"
	"github.com/snic-labs/policy-api/internal/health"
	"github.com/snic-labs/policy-api/internal/http/handler"
	"github.com/snic-labs/policy-api/internal/http/router"
	"github.com/snic-labs/policy-api/internal/repository"
	"github.com/snic-labs/policy-api/internal/security"
	"github.com/snic-labs/policy-api/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testStack struct {
	DB        *gorm.DB
	Blacklist *service.BlacklistService
	Scheduler *service.BlacklistCleanupScheduler
}

func newAuthTestServer(t *testing.T) (string, *http.Client, func()) {
	baseURL, client, _, closeFn := newAuthTestStack(t)
	return baseURL, client, closeFn
}

func newAuthTestStack(t *testing.T) (string, *http.Client, *testStack, func()) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", strings.ReplaceAll(t.Name(), "/", "_"))
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
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	jwtMgr, err := security.NewJWTManager(security.TokenConfig{
		SigningKey: "integration-signing-key-0123456789",
		Issuer:     "policy-api",
		Audience:   "policy-api-clients",
	})
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := repository.NewUserRepository(db)
	blacklist := service.NewBlacklistService(repository.NewBlacklistRepository(db), quiet)
	auth := service.NewAuthService(users, service.NewTokenService(jwtMgr), blacklist, service.NewInMemoryUnknownUserCache(time.Minute), quiet,
		service.WithSelfAdminRegistration(true))
	products := repository.NewProductRepository(db)
	productSvc := service.NewProductService(products, users, quiet)
	policySvc := service.NewPolicyService(repository.NewPolicyRepository(db), products, users, quiet)

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(auth, quiet),
		ProtectedHandler: handler.NewProtectedHandler(),
		AdminHandler:     handler.NewAdminHandler(blacklist, quiet),
		ProductHandler:   handler.NewProductHandler(productSvc, quiet),
		PolicyHandler:    handler.NewPolicyHandler(policySvc, quiet),
		TokenVerifier:    jwtMgr,
		Revocation:       blacklist,
		Logger:           quiet,
		CORSOrigins:      []string{"http://localhost:4200"},
		Readiness:        health.NewReadinessRunner(time.Second, 0, health.NewDBChecker(db)),
	})
	srv := httptest.NewServer(h)
	stack := &testStack{
		DB:        db,
		Blacklist: blacklist,
		Scheduler: service.NewBlacklistCleanupScheduler(blacklist, time.Hour, time.Second, quiet),
	}
	return srv.URL, srv.Client(), stack, func() {
		srv.Close()
		_ = sqlDB.Close()
	}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()
	resp, raw := doRawText(t, client, method, url, body, headers)
	var env envelope
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			t.Fatalf("decode envelope from %s %s: %v body=%q", method, url, err, raw)
		}
	}
	return resp, env
}

func doRawText(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(raw)
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

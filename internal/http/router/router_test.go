package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/health"
	"github.com/snic-labs/policy-api/internal/http/handler"
	"github.com/snic-labs/policy-api/internal/http/middleware"
	"github.com/snic-labs/policy-api/internal/repository"
	"github.com/snic-labs/policy-api/internal/security"
	"github.com/snic-labs/policy-api/internal/service"
)

type unhealthyChecker struct{}

func (unhealthyChecker) Check(ctx context.Context) health.CheckResult {
	return health.CheckResult{Name: "db", Healthy: false, Error: "db down"}
}

type stubRevocation struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocation) IsRevoked(_ context.Context, token string) (bool, error) {
	return s.revoked[token], s.err
}

type stubAuditor struct{}

func (stubAuditor) ListActive(_ context.Context, req repository.PageRequest) (repository.PageResult[service.BlacklistEntryView], error) {
	return repository.PageResult[service.BlacklistEntryView]{
		Items:    []service.BlacklistEntryView{{TokenID: "jti-1", UserID: 1, Reason: "User logout"}},
		Page:     1,
		PageSize: 20,
		Total:    1,
	}, nil
}

type stubAuth struct {
	service.AuthServiceInterface
	logoutErr error
	loggedOut []string
}

func (s *stubAuth) Logout(_ context.Context, token string, _ uint) error {
	s.loggedOut = append(s.loggedOut, token)
	return s.logoutErr
}

func newRouterTestJWT(t *testing.T) *security.JWTManager {
	t.Helper()
	mgr, err := security.NewJWTManager(security.TokenConfig{
		SigningKey: "abcdefghijklmnopqrstuvwxyz123456",
		Issuer:     "iss",
		Audience:   "aud",
	})
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	return mgr
}

func newRouterTestDeps(t *testing.T, auth service.AuthServiceInterface, revocation middleware.RevocationChecker) Dependencies {
	t.Helper()
	return Dependencies{
		AuthHandler:      handler.NewAuthHandler(auth, nil),
		ProtectedHandler: handler.NewProtectedHandler(),
		AdminHandler:     handler.NewAdminHandler(stubAuditor{}, nil),
		TokenVerifier:    newRouterTestJWT(t),
		Revocation:       revocation,
		CORSOrigins:      []string{"http://localhost"},
		EnableOTelHTTP:   false,
	}
}

func perform(r http.Handler, method, target string, headers map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "10.10.10.10:1234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func bearerToken(t *testing.T, role domain.UserRole) string {
	t.Helper()
	token, _, err := newRouterTestJWT(t).Sign(security.Subject{UserID: 42, Username: "u42", Email: "u42@example.com", Role: role.String()})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	errObj, _ := env["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestRouterHealthReadyNilAndUnreadyBranches(t *testing.T) {
	t.Run("nil readiness returns ready", func(t *testing.T) {
		dep := newRouterTestDeps(t, &stubAuth{}, stubRevocation{})
		r := NewRouter(dep)

		rr := perform(r, http.MethodGet, "/health/ready", nil, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"status":"ready"`) {
			t.Fatalf("expected ready status payload, got %s", rr.Body.String())
		}
	})

	t.Run("unready dependency returns 503", func(t *testing.T) {
		dep := newRouterTestDeps(t, &stubAuth{}, stubRevocation{})
		dep.Readiness = health.NewReadinessRunner(time.Second, 0, unhealthyChecker{})
		r := NewRouter(dep)

		rr := perform(r, http.MethodGet, "/health/ready", nil, "")
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"code":"DEPENDENCY_UNREADY"`) {
			t.Fatalf("expected DEPENDENCY_UNREADY error envelope, got %s", rr.Body.String())
		}
	})
}

func TestRouterHealthLive(t *testing.T) {
	r := NewRouter(newRouterTestDeps(t, &stubAuth{}, stubRevocation{}))
	rr := perform(r, http.MethodGet, "/health/live", nil, "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected live response %d %s", rr.Code, rr.Body.String())
	}
}

func TestRouterRevokedTokenShortCircuitsBeforeHandlers(t *testing.T) {
	token := bearerToken(t, domain.RoleAdmin)
	auth := &stubAuth{}
	r := NewRouter(newRouterTestDeps(t, auth, stubRevocation{revoked: map[string]bool{token: true}}))

	for _, path := range []string{"/api/protected/data", "/api/protected/admin", "/api/admin/blacklist", "/api/auth/token-status"} {
		rr := perform(r, http.MethodGet, path, map[string]string{"Authorization": "Bearer " + token}, "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rr.Code)
		}
		if rr.Body.String() != middleware.RevokedTokenBody {
			t.Fatalf("%s: expected plaintext revocation body, got %q", path, rr.Body.String())
		}
	}

	rr := perform(r, http.MethodPost, "/api/auth/logout", map[string]string{"Authorization": "Bearer " + token}, "")
	if rr.Code != http.StatusUnauthorized || len(auth.loggedOut) != 0 {
		t.Fatalf("logout with revoked token must not reach the handler: code=%d calls=%d", rr.Code, len(auth.loggedOut))
	}
}

func TestRouterRevocationCheckFailureFailsOpen(t *testing.T) {
	token := bearerToken(t, domain.RoleCustomer)
	r := NewRouter(newRouterTestDeps(t, &stubAuth{}, stubRevocation{err: errors.New("db down")}))

	rr := perform(r, http.MethodGet, "/api/protected/data", map[string]string{"Authorization": "Bearer " + token}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected fail-open 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRouterProtectedRoutesRequireAuthAndRole(t *testing.T) {
	r := NewRouter(newRouterTestDeps(t, &stubAuth{}, stubRevocation{}))
	customer := map[string]string{"Authorization": "Bearer " + bearerToken(t, domain.RoleCustomer)}
	admin := map[string]string{"Authorization": "Bearer " + bearerToken(t, domain.RoleAdmin)}

	cases := []struct {
		name     string
		path     string
		headers  map[string]string
		wantCode int
		wantErr  string
	}{
		{name: "anonymous data", path: "/api/protected/data", wantCode: http.StatusUnauthorized, wantErr: "UNAUTHORIZED"},
		{name: "invalid token", path: "/api/protected/data", headers: map[string]string{"Authorization": "Bearer junk"}, wantCode: http.StatusUnauthorized, wantErr: "UNAUTHORIZED"},
		{name: "customer data", path: "/api/protected/data", headers: customer, wantCode: http.StatusOK},
		{name: "customer on admin", path: "/api/protected/admin", headers: customer, wantCode: http.StatusForbidden, wantErr: "FORBIDDEN"},
		{name: "admin on admin", path: "/api/protected/admin", headers: admin, wantCode: http.StatusOK},
		{name: "admin on customer", path: "/api/protected/customer", headers: admin, wantCode: http.StatusForbidden, wantErr: "FORBIDDEN"},
		{name: "customer on customer", path: "/api/protected/customer", headers: customer, wantCode: http.StatusOK},
		{name: "customer on blacklist audit", path: "/api/admin/blacklist", headers: customer, wantCode: http.StatusForbidden, wantErr: "FORBIDDEN"},
		{name: "admin on blacklist audit", path: "/api/admin/blacklist?page=1&page_size=5", headers: admin, wantCode: http.StatusOK},
		{name: "bad paging", path: "/api/admin/blacklist?page=x", headers: admin, wantCode: http.StatusBadRequest, wantErr: "BAD_REQUEST"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := perform(r, http.MethodGet, tc.path, tc.headers, "")
			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d body=%s", tc.wantCode, rr.Code, rr.Body.String())
			}
			if tc.wantErr != "" {
				if code := errorCode(t, rr); code != tc.wantErr {
					t.Fatalf("expected error code %s, got %s", tc.wantErr, code)
				}
			}
		})
	}
}

func TestRouterLogoutFailureReturns500(t *testing.T) {
	auth := &stubAuth{logoutErr: service.ErrOperationFailed}
	r := NewRouter(newRouterTestDeps(t, auth, stubRevocation{}))
	token := bearerToken(t, domain.RoleCustomer)

	rr := perform(r, http.MethodPost, "/api/auth/logout", map[string]string{"Authorization": "Bearer " + token}, "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "LOGOUT_FAILED" {
		t.Fatalf("expected LOGOUT_FAILED, got %s", code)
	}
	if len(auth.loggedOut) != 1 || auth.loggedOut[0] != token {
		t.Fatalf("expected logout to receive the raw token, got %v", auth.loggedOut)
	}
}

func TestRouterRegisterValidation(t *testing.T) {
	r := NewRouter(newRouterTestDeps(t, &stubAuth{}, stubRevocation{}))

	rr := perform(r, http.MethodPost, "/api/auth/register", nil, `{"email":"not-an-email","username":"ab","password":"123"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, field := range []string{`"field":"email"`, `"field":"username"`, `"field":"password"`} {
		if !strings.Contains(body, field) {
			t.Fatalf("expected %s in validation details, got %s", field, body)
		}
	}

	rr = perform(r, http.MethodPost, "/api/auth/login", nil, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty login body, got %d", rr.Code)
	}
}

package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/health"
	"github.com/snic-labs/policy-api/internal/http/handler"
	"github.com/snic-labs/policy-api/internal/http/middleware"
	"github.com/snic-labs/policy-api/internal/http/response"
)

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	ProtectedHandler *handler.ProtectedHandler
	AdminHandler     *handler.AdminHandler
	ProductHandler   *handler.ProductHandler
	PolicyHandler    *handler.PolicyHandler
	TokenVerifier    middleware.TokenVerifier
	Revocation       middleware.RevocationChecker
	Logger           *slog.Logger
	CORSOrigins      []string
	Readiness        *health.ReadinessRunner
	EnableOTelHTTP   bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(dep.TokenVerifier))
		r.Use(middleware.RevocationGate(dep.Revocation, dep.Logger))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", dep.AuthHandler.Register)
			r.Post("/login", dep.AuthHandler.Login)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/logout", dep.AuthHandler.Logout)
				r.Get("/profile", dep.AuthHandler.Profile)
				r.Get("/token-status", dep.AuthHandler.TokenStatus)
			})
		})

		r.Route("/protected", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/data", dep.ProtectedHandler.Data)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Get("/admin", dep.ProtectedHandler.Admin)
			r.With(middleware.RequireRole(domain.RoleCustomer)).Get("/customer", dep.ProtectedHandler.Customer)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/blacklist", dep.AdminHandler.ListBlacklist)
		})

		if dep.ProductHandler != nil {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", dep.ProductHandler.List)
				r.Get("/{productID}", dep.ProductHandler.Get)
				r.With(middleware.RequireAuth).Post("/", dep.ProductHandler.Create)
				r.With(middleware.RequireAuth).Put("/{productID}", dep.ProductHandler.Update)
				r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{productID}", dep.ProductHandler.Delete)
			})
		}

		if dep.PolicyHandler != nil {
			r.Route("/policies", func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/", dep.PolicyHandler.List)
				r.Get("/active", dep.PolicyHandler.ListActive)
				r.Get("/by-product/{productID}", dep.PolicyHandler.ListByProduct)
				r.Get("/by-user/{userID}", dep.PolicyHandler.ListByUser)
				r.Get("/{policyID}", dep.PolicyHandler.Get)
				r.Post("/", dep.PolicyHandler.Create)
				r.Put("/{policyID}", dep.PolicyHandler.Update)
				r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{policyID}", dep.PolicyHandler.Delete)
			})
		}
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}

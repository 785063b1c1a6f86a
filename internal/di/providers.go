package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/snic-labs/policy-api/internal/app"
	"github.com/snic-labs/policy-api/internal/config"
	"github.com/snic-labs/policy-api/internal/database"
	"github.com/snic-labs/policy-api/internal/health"
	"github.com/snic-labs/policy-api/internal/http/handler"
	"github.com/snic-labs/policy-api/internal/http/router"
	"github.com/snic-labs/policy-api/internal/observability"
	"github.com/snic-labs/policy-api/internal/repository"
	"github.com/snic-labs/policy-api/internal/security"
	"github.com/snic-labs/policy-api/internal/service"
)

func provideRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*observability.Runtime, func(), error) {
	rt, err := observability.InitRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return rt, func() { _ = rt.Shutdown(context.Background()) }, nil
}

func provideDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}
	return db, nil
}

func provideDBWithCleanup(cfg *config.Config, logger *slog.Logger) (*gorm.DB, func(), error) {
	db, err := provideDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = database.Close(db) }, nil
}

// provideRedis returns a nil client when REDIS_ADDR is unset.
func provideRedis(cfg *config.Config) (redis.UniversalClient, func()) {
	if !cfg.RedisEnabled() {
		return nil, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }
}

func provideUnknownUserCache(cfg *config.Config, client redis.UniversalClient) service.UnknownUserCache {
	if client == nil {
		return service.NewInMemoryUnknownUserCache(cfg.UnknownUserCacheTTL)
	}
	return service.NewRedisUnknownUserCache(client, "", cfg.UnknownUserCacheTTL)
}

func provideJWTManager(cfg *config.Config) (*security.JWTManager, error) {
	return security.NewJWTManager(security.TokenConfig{
		SigningKey: cfg.JWTKey,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
	})
}

func provideAuthService(cfg *config.Config, users repository.UserRepository, tokens *service.TokenService, blacklist *service.BlacklistService, unknown service.UnknownUserCache, logger *slog.Logger) *service.AuthService {
	return service.NewAuthService(users, tokens, blacklist, unknown, logger,
		service.WithSelfAdminRegistration(cfg.AllowSelfAdmin))
}

func provideAuthHandler(auth *service.AuthService, logger *slog.Logger) *handler.AuthHandler {
	return handler.NewAuthHandler(auth, logger)
}

func provideProductHandler(products *service.ProductService, logger *slog.Logger) *handler.ProductHandler {
	return handler.NewProductHandler(products, logger)
}

func providePolicyHandler(policies *service.PolicyService, logger *slog.Logger) *handler.PolicyHandler {
	return handler.NewPolicyHandler(policies, logger)
}

func provideAdminHandler(blacklist *service.BlacklistService, logger *slog.Logger) *handler.AdminHandler {
	return handler.NewAdminHandler(blacklist, logger)
}

func provideScheduler(cfg *config.Config, blacklist *service.BlacklistService, logger *slog.Logger) *service.BlacklistCleanupScheduler {
	return service.NewBlacklistCleanupScheduler(blacklist, cfg.BlacklistCleanupInterval, cfg.BlacklistCleanupTimeout, logger)
}

func provideReadiness(db *gorm.DB, client redis.UniversalClient) *health.ReadinessRunner {
	checkers := []health.Checker{health.NewDBChecker(db)}
	if client != nil {
		checkers = append(checkers, health.NewRedisChecker(client))
	}
	return health.NewReadinessRunner(2*time.Second, 5*time.Second, checkers...)
}

func provideRouter(
	cfg *config.Config,
	logger *slog.Logger,
	jwtMgr *security.JWTManager,
	blacklist *service.BlacklistService,
	auth *handler.AuthHandler,
	protected *handler.ProtectedHandler,
	admin *handler.AdminHandler,
	products *handler.ProductHandler,
	policies *handler.PolicyHandler,
	readiness *health.ReadinessRunner,
) http.Handler {
	return router.NewRouter(router.Dependencies{
		AuthHandler:      auth,
		ProtectedHandler: protected,
		AdminHandler:     admin,
		ProductHandler:   products,
		PolicyHandler:    policies,
		TokenVerifier:    jwtMgr,
		Revocation:       blacklist,
		Logger:           logger,
		CORSOrigins:      cfg.CORSOrigins,
		Readiness:        readiness,
		EnableOTelHTTP:   cfg.EnableOTelHTTP,
	})
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	client redis.UniversalClient,
	readiness *health.ReadinessRunner,
	scheduler *service.BlacklistCleanupScheduler,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, client, readiness, scheduler)
}

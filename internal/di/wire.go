//go:build wireinject

package di

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/snic-labs/policy-api/internal/app"
	"github.com/snic-labs/policy-api/internal/config"
	"github.com/snic-labs/policy-api/internal/http/handler"
	"github.com/snic-labs/policy-api/internal/repository"
	"github.com/snic-labs/policy-api/internal/service"
)

var repositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewBlacklistRepository,
	repository.NewProductRepository,
	repository.NewPolicyRepository,
)

var serviceSet = wire.NewSet(
	provideJWTManager,
	provideUnknownUserCache,
	service.NewTokenService,
	service.NewBlacklistService,
	provideAuthService,
	service.NewProductService,
	service.NewPolicyService,
	provideScheduler,
)

var httpSet = wire.NewSet(
	provideAuthHandler,
	provideAdminHandler,
	provideProductHandler,
	providePolicyHandler,
	handler.NewProtectedHandler,
	provideReadiness,
	provideRouter,
	provideHTTPServer,
)

// InitializeApp returns a cleanup that releases everything acquired. On
// success App.Shutdown owns the same resources, so callers only run it when
// the app never starts.
func InitializeApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, func(), error) {
	wire.Build(
		provideRuntime,
		provideDBWithCleanup,
		provideRedis,
		repositorySet,
		serviceSet,
		httpSet,
		provideApp,
	)
	return nil, nil, nil
}

func InitializeBlacklistService(cfg *config.Config, logger *slog.Logger) (*service.BlacklistService, func(), error) {
	wire.Build(
		provideDBWithCleanup,
		repository.NewBlacklistRepository,
		service.NewBlacklistService,
	)
	return nil, nil, nil
}

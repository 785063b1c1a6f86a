package config

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	loadMetricsOnce sync.Once
	loadCounter     metric.Int64Counter
)

// recordConfigLoad counts Load outcomes per APP_ENV and failure class. It
// runs before the meter provider is installed, so the global delegate picks
// it up once observability starts.
func recordConfigLoad(ctx context.Context, appEnv, outcome string, err error) {
	loadMetricsOnce.Do(func() {
		counter, cerr := otel.Meter("policy-api/config").Int64Counter("config.load.events")
		if cerr == nil {
			loadCounter = counter
		}
	})
	if loadCounter == nil {
		return
	}
	loadCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("app_env", normalizeAppEnv(appEnv)),
		attribute.String("outcome", outcome),
		attribute.String("error_class", classifyLoadError(err)),
	))
}

func normalizeAppEnv(appEnv string) string {
	v := strings.TrimSpace(strings.ToLower(appEnv))
	if v == "" {
		return "unknown"
	}
	return v
}

// classifyLoadError maps a Load failure to a low-cardinality label. Signing
// key and driver problems get their own class since they are the usual
// deployment mistakes; other validation failures share one.
func classifyLoadError(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrLoadEnvFile):
		return "env_file"
	case errors.Is(err, ErrParseEnvironment):
		return "parse"
	case errors.Is(err, ErrSigningKeyRequired), errors.Is(err, ErrSigningKeyTooShort):
		return "signing_key"
	case errors.Is(err, ErrUnsupportedDBDriver):
		return "db_driver"
	case errors.Is(err, ErrInvalidConfig):
		return "validation"
	default:
		return "load"
	}
}

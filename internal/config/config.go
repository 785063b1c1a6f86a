package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrLoadEnvFile         = errors.New("load env file")
	ErrParseEnvironment    = errors.New("parse environment")
	ErrInvalidConfig       = errors.New("validate config")
	ErrSigningKeyRequired  = errors.New("JWT_KEY is required")
	ErrSigningKeyTooShort  = errors.New("JWT_KEY must be at least 32 bytes")
	ErrUnsupportedDBDriver = errors.New("DB_DRIVER is not supported")
	ErrDatabaseURLRequired = errors.New("DATABASE_URL is required")
)

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver      string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	JWTKey      string `env:"JWT_KEY"`
	JWTIssuer   string `env:"JWT_ISSUER" envDefault:"snic-api"`
	JWTAudience string `env:"JWT_AUDIENCE" envDefault:"snic-clients"`

	// AllowSelfAdmin lets anyone registering through the public endpoint pick
	// the Admin role. Leave off outside local development.
	AllowSelfAdmin bool `env:"ALLOW_SELF_ADMIN" envDefault:"false"`

	BlacklistCleanupInterval time.Duration `env:"BLACKLIST_CLEANUP_INTERVAL" envDefault:"1h"`
	BlacklistCleanupTimeout  time.Duration `env:"BLACKLIST_CLEANUP_TIMEOUT" envDefault:"2m"`

	RedisAddr           string        `env:"REDIS_ADDR"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	RedisDB             int           `env:"REDIS_DB" envDefault:"0"`
	UnknownUserCacheTTL time.Duration `env:"UNKNOWN_USER_CACHE_TTL" envDefault:"30s"`

	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:4200"`

	OTELServiceName           string        `env:"OTEL_SERVICE_NAME" envDefault:"policy-api"`
	OTELEnvironment           string        `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	OTELExporterOTLPEndpoint  string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELExporterOTLPInsecure  bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELMetricsEnabled        bool          `env:"OTEL_METRICS_ENABLED" envDefault:"false"`
	OTELTracingEnabled        bool          `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	OTELLogsEnabled           bool          `env:"OTEL_LOGS_ENABLED" envDefault:"false"`
	OTELMetricsExportInterval time.Duration `env:"OTEL_METRICS_EXPORT_INTERVAL" envDefault:"15s"`
	OTELTraceSamplingRatio    float64       `env:"OTEL_TRACE_SAMPLING_RATIO" envDefault:"1.0"`
	EnableOTelHTTP            bool          `env:"OTEL_HTTP_INSTRUMENTATION" envDefault:"true"`

	ShutdownTimeout              time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"20s"`
	ShutdownHTTPDrainTimeout     time.Duration `env:"SHUTDOWN_HTTP_DRAIN_TIMEOUT" envDefault:"10s"`
	ShutdownObservabilityTimeout time.Duration `env:"SHUTDOWN_OBSERVABILITY_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file (existing environment wins) and parses
// the environment into a validated Config.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w %s: %w", ErrLoadEnvFile, f, err)
			recordConfigLoad(context.Background(), "", "failure", err)
			return nil, err
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseEnvironment, err)
		recordConfigLoad(context.Background(), "", "failure", err)
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		recordConfigLoad(context.Background(), cfg.Env, "failure", err)
		return nil, err
	}
	recordConfigLoad(context.Background(), cfg.Env, "success", nil)
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTKey) == "" {
		errs = append(errs, ErrSigningKeyRequired)
	} else if len(c.JWTKey) < 32 {
		errs = append(errs, ErrSigningKeyTooShort)
	}
	if c.JWTIssuer == "" {
		errs = append(errs, errors.New("JWT_ISSUER must not be empty"))
	}
	if c.JWTAudience == "" {
		errs = append(errs, errors.New("JWT_AUDIENCE must not be empty"))
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnsupportedDBDriver, c.DBDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, ErrDatabaseURLRequired)
	}
	if c.BlacklistCleanupInterval <= 0 {
		errs = append(errs, errors.New("BLACKLIST_CLEANUP_INTERVAL must be positive"))
	}
	if c.BlacklistCleanupTimeout <= 0 {
		errs = append(errs, errors.New("BLACKLIST_CLEANUP_TIMEOUT must be positive"))
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, errors.New("OTEL_TRACE_SAMPLING_RATIO must be within [0,1]"))
	}
	return errors.Join(errs...)
}

func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

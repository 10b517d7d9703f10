package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/worldkernel-backend/internal/data/db"
	"github.com/yungbote/worldkernel-backend/internal/observability"
	"github.com/yungbote/worldkernel-backend/internal/services"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	LogMode      string `env:"LOG_MODE" envDefault:"development"`
	LogLevel     string `env:"LOG_LEVEL"`
	LogRedact    bool   `env:"LOG_REDACT" envDefault:"true"`
	LogHashSalt  string `env:"LOG_HASH_SALT"`
	Environment  string `env:"APP_ENV" envDefault:"development"`
	Version      string `env:"APP_VERSION" envDefault:"dev"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"worldkernel-api"`
	JWTSecretKey string `env:"JWT_SECRET_KEY" envDefault:"defaultsecret"`

	// Token lifetimes are in seconds.
	AccessTokenTTL  int `env:"ACCESS_TOKEN_TTL" envDefault:"3600"`
	RefreshTokenTTL int `env:"REFRESH_TOKEN_TTL" envDefault:"86400"`
	BcryptCost      int `env:"BCRYPT_COST" envDefault:"0"`

	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string        `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string        `env:"POSTGRES_PASSWORD"`
	PostgresName     string        `env:"POSTGRES_NAME" envDefault:"worldkernel"`
	PostgresSSLMode  string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	DBMaxOpenConns   int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns   int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnLifetime   time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	DBSlowThreshold  time.Duration `env:"DB_SLOW_THRESHOLD" envDefault:"200ms"`

	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	FeedDefaultLimit int           `env:"FEED_DEFAULT_LIMIT" envDefault:"20"`
	FeedMaxLimit     int           `env:"FEED_MAX_LIMIT" envDefault:"100"`
	LoginPath        string        `env:"LOGIN_PATH" envDefault:"/auth/login"`
	CORSOrigins      []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	MetricsEnabled       bool          `env:"METRICS_ENABLED" envDefault:"false"`
	MetricsPoolInterval  time.Duration `env:"METRICS_POOL_INTERVAL" envDefault:"15s"`
	OtelEnabled          bool          `env:"OTEL_ENABLED" envDefault:"false"`
	OtelEndpoint         string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders          string        `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure         bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelSampleRatio      float64       `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1"`
	RedisAddr            string        `env:"REDIS_ADDR"`
	RedisPassword        string        `env:"REDIS_PASSWORD"`
	RedisDB              int           `env:"REDIS_DB" envDefault:"0"`
	LoginRateLimit       int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateLimitWindow time.Duration `env:"LOGIN_RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// LoadConfig parses the environment. Secrets are never logged.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.FeedDefaultLimit <= 0 || c.FeedMaxLimit < c.FeedDefaultLimit {
		return fmt.Errorf("feed limits invalid: default=%d max=%d", c.FeedDefaultLimit, c.FeedMaxLimit)
	}
	if c.isProduction() && c.JWTSecretKey == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET_KEY must be set in production")
	}
	return nil
}

func (c Config) isProduction() bool {
	return strings.EqualFold(c.Environment, "production") || strings.EqualFold(c.LogMode, "production")
}

func (c Config) Postgres() db.PostgresConfig {
	return db.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPassword,
		Name:            c.PostgresName,
		SSLMode:         c.PostgresSSLMode,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnLifetime,
		SlowThreshold:   c.DBSlowThreshold,
	}
}

func (c Config) Auth() services.AuthConfig {
	return services.AuthConfig{
		JWTSecretKey: c.JWTSecretKey,
		AccessTTL:    time.Duration(c.AccessTokenTTL) * time.Second,
		RefreshTTL:   time.Duration(c.RefreshTokenTTL) * time.Second,
		BcryptCost:   c.BcryptCost,
	}
}

func (c Config) Listing() services.ListingConfig {
	return services.ListingConfig{DefaultLimit: c.FeedDefaultLimit, MaxLimit: c.FeedMaxLimit}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Version:     c.Version,
		Endpoint:    c.OtelEndpoint,
		Headers:     c.OtelHeaders,
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

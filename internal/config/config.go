package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/variant-service/pkg/config"
)

// Config holds all configuration for the variant service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort            int      `env:"VARIANT_HTTP_PORT" envDefault:"8014"`
	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	CacheMaxAgeSeconds  int      `env:"HTTP_CACHE_MAX_AGE_SECONDS" envDefault:"30"`
	ShutdownTimeoutSecs int      `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"15"`

	// PostgreSQL
	PostgresHost  string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort  int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser  string `env:"POSTGRES_USER" envDefault:"ecommerce"`
	PostgresPass  string `env:"POSTGRES_PASSWORD" envDefault:"ecommerce_secret"`
	PostgresDB    string `env:"VARIANT_DB_NAME" envDefault:"product_db"`
	PostgresSSL   string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	RunMigrations bool   `env:"VARIANT_RUN_MIGRATIONS" envDefault:"true"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"VARIANT_REDIS_DB" envDefault:"3"`

	// Kafka
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string   `env:"VARIANT_CONSUMER_GROUP" envDefault:"variant-service"`

	// Catalog snapshots and the shared source cache
	SnapshotTTLSeconds int `env:"VARIANT_SNAPSHOT_TTL_SECONDS" envDefault:"300"`
	CacheTTLSeconds    int `env:"VARIANT_CACHE_TTL_SECONDS" envDefault:"900"`

	// Installments
	InstallmentsEnabled bool   `env:"INSTALLMENTS_ENABLED" envDefault:"true"`
	CurrencyFormat      string `env:"CURRENCY_FORMAT" envDefault:"ARS"`

	// Payment service
	PaymentServiceURL     string        `env:"PAYMENT_SERVICE_URL" envDefault:"http://localhost:8005"`
	PaymentTimeout        time.Duration `env:"PAYMENT_TIMEOUT" envDefault:"2s"`
	PaymentMaxRetries     int           `env:"PAYMENT_MAX_RETRIES" envDefault:"1"`
	BreakerFailureRatio   float64       `env:"PAYMENT_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerMinRequests    uint32        `env:"PAYMENT_BREAKER_MIN_REQUESTS" envDefault:"5"`
	BreakerOpenTimeout    time.Duration `env:"PAYMENT_BREAKER_OPEN_TIMEOUT" envDefault:"30s"`
	BreakerHalfOpenMaxReq uint32        `env:"PAYMENT_BREAKER_HALF_OPEN_MAX_REQUESTS" envDefault:"1"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from an optional .env file and environment
// variables.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load variant config: %w", err)
	}
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load variant config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.SnapshotTTLSeconds < 0 {
		return fmt.Errorf("VARIANT_SNAPSHOT_TTL_SECONDS must be >= 0, got %d", c.SnapshotTTLSeconds)
	}
	if c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("VARIANT_CACHE_TTL_SECONDS must be > 0, got %d", c.CacheTTLSeconds)
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1.0 {
		return fmt.Errorf("PAYMENT_BREAKER_FAILURE_RATIO must be in (0, 1], got %f", c.BreakerFailureRatio)
	}
	if c.PaymentMaxRetries < 0 {
		return fmt.Errorf("PAYMENT_MAX_RETRIES must be >= 0, got %d", c.PaymentMaxRetries)
	}
	if c.InstallmentsEnabled {
		u, err := url.Parse(c.PaymentServiceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("PAYMENT_SERVICE_URL must be an absolute URL, got %q", c.PaymentServiceURL)
		}
	}
	switch strings.ToUpper(c.CurrencyFormat) {
	case "ARS", "COP", "USD":
	default:
		return fmt.Errorf("CURRENCY_FORMAT must be one of ARS, COP, USD, got %q", c.CurrencyFormat)
	}
	return nil
}

// SnapshotTTL is how long a built catalog is served before rebuilding.
func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSeconds) * time.Second
}

// CacheTTL is the lifetime of a cached catalog source in Redis.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"paywall"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Upper bound for a single store round trip.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// JWT
	JWTSecret       string        `env:"JWT_SECRET"`
	JWTAccessExpiry time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"24h"`

	// Telegram
	BotToken       string        `env:"BOT_TOKEN"`
	WebAppURL      string        `env:"WEBAPP_URL"`
	InitDataMaxAge time.Duration `env:"INIT_DATA_MAX_AGE" envDefault:"5m"`

	// Billing
	PaymentMode     string `env:"PAYMENT_MODE" envDefault:"mock"`
	PaymentProvider string `env:"PAYMENT_PROVIDER" envDefault:"mock"`
	PublicWebAppURL string `env:"PUBLIC_WEBAPP_URL" envDefault:"https://example.com"`
	Currency        string `env:"CURRENCY" envDefault:"KZT"`
	GraceDays       int    `env:"GRACE_DAYS" envDefault:"7"`

	// Workers
	ExpiryCheckInterval time.Duration `env:"EXPIRY_CHECK_INTERVAL" envDefault:"1h"`
	LogRetentionDays    int           `env:"LOG_RETENTION_DAYS" envDefault:"30"`

	// Server
	Port        string `env:"PORT" envDefault:"3001"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	SentryDSN   string `env:"SENTRY_DSN"`

	// Catalog
	CatalogPath string `env:"CATALOG_PATH" envDefault:"catalog.json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DBPassword == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.GraceDays < 0 {
		errs = append(errs, errors.New("GRACE_DAYS must not be negative"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

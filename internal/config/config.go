package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	App struct {
		ENV  string `env:"APP_ENV" envDefault:"development"`
		Name string `env:"APP_NAME" envDefault:"kuwait-cars-api"`
	}

	Log struct {
		Level     string `env:"LOG_LEVEL" envDefault:"info"`
		Format    string `env:"LOG_FORMAT" envDefault:"text"`
		Component string `env:"LOG_COMPONENT" envDefault:"api"`
		Source    bool   `env:"LOG_SOURCE"`
	}

	HTTP struct {
		Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
		Port string `env:"PORT" envDefault:"5000"`
	}

	GRPC struct {
		Host string `env:"GRPC_HOST" envDefault:"127.0.0.1"`
		Port string `env:"GRPC_PORT" envDefault:"50051"`
	}

	DB struct {
		Driver   string `env:"DB_DRIVER" envDefault:"postgres"`
		DSN      string `env:"DATABASE_URL"`
		Host     string `env:"DB_HOST" envDefault:"localhost"`
		Port     string `env:"DB_PORT"`
		User     string `env:"DB_USER" envDefault:"postgres"`
		Password string `env:"DB_PASSWORD" envDefault:"postgres"`
		Name     string `env:"DB_NAME" envDefault:"kuwait_cars"`
		LogLevel string `env:"DB_LOG_LEVEL" envDefault:"warn"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	JWT struct {
		Secret string        `env:"JWT_SECRET" envDefault:"change-me"`
		Issuer string        `env:"JWT_ISSUER" envDefault:"kuwait-cars"`
		TTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`
	}

	CORS struct {
		Origins []string `env:"CORS_ORIGIN" envSeparator:"," envDefault:"*"`
	}

	RateLimit struct {
		Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
		Max    int64         `env:"RATE_LIMIT_MAX" envDefault:"100"`
	}

	Minio struct {
		Endpoint  string `env:"MINIO_ENDPOINT"`
		AccessKey string `env:"MINIO_ACCESS_KEY"`
		SecretKey string `env:"MINIO_SECRET_KEY"`
		Bucket    string `env:"MINIO_BUCKET" envDefault:"ads-media"`
		UseSSL    bool   `env:"MINIO_USE_SSL"`
	}

	RabbitMQ struct {
		URL      string `env:"RABBITMQ_URL"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"notification_exchange"`
	}

	OTel struct {
		Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
		ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"kuwait-cars-api"`
		Insecure    bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	}

	Ads struct {
		PageSize    int   `env:"ADS_PAGE_SIZE" envDefault:"12"`
		MaxPageSize int   `env:"ADS_MAX_PAGE_SIZE" envDefault:"50"`
		DraftLimit  int64 `env:"ADS_DRAFT_LIMIT" envDefault:"5"`
		ExpiryDays  int   `env:"ADS_DEFAULT_EXPIRY_DAYS" envDefault:"30"`
		BatchMax    int   `env:"ADS_BATCH_MAX" envDefault:"100"`
	}

	Translations struct {
		Dir string        `env:"TRANSLATIONS_DIR" envDefault:"./locales"`
		TTL time.Duration `env:"TRANSLATIONS_TTL" envDefault:"5m"`
	}

	Cron struct {
		Secret string `env:"CRON_SECRET"`
	}
}

// New loads an optional .env file and parses the environment into a Config.
// Variables already present in the process environment win over .env values.
func New() (*Config, error) {
	_ = godotenv.Load()
	return Load()
}

// Load parses the current process environment without touching .env files.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = buildDSN(cfg)
	}

	if cfg.Ads.PageSize <= 0 {
		return nil, fmt.Errorf("ADS_PAGE_SIZE must be positive, got %d", cfg.Ads.PageSize)
	}
	if cfg.Ads.MaxPageSize < cfg.Ads.PageSize {
		cfg.Ads.MaxPageSize = cfg.Ads.PageSize
	}

	return cfg, nil
}

// IsDevelopment reports whether internal error details may be exposed.
func (c *Config) IsDevelopment() bool {
	return c.App.ENV == EnvDevelopment
}

func buildDSN(cfg *Config) string {
	switch cfg.DB.Driver {
	case "mysql":
		port := cfg.DB.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, port, cfg.DB.Name,
		)
	case "sqlite":
		return fmt.Sprintf("file:%s.db?_foreign_keys=on", cfg.DB.Name)
	default:
		port := cfg.DB.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, port,
		)
	}
}

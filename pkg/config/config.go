package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	FirebaseProject         string `env:"FIREBASE_PROJECT_ID"`
	FirebaseApiKey          string `env:"FIREBASE_API_KEY"`
	FirebaseCredentialsJSON string `env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	FirebaseCredentialsPath string `env:"FIREBASE_SERVICE_ACCOUNT_PATH" envDefault:"./firebase-adminsdk.json"`
	StorageBucket           string `env:"STORAGE_BUCKET"`

	// Optional. Without it the catalog is not cached and views are not de-duplicated.
	RedisURL        string        `env:"REDIS_URL"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"30s"`
	ViewDedupWindow time.Duration `env:"VIEW_DEDUP_WINDOW" envDefault:"30m"`

	// Comment, reply and like submissions per user.
	SubmitRatePerMinute int `env:"SUBMIT_RATE_PER_MINUTE" envDefault:"10"`
	SubmitBurst         int `env:"SUBMIT_BURST" envDefault:"5"`

	// Register, login and password reset attempts per client IP.
	AuthRatePerMinute int `env:"AUTH_RATE_PER_MINUTE" envDefault:"20"`
	AuthBurst         int `env:"AUTH_BURST" envDefault:"5"`

	// Empty accepts websocket upgrades from any origin.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.FirebaseProject == "" {
		return nil, fmt.Errorf("config: FIREBASE_PROJECT_ID is required")
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

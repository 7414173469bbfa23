package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPgx = "pgx"
	DriverPQ  = "postgres"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr     string `env:"APP_ADDR" envDefault:":8080"`
	Env      string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	DBDriver       string `env:"DB_DRIVER" envDefault:"pgx"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	JWTLeeway  time.Duration `env:"JWT_LEEWAY" envDefault:"0s"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	// Route groups that require a bearer token. Account creation and login
	// are always public.
	AuthAccountRoutes bool `env:"AUTH_ACCOUNT_ROUTES" envDefault:"true"`
	AuthFederalRoutes bool `env:"AUTH_FEDERAL_ROUTES" envDefault:"false"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	CORSOrigins    string        `env:"CORS_ORIGINS" envDefault:"*"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case DriverPgx, DriverPQ:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPgx, DriverPQ, c.DBDriver)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be blank")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.JWTLeeway < 0 {
		return fmt.Errorf("JWT_LEEWAY must not be negative")
	}
	return nil
}

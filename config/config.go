package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server struct {
		// Port the HTTP API listens on
		Port string `env:"SERVER_PORT" envDefault:"5250"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	}

	Database struct {
		// Either "sqlite" or "postgres"
		Driver string `env:"DB_DRIVER" envDefault:"sqlite"`

		// File path for sqlite, connection string for postgres
		DSN string `env:"DB_DSN" envDefault:"database/realestate.db"`
	}

	Auth struct {
		// HMAC key for access tokens; there is no default
		JWTSecret string        `env:"JWT_SECRET,required"`
		TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"24h"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	Sales struct {
		// Commission percentage applied when a sale completes
		DefaultCommissionRate decimal.Decimal `env:"COMMISSION_DEFAULT_RATE" envDefault:"5.00"`

		// A final price above reference*UpperFactor needs admin review
		ReviewUpperFactor decimal.Decimal `env:"SALE_REVIEW_UPPER_FACTOR" envDefault:"2.0"`

		// A final price below reference*LowerFactor needs admin review
		ReviewLowerFactor decimal.Decimal `env:"SALE_REVIEW_LOWER_FACTOR" envDefault:"0.5"`
	}
}

// MinJWTSecretLength is the shortest accepted HS256 signing key
const MinJWTSecretLength = 32

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(cfg.Auth.JWTSecret)) < MinJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength)
	}
	return cfg, nil
}

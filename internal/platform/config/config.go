package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string  `env:"APP_ENV" envDefault:"local"`
	BotToken  string  `env:"BOT_TOKEN,required"`
	AdminIDs  []int64 `env:"ADMIN_IDS" envSeparator:","`
	StorePath string  `env:"STORE_PATH" envDefault:"./channels.json"`

	APIPort    int `env:"API_PORT" envDefault:"8081"`
	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	// Membership lookup policy. Retries apply to transport-level failures
	// only; LOOKUP_RETRIES=0 means a single attempt per channel.
	LookupTimeout      time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"10s"`
	LookupRPS          float64       `env:"LOOKUP_RPS" envDefault:"20"`
	LookupBurst        int           `env:"LOOKUP_BURST" envDefault:"5"`
	LookupRetries      int           `env:"LOOKUP_RETRIES" envDefault:"0"`
	LookupRetryBackoff time.Duration `env:"LOOKUP_RETRY_BACKOFF" envDefault:"500ms"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}

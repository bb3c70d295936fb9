package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken     string        `envconfig:"BOT_TOKEN" required:"true"`
	DBPath       string        `envconfig:"DB_PATH" default:"./data/moygrafik.db"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`    // debug|info|warn|error
	HTTPAddr     string        `envconfig:"HTTP_ADDR" default:":8080"`   // healthz
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"30s"` // reminder scan period
}

// Load reads environment variables into Config.
// A local .env file is applied first when present; real env wins over file values.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

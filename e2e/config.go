package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_ADDR points to a running server; the suite is skipped when empty
	ChatAddr string `envconfig:"CHAT_ADDR"`
	Secret   string `envconfig:"E2E_SECRET" default:"password"`
	// E2E_READ_TIMEOUT must exceed a full segmented delivery
	ReadTimeout time.Duration `envconfig:"E2E_READ_TIMEOUT" default:"30s"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// BOARD_ADDR is the base URL of a running board, e.g. http://localhost:8080
	BoardAddr     string `envconfig:"BOARD_ADDR"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	// E2E_DEBUG_JSON dumps full response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	DBPath   string `env:"DB_PATH" envDefault:"bets.db"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	MCPEnabled      bool          `env:"MCP_ENABLED" envDefault:"true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

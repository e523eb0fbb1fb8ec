package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// LedgerConfig holds the economy parameters of a deployment.
type LedgerConfig struct {
	StartingBalance int64         `env:"STARTING_BALANCE" envDefault:"100"`
	IncomeAmount    int64         `env:"INCOME_AMOUNT" envDefault:"10"`
	IncomeInterval  time.Duration `env:"INCOME_INTERVAL" envDefault:"24h"`
	BetAmounts      []int64       `env:"BET_AMOUNTS" envSeparator:"," envDefault:"10,50,100"`
	Currency        string        `env:"CURRENCY" envDefault:"coins"`
}

func LoadLedger() (LedgerConfig, error) {
	var cfg LedgerConfig
	if err := env.Parse(&cfg); err != nil {
		return LedgerConfig{}, err
	}
	if cfg.StartingBalance < 0 {
		return LedgerConfig{}, errors.New("STARTING_BALANCE must not be negative")
	}
	for _, amount := range cfg.BetAmounts {
		if amount <= 0 {
			return LedgerConfig{}, errors.New("BET_AMOUNTS must be positive")
		}
	}
	return cfg, nil
}

package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type NotifyConfig struct {
	DiscordWebhookURL string        `env:"NOTIFY_DISCORD_WEBHOOK_URL"`
	KafkaBrokers      []string      `env:"NOTIFY_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic        string        `env:"NOTIFY_KAFKA_TOPIC" envDefault:"wager.account_updates"`
	Workers           int           `env:"NOTIFY_WORKERS" envDefault:"2"`
	Buffer            int           `env:"NOTIFY_BUFFER" envDefault:"1024"`
	RetryMax          int           `env:"NOTIFY_RETRY_MAX" envDefault:"3"`
	RetryBase         time.Duration `env:"NOTIFY_RETRY_BASE" envDefault:"500ms"`
	RequestTimeout    time.Duration `env:"NOTIFY_REQUEST_TIMEOUT" envDefault:"5s"`
}

func LoadNotify() (NotifyConfig, error) {
	var cfg NotifyConfig
	err := env.Parse(&cfg)
	return cfg, err
}

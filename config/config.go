package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds every externally supplied setting. It is parsed once in
// main and injected into components at construction; nothing reads the
// environment after startup.
type Config struct {
	HTTP struct {
		Port int `env:"PORT" envDefault:"8085"`
	}

	Paystack struct {
		SecretKey string `env:"PAYSTACK_SECRET_KEY,required"`
		BaseURL   string `env:"PAYSTACK_BASE_URL" envDefault:"https://api.paystack.co"`
	}

	DB struct {
		Host     string `env:"DB_HOST" envDefault:"localhost"`
		Port     string `env:"DB_PORT" envDefault:"5432"`
		User     string `env:"DB_USER" envDefault:"postgres"`
		Password string `env:"DB_PASSWORD" envDefault:"postgres"`
		Name     string `env:"DB_NAME" envDefault:"ticketdb"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     string `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
	}

	Kafka struct {
		Broker string `env:"KAFKA_BROKER" envDefault:"localhost:9092"`
		Topic  string `env:"KAFKA_TOPIC" envDefault:"ticket_events"`
	}

	SMTP struct {
		Host     string `env:"SMTP_HOST" envDefault:"localhost"`
		Port     int    `env:"SMTP_PORT" envDefault:"587"`
		User     string `env:"SMTP_USER" envDefault:""`
		Password string `env:"SMTP_PASSWORD" envDefault:""`
		From     string `env:"SMTP_FROM" envDefault:"tickets@ules.events"`
	}

	Tickets struct {
		// Directory holding one base image per ticket type,
		// named <type>.png.
		AssetDir    string        `env:"TICKET_ASSET_DIR" envDefault:"./assets"`
		UnitTimeout time.Duration `env:"UNIT_TIMEOUT" envDefault:"30s"`
	}
}

func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

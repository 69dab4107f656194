package config

import "time"

// Config holds application configuration.
type Config struct {
	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	DatabaseURL  string `env:"DATABASE_URL"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"pricetracker.db"`

	WatchURLs     []string      `env:"WATCH_URLS" envSeparator:","`
	SelectorsFile string        `env:"SELECTORS_FILE"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	VisitInterval time.Duration `env:"VISIT_INTERVAL" envDefault:"24h"`

	RabbitMQ RabbitMQ
}

// RabbitMQ holds RabbitMQ configuration.
type RabbitMQ struct {
	URL      string `env:"RABBITMQ_URL"`
	Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"pt-ex"`
	Queue    string `env:"RABBITMQ_QUEUE" envDefault:"price-tracker.actions"`
}

package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {

	// Event service configuration
	EventServiceConfig struct {
		Port    int    `envconfig:"EVENT_SERVICE_PORT" default:"3021"`
		Address string `envconfig:"EVENT_SERVICE_ADDRESS" default:"0.0.0.0"`
	}

	// Country service configuration
	CountryServiceConfig struct {
		Port    int    `envconfig:"COUNTRY_SERVICE_PORT" default:"3020"`
		Address string `envconfig:"COUNTRY_SERVICE_ADDRESS" default:"0.0.0.0"`
	}

	// Broadcast hub configuration
	HubConfig struct {
		// Per-subscriber channel capacity. Events beyond a stalled
		// subscriber's capacity are dropped for that subscriber only.
		SubscriberBuffer int `envconfig:"HUB_SUBSCRIBER_BUFFER" default:"64"`
		// Interval between SSE keep-alive comments.
		KeepAliveSeconds int `envconfig:"HUB_KEEPALIVE_SECONDS" default:"15"`
	}

	// Event publisher (country-service -> event-service) configuration
	EventClientConfig struct {
		EventServiceURL string `envconfig:"EVENT_SERVICE_URL" default:"http://event-service:3021"`
		TimeoutSeconds  int    `envconfig:"EVENT_CLIENT_TIMEOUT_SECONDS" default:"5"`
	}

	// Database configuration
	DatabaseConfig struct {
		DatabaseHost                      string `envconfig:"DB_HOST" default:"localhost"`
		DatabaseUser                      string `envconfig:"DB_USER" default:"postgres"`
		DatabasePassword                  string `envconfig:"DB_PASSWORD"`
		DatabaseName                      string `envconfig:"DB_NAME" default:"worldexplorer"`
		DatabasePort                      int32  `envconfig:"DB_PORT" default:"5432"`
		DatabasePoolMaxConnections        int32  `envconfig:"DB_MAX_CON" default:"10"`
		DatabasePoolMinConnections        int32  `envconfig:"DB_POOL_MIN_CON" default:"2"`
		DatabasePoolMaxConnectionLifetime int    `envconfig:"DB_POOL_MAX_LIFETIME" default:"1"`
	}

	// Redis configuration for the country read cache.
	// Caching is disabled entirely when RedisAddr is left empty.
	RedisConfig struct {
		RedisAddr       string `envconfig:"REDIS_ADDR"`
		RedisPassword   string `envconfig:"REDIS_PASSWORD"`
		RedisDB         int    `envconfig:"REDIS_DB" default:"0"`
		CacheTTLSeconds int    `envconfig:"REDIS_CACHE_TTL_SECONDS" default:"300"`
	}

	// RabbitMQ configuration for the outbound event relay.
	// The relay is disabled entirely when RabbitMQAddress is left empty.
	RabbitMQConfig struct {
		RabbitMQUser    string `envconfig:"RABBITMQ_USER" default:"guest"`
		RabbitMQPass    string `envconfig:"RABBITMQ_PASSWORD" default:"guest"`
		RabbitMQAddress string `envconfig:"RABBITMQ_ADDRESS"`
		RabbitMQPort    int    `envconfig:"RABBITMQ_PORT" default:"5672"`
		Exchange        string `envconfig:"RABBITMQ_EXCHANGE" default:"worldexplorer.events"`
	}
}

// The LoadConfig function loads the env file specified and returns
// a valid configuration object ready for use
func LoadConfig() (*Config, error) {
	cfg := Config{}

	// Attempt to load a .env file.
	// We ignore the error so it doesn't crash if the file is missing.
	_ = godotenv.Load()

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %v", err)
	}

	return &cfg, nil
}

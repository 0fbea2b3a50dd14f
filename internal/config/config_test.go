package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3021, cfg.EventServiceConfig.Port)
	assert.Equal(t, 3020, cfg.CountryServiceConfig.Port)
	assert.Equal(t, 64, cfg.HubConfig.SubscriberBuffer)
	assert.Equal(t, "http://event-service:3021", cfg.EventClientConfig.EventServiceURL)
	assert.Equal(t, "worldexplorer.events", cfg.RabbitMQConfig.Exchange)
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("EVENT_SERVICE_PORT", "4000")
	t.Setenv("HUB_SUBSCRIBER_BUFFER", "256")
	t.Setenv("EVENT_SERVICE_URL", "http://localhost:4000/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.EventServiceConfig.Port)
	assert.Equal(t, 256, cfg.HubConfig.SubscriberBuffer)
	assert.Equal(t, "http://localhost:4000/", cfg.EventClientConfig.EventServiceURL)
}

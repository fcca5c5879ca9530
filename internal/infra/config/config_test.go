package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageMode)
	assert.Equal(t, StorageMemory, cfg.IdempotencyBackend)
	assert.Equal(t, "notifications.v1", cfg.NotificationTopic)
	assert.Equal(t, int64(100), cfg.PriceTolerance)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadMongoModeRequiresURI(t *testing.T) {
	t.Setenv("STORAGE_MODE", "mongo")
	_, err := Load()
	assert.ErrorContains(t, err, "MONGO_URI")

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMongo, cfg.IdempotencyBackend)
}

func TestLoadRedisBackend(t *testing.T) {
	t.Setenv("IDEMP_BACKEND", "redis")
	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_ADDR")

	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoadParsesLists(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RETRY_BACKOFF", "2s,10s")
	t.Setenv("OUTBOX_LEASE", "30s")
	t.Setenv("OUTBOX_MAX_ATTEMPTS", "4")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []time.Duration{2 * time.Second, 10 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, 30*time.Second, cfg.OutboxLease)
	assert.Equal(t, 4, cfg.OutboxMaxAttempts)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"STORAGE_MODE":    "postgres",
		"IDEMP_TTL":       "soon",
		"S3_USE_SSL":      "maybe",
		"PRICE_TOLERANCE": "-1",
		"RETRY_BACKOFF":   "1s,x",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNotifierReady(t *testing.T) {
	cfg := Config{}
	assert.ErrorContains(t, cfg.NotifierReady(), "KAFKA_BROKERS")
	cfg.KafkaBrokers = []string{"k:9092"}
	cfg.MongoURI = "mongodb://m"
	assert.ErrorContains(t, cfg.NotifierReady(), "NOTIFY_WEBHOOK_URL")
	cfg.WebhookURL = "http://hook"
	assert.NoError(t, cfg.NotifierReady())
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
	StorageRedis  = "redis"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	LogLevel           string
	HTTPAddr           string
	StorageMode        string
	IdempotencyBackend string
	MongoURI           string
	MongoDB            string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	KafkaBrokers       []string
	KafkaClientID      string
	KafkaTopicPrefix   string
	NotificationTopic  string
	ConsumerGroup      string
	ConsumerRetries    int
	InboxRetention     time.Duration
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	OutboxLease        time.Duration
	OutboxMaxAttempts  int
	RetryBackoff       []time.Duration
	PricingFile        string
	InventoryFile      string
	PriceTolerance     int64
	AdminPINHash       string
	AdminDestination   string
	S3Endpoint         string
	S3Region           string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3UseSSL           bool
	WebhookURL         string
	WebhookTimeout     time.Duration
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:               getEnv("APP_ENV", "dev"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		StorageMode:       strings.ToLower(getEnv("STORAGE_MODE", StorageMemory)),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDB:           getEnv("MONGO_DB", "venuedesk"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		KafkaClientID:     getEnv("KAFKA_CLIENT_ID", "venuedesk"),
		KafkaTopicPrefix:  getEnv("KAFKA_TOPIC_PREFIX", ""),
		NotificationTopic: getEnv("NOTIFICATION_TOPIC", "notifications.v1"),
		ConsumerGroup:     getEnv("NOTIFIER_GROUP", "venuedesk-notifier"),
		PricingFile:       os.Getenv("PRICING_FILE"),
		InventoryFile:     os.Getenv("INVENTORY_FILE"),
		AdminPINHash:      os.Getenv("ADMIN_PIN_HASH"),
		AdminDestination:  os.Getenv("ADMIN_DESTINATION"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          os.Getenv("S3_REGION"),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:       getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:          getEnv("S3_BUCKET", "venuedesk-invoices"),
		WebhookURL:        os.Getenv("NOTIFY_WEBHOOK_URL"),
	}
	cfg.IdempotencyBackend = strings.ToLower(getEnv("IDEMP_BACKEND", cfg.StorageMode))
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	var err error
	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.ConsumerRetries, err = parseIntEnv("NOTIFIER_RETRIES", 3); err != nil {
		return Config{}, err
	}
	if cfg.OutboxMaxAttempts, err = parseIntEnv("OUTBOX_MAX_ATTEMPTS", 10); err != nil {
		return Config{}, err
	}
	tolerance, err := parseIntEnv("PRICE_TOLERANCE", 100)
	if err != nil {
		return Config{}, err
	}
	cfg.PriceTolerance = int64(tolerance)

	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 168*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.OutboxLease, err = parseDurationEnv("OUTBOX_LEASE", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.InboxRetention, err = parseDurationEnv("INBOX_RETENTION", 14*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.WebhookTimeout, err = parseDurationEnv("NOTIFY_WEBHOOK_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageMode {
	case StorageMemory, StorageMongo:
	default:
		return fmt.Errorf("invalid STORAGE_MODE %q", c.StorageMode)
	}
	switch c.IdempotencyBackend {
	case StorageMemory, StorageMongo, StorageRedis:
	default:
		return fmt.Errorf("invalid IDEMP_BACKEND %q", c.IdempotencyBackend)
	}
	if (c.StorageMode == StorageMongo || c.IdempotencyBackend == StorageMongo) && c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.IdempotencyBackend == StorageRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if c.PriceTolerance < 0 {
		return fmt.Errorf("PRICE_TOLERANCE must not be negative")
	}
	return nil
}

// NotifierReady reports what the notifier process is missing, if anything.
func (c Config) NotifierReady() error {
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.WebhookURL == "" {
		return fmt.Errorf("NOTIFY_WEBHOOK_URL is required")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
